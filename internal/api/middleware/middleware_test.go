package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"wqsolutions/internal/auth"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	svc, err := auth.NewService(privPEM, pubPEM, time.Minute)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newAuthService(t)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.MustGet("userID"),
			"role":    c.MustGet("userRole"),
		})
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abcdef", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, w.Code)
			}
		})
	}

	token, err := svc.GenerateToken(3, auth.RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(role string) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if role != "" {
				c.Set("userRole", role)
			}
		})
		router.DELETE("/thing", RequireRole(auth.RoleAdmin, auth.RoleSuperadmin), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	cases := []struct {
		role string
		want int
	}{
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleSuperadmin, http.StatusOK},
		{auth.RoleEditor, http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodDelete, "/thing", nil)
		w := httptest.NewRecorder()
		newRouter(tc.role).ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("role %q: expected %d got %d", tc.role, tc.want, w.Code)
		}
	}
}

func TestCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CorrelationIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	// generated when absent
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Correlation-ID") == "" || w.Body.String() == "" {
		t.Fatal("expected a generated correlation id")
	}

	// echoed when supplied
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Body.String() != "req-123" {
		t.Fatalf("expected req-123 got %q", w.Body.String())
	}
}
