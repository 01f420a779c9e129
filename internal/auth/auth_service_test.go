package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func testKeyPair(t *testing.T) (privPEM, pubPEM []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return privPEM, pubPEM
}

func TestService_TokenRoundTrip(t *testing.T) {
	priv, pub := testKeyPair(t)
	svc, err := NewService(priv, pub, 15*time.Minute)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	token, err := svc.GenerateToken(42, RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42 got %d", claims.UserID)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("expected role admin got %q", claims.Role)
	}
}

func TestService_RejectsForeignToken(t *testing.T) {
	privA, pubA := testKeyPair(t)
	privB, pubB := testKeyPair(t)

	signer, err := NewService(privA, pubA, time.Minute)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	verifier, err := NewService(privB, pubB, time.Minute)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token, err := signer.GenerateToken(1, RoleEditor)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for a foreign signature")
	}
}

func TestService_RejectsExpiredToken(t *testing.T) {
	priv, pub := testKeyPair(t)
	svc, err := NewService(priv, pub, -time.Minute)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	token, err := svc.GenerateToken(1, RoleEditor)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestNewService_RequiresKeys(t *testing.T) {
	if _, err := NewService(nil, nil, time.Minute); err == nil {
		t.Fatal("expected error for missing keys")
	}
	if _, err := NewService([]byte("not pem"), []byte("not pem"), time.Minute); err == nil {
		t.Fatal("expected error for malformed keys")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleEditor, RoleAdmin, RoleSuperadmin} {
		if !ValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	if ValidRole("root") {
		t.Error("expected root to be rejected")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPasswordHash("s3cret-passphrase", hash) {
		t.Error("expected matching password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("expected mismatching password to fail")
	}
}
