package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_PRIVATE_KEY_FILE", "/keys/jwt.pem")
	t.Setenv("AUTH_PUBLIC_KEY_FILE", "/keys/jwt.pub.pem")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("expected default api port 8080 got %d", cfg.API.Port)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Uploads.Dir != "./uploads" || cfg.Uploads.BaseURL != "/uploads" {
		t.Errorf("unexpected uploads defaults %+v", cfg.Uploads)
	}
	if cfg.Site.BaseURL != "https://www.wisdomquantums.com" {
		t.Errorf("unexpected site base url %q", cfg.Site.BaseURL)
	}
	if cfg.Auth.AccessTTL() != 60*time.Minute {
		t.Errorf("expected 60m access ttl got %s", cfg.Auth.AccessTTL())
	}
	if cfg.RateLimit.LoginPerHour != 10 || cfg.RateLimit.InquiryPerHour != 5 {
		t.Errorf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "cms")
	t.Setenv("UPLOADS_DIR", "/srv/uploads")
	t.Setenv("AUTH_ACCESS_TTL_MINUTES", "30")
	t.Setenv("SITE_BASE_URL", "https://staging.wisdomquantums.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("expected port 9090 got %d", cfg.API.Port)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Name != "cms" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Uploads.Dir != "/srv/uploads" {
		t.Errorf("expected /srv/uploads got %q", cfg.Uploads.Dir)
	}
	if cfg.Auth.AccessTTL() != 30*time.Minute {
		t.Errorf("expected 30m ttl got %s", cfg.Auth.AccessTTL())
	}
	if cfg.Site.BaseURL != "https://staging.wisdomquantums.com" {
		t.Errorf("unexpected site base url %q", cfg.Site.BaseURL)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		pre  func(t *testing.T)
	}{
		{
			"missing key files",
			func(t *testing.T) {
				t.Setenv("AUTH_PRIVATE_KEY_FILE", "")
				t.Setenv("AUTH_PUBLIC_KEY_FILE", "")
			},
		},
		{
			"bad api port",
			func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("API_PORT", "-1")
			},
		},
		{
			"zero ttl",
			func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("AUTH_ACCESS_TTL_MINUTES", "0")
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.pre(t)
			if _, err := Load(); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}
