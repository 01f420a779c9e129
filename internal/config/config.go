package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Clamd     ClamdConfig     `mapstructure:"clamd"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Site      SiteConfig      `mapstructure:"site"`
}

// SiteConfig describes the public site the API backs.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AuthConfig points at the RS256 key pair and sets token lifetime.
type AuthConfig struct {
	PrivateKeyFile   string `mapstructure:"private_key_file"`
	PublicKeyFile    string `mapstructure:"public_key_file"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
}

// UploadsConfig describes where uploaded images live on disk and how records reference them.
type UploadsConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

// ClamdConfig configures the optional upload virus scan. An empty address disables it.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// RateLimitConfig bounds login attempts and public inquiry submissions.
type RateLimitConfig struct {
	LoginPerHour   int `mapstructure:"login_per_hour"`
	InquiryPerHour int `mapstructure:"inquiry_per_hour"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// AccessTTL returns the access-token lifetime as a duration.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMinutes) * time.Minute
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "wqsolutions")
	v.SetDefault("database.user", "wqsolutions")
	v.SetDefault("database.password", "wqsolutions")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("auth.access_ttl_minutes", 60)
	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.base_url", "/uploads")
	v.SetDefault("clamd.addr", "")
	v.SetDefault("ratelimit.login_per_hour", 10)
	v.SetDefault("ratelimit.inquiry_per_hour", 5)
	v.SetDefault("site.base_url", "https://www.wisdomquantums.com")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                   "API_PORT",
		"database.host":              "DATABASE_HOST",
		"database.port":              "DATABASE_PORT",
		"database.name":              "POSTGRES_DB",
		"database.user":              "POSTGRES_USER",
		"database.password":          "POSTGRES_PASSWORD",
		"database.sslmode":           "DATABASE_SSLMODE",
		"redis.host":                 "REDIS_HOST",
		"redis.port":                 "REDIS_PORT",
		"auth.private_key_file":      "AUTH_PRIVATE_KEY_FILE",
		"auth.public_key_file":       "AUTH_PUBLIC_KEY_FILE",
		"auth.access_ttl_minutes":    "AUTH_ACCESS_TTL_MINUTES",
		"uploads.dir":                "UPLOADS_DIR",
		"uploads.base_url":           "UPLOADS_BASE_URL",
		"clamd.addr":                 "CLAMD_ADDR",
		"ratelimit.login_per_hour":   "LOGIN_RATE_LIMIT_PER_HOUR",
		"ratelimit.inquiry_per_hour": "INQUIRY_RATE_LIMIT_PER_HOUR",
		"site.base_url":              "SITE_BASE_URL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.Auth.PrivateKeyFile == "" {
		return errors.New("auth private key file is required")
	}
	if cfg.Auth.PublicKeyFile == "" {
		return errors.New("auth public key file is required")
	}
	if cfg.Auth.AccessTTLMinutes <= 0 {
		return errors.New("auth access ttl must be positive")
	}
	if cfg.Uploads.Dir == "" {
		return errors.New("uploads dir is required")
	}
	if cfg.Uploads.BaseURL == "" {
		return errors.New("uploads base url is required")
	}
	if cfg.Site.BaseURL == "" {
		return errors.New("site base url is required")
	}
	return nil
}
