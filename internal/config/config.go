package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/moodlog-backend/pkg/utils"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Environment string `env:"ENV" env-default:"development"` // production, development, etc.
	Port        string `env:"PORT" env-default:"8080"`
	Host        string `env:"HOST" env-default:"http://localhost:8080"`
	AllowedHost string // hostname only for strict host check (production only)

	// CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	RawAllowedOrigins string `env:"ALLOWED_ORIGINS"`
	FrontendURL       string `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	FrontendURL2      string `env:"FRONTEND_URL_2"`
	FrontendURL3      string `env:"FRONTEND_URL_3"`
	AllowedOrigins    []string

	StoreDriver string `env:"STORE_DRIVER" env-default:"mongo"`
	MongoURI    string `env:"MONGODB_URI" env-default:"mongodb://localhost:27017/moodlog"`
	PostgresURI string `env:"POSTGRES_URI" env-default:"postgres://localhost:5432/moodlog?sslmode=disable"`
	RedisURI    string `env:"REDIS_URI" env-default:"redis://localhost:6379/0"`

	IDPJWTSecret  string `env:"IDP_JWT_SECRET"`
	IDPJWTIssuer  string `env:"IDP_JWT_ISSUER"`
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	CloudinaryName      string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	LogLevel       string        `env:"LOG_LEVEL" env-default:"info"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" env-default:"true"`
	SessionTTL     time.Duration `env:"SESSION_TTL" env-default:"720h"`
	StatsCacheTTL  time.Duration `env:"STATS_CACHE_TTL" env-default:"5m"`
	Timezone       string        `env:"TIMEZONE" env-default:"UTC"`
}

// Load reads .env (when present) and the process environment, derives the
// host/origin settings and validates the result.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.derive()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) derive() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))

	// AllowedHost is only set in production; host check is skipped in development
	if c.IsProduction() {
		c.AllowedHost = hostname(c.Host)
	}

	c.AllowedOrigins = parseOrigins(c.RawAllowedOrigins)
	if len(c.AllowedOrigins) == 0 {
		for _, u := range []string{c.FrontendURL, c.FrontendURL2, c.FrontendURL3} {
			u = strings.TrimSpace(u)
			if u != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, u)
			}
		}
	}
	// When HOST is a backend host (e.g. api.moodlog.app), also allow https://domain and
	// https://www.domain so preflight succeeds even if ENV isn't set on the server
	host := hostname(c.Host)
	if host != "" && host != "localhost" {
		if parts := strings.Split(host, "."); len(parts) >= 2 {
			domain := strings.Join(parts[1:], ".")
			for _, origin := range []string{"https://" + domain, "https://www." + domain} {
				if !containsOrigin(c.AllowedOrigins, origin) {
					c.AllowedOrigins = append(c.AllowedOrigins, origin)
				}
			}
		}
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo driver"))
		}
		if c.RedisURI == "" {
			errs = append(errs, errors.New("REDIS_URI is required for the mongo driver"))
		}
		if c.PostgresURI == "" {
			errs = append(errs, errors.New("POSTGRES_URI is required for the mongo driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if strings.TrimSpace(c.IDPJWTSecret) == "" {
		errs = append(errs, errors.New("IDP_JWT_SECRET is required"))
	}
	if c.EncryptionKey != "" {
		if _, err := utils.ParseEncryptionKey(c.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("ENCRYPTION_KEY: %w", err))
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.StatsCacheTTL < 0 {
		errs = append(errs, errors.New("STATS_CACHE_TTL must not be negative"))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

// Location is the zone journal days and week boundaries are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CloudinaryEnabled reports whether photo uploads are configured.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func hostname(raw string) string {
	h := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://", "http://"} {
		h = strings.TrimPrefix(h, prefix)
	}
	if idx := strings.Index(h, "/"); idx != -1 {
		h = h[:idx]
	}
	if idx := strings.Index(h, ":"); idx != -1 {
		h = h[:idx]
	}
	return strings.TrimSpace(h)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}
