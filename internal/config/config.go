package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr  string
	BaseURL     string // public base URL for short links and accept URLs
	FrontendURL string // dashboard SPA origin, used for post-login redirects

	// Database
	DatabaseURL string

	// Redis (optional; backs the session store when set)
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session / API tokens
	SessionSecret string        // used for cookie encryption (min 32 chars)
	TokenSecret   string        // HS256 key for API bearer tokens
	TokenTTL      time.Duration // bearer token lifetime

	// CORS
	CORSOrigins string // comma-separated allowed origins

	// Plan catalog
	PlanCatalogFile string // YAML file seeding the plans table

	// QR rendering service
	QREndpoint string // render-service base URL; empty uses the public default

	// SMTP (invite emails; disabled when host is empty)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "starttls", "tls"

	// Background jobs
	SweepInterval time.Duration // link expiry sweeper period

	// Site branding
	SiteTitle  string
	SiteFooter string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/openup?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		TokenSecret:   getEnv("TOKEN_SECRET", "change-me-in-production-min-32-chars"),
		TokenTTL:      getDuration("TOKEN_TTL", 24*time.Hour),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		PlanCatalogFile: getEnv("PLAN_CATALOG_FILE", "plans.yaml"),
		QREndpoint:      getEnv("QR_ENDPOINT", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@openup.to"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "OpenUp"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		SweepInterval: getDuration("SWEEP_INTERVAL", 5*time.Minute),

		SiteTitle:  getEnv("SITE_TITLE", "OpenUp"),
		SiteFooter: getEnv("SITE_FOOTER", "OpenUp - One link for everything you share"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != ""
}
