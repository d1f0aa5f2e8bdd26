// Copyright 2026 The SalesDesk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server           ServerConfig
	Database         DatabaseConfig
	Observability    ObservabilityConfig
	Auth             AuthConfig
	IdentityProvider IdentityProviderConfig
	Webhook          WebhookConfig
	Import           ImportConfig
	CORS             CORSConfig
	RateLimit        RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ObservabilityConfig holds logging, tracing and metrics configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	OTELEndpoint   string
	MetricsEnabled bool
	ServiceName    string
	ServiceVersion string
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
	TokenTTL  time.Duration
}

// Identity provider modes
const (
	IdentityModeHTTP  = "http"
	IdentityModeLocal = "local"
)

// IdentityProviderConfig selects and configures the identity provider
type IdentityProviderConfig struct {
	Mode        string
	URL         string
	ServiceKey  string
	RedirectURL string
	Timeout     time.Duration
	PageSize    int
	MaxPages    int

	// BootstrapAdminEmail is granted a tenant-less client_admin role at
	// startup when set.
	BootstrapAdminEmail string
}

// WebhookConfig holds the shared secret for inbound webhooks
type WebhookConfig struct {
	Secret string
}

// ImportConfig bounds file imports
type ImportConfig struct {
	MaxBytes    int64
	MaxRows     int
	DefaultMode string
}

// CORSConfig lists the browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables. A .env file in
// the working directory is read first when present; variables already set
// in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout:   parseDuration("SERVER_WRITE_TIMEOUT", "60s"),
			IdleTimeout:    parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
			RequestTimeout: parseDuration("SERVER_REQUEST_TIMEOUT", "55s"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "salesdesk"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "salesdesk"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			OTELEndpoint:   getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""),
			MetricsEnabled: parseBool("METRICS_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "salesdesk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			Issuer:    getEnv("AUTH_JWT_ISSUER", ""),
			Audience:  getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
			TokenTTL:  parseDuration("AUTH_TOKEN_TTL", "1h"),
		},
		IdentityProvider: IdentityProviderConfig{
			Mode:                strings.ToLower(getEnv("IDP_MODE", IdentityModeLocal)),
			URL:                 getEnv("IDP_URL", ""),
			ServiceKey:          getEnv("IDP_SERVICE_KEY", ""),
			RedirectURL:         getEnv("IDP_INVITE_REDIRECT_URL", ""),
			Timeout:             parseDuration("IDP_TIMEOUT", "10s"),
			PageSize:            parseInt("IDP_PAGE_SIZE", 200),
			MaxPages:            parseInt("IDP_MAX_PAGES", 10),
			BootstrapAdminEmail: getEnv("SALESDESK_BOOTSTRAP_ADMIN_EMAIL", ""),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", ""),
		},
		Import: ImportConfig{
			MaxBytes:    int64(parseInt("IMPORT_MAX_BYTES", 10<<20)),
			MaxRows:     parseInt("IMPORT_MAX_ROWS", 10000),
			DefaultMode: getEnv("IMPORT_DEFAULT_MODE", "upsert"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseList("CORS_ALLOWED_ORIGINS"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: parseFloat("RATELIMIT_RPS", 10),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	switch c.IdentityProvider.Mode {
	case IdentityModeLocal:
	case IdentityModeHTTP:
		if c.IdentityProvider.URL == "" || c.IdentityProvider.ServiceKey == "" {
			return fmt.Errorf("IDP_URL and IDP_SERVICE_KEY are required when IDP_MODE=http")
		}
	default:
		return fmt.Errorf("IDP_MODE must be %q or %q", IdentityModeHTTP, IdentityModeLocal)
	}
	if c.IdentityProvider.PageSize <= 0 || c.IdentityProvider.MaxPages <= 0 {
		return fmt.Errorf("IDP_PAGE_SIZE and IDP_MAX_PAGES must be positive")
	}
	if c.Import.MaxBytes <= 0 || c.Import.MaxRows <= 0 {
		return fmt.Errorf("IMPORT_MAX_BYTES and IMPORT_MAX_ROWS must be positive")
	}
	switch c.Import.DefaultMode {
	case "insert", "upsert":
	default:
		return fmt.Errorf("IMPORT_DEFAULT_MODE must be insert or upsert")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}

func parseList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
