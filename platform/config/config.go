// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MigrationConfig controls schema migrations at startup.
type MigrationConfig interface {
	IsMigrationsEnabled() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketEvidence() string
	GetPublicAssetBaseURL() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq-backed job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetOrphanSweepSchedule() string
	GetOrphanGracePeriod() time.Duration
}

// ErrorReportingConfig provides Sentry settings. Reporting is off without a DSN.
type ErrorReportingConfig interface {
	GetSentryDSN() string
	GetSentryEnvironment() string
}

// LeadsConfig provides settings for the leads module.
type LeadsConfig interface {
	GetDefaultCountry() string
	GetTransitionLockTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	MigrationsEnabled   bool
	JWTAccessSecret     string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOMaxFileSize    int64
	MinioBucketEvidence string
	PublicAssetBaseURL  string
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	OrphanSweepSchedule string
	OrphanGracePeriod   time.Duration
	SentryDSN           string
	DefaultCountry      string
	TransitionLockTTL   time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// MigrationConfig implementation
func (c *Config) IsMigrationsEnabled() bool { return c.MigrationsEnabled }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string       { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string      { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string      { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool           { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64     { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketEvidence() string { return c.MinioBucketEvidence }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }

// GetPublicAssetBaseURL returns the base under which bucket objects are publicly
// resolvable. Falls back to the MinIO endpoint itself.
func (c *Config) GetPublicAssetBaseURL() string {
	if c.PublicAssetBaseURL != "" {
		return strings.TrimRight(c.PublicAssetBaseURL, "/")
	}
	scheme := "http"
	if c.MinIOUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.MinIOEndpoint
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetOrphanSweepSchedule() string {
	return c.OrphanSweepSchedule
}
func (c *Config) GetOrphanGracePeriod() time.Duration { return c.OrphanGracePeriod }

// ErrorReportingConfig implementation
func (c *Config) GetSentryDSN() string         { return c.SentryDSN }
func (c *Config) GetSentryEnvironment() string { return c.Env }

// LeadsConfig implementation
func (c *Config) GetDefaultCountry() string           { return c.DefaultCountry }
func (c *Config) GetTransitionLockTTL() time.Duration { return c.TransitionLockTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		MigrationsEnabled:   strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:    mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketEvidence: getEnv("MINIO_BUCKET_EVIDENCE", "evidence"),
		PublicAssetBaseURL:  getEnv("PUBLIC_ASSET_BASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		OrphanSweepSchedule: getEnv("ORPHAN_SWEEP_SCHEDULE", "0 3 * * *"),
		OrphanGracePeriod:   mustDuration(getEnv("ORPHAN_GRACE_PERIOD", "24h")),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		DefaultCountry:      getEnv("DEFAULT_COUNTRY", "Zimbabwe"),
		TransitionLockTTL:   mustDuration(getEnv("TRANSITION_LOCK_TTL", "30s")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.MinIOMaxFileSize <= 0 {
		return nil, fmt.Errorf("MINIO_MAX_FILE_SIZE must be a positive number of bytes")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
