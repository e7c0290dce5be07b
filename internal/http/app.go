// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"leadboard_backend/platform/config"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g., DB ping).
	Health HealthChecker
	// Metrics exposes request counters and the /metrics endpoint. Optional.
	Metrics *metrics.Metrics
	// ErrorReporting mounts the Sentry middleware.
	ErrorReporting bool
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
