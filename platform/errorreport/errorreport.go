// Package errorreport forwards unexpected failures to Sentry.
// This is part of the platform layer and contains no business logic.
package errorreport

import (
	"time"

	"leadboard_backend/platform/config"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

const flushTimeout = 2 * time.Second

// Init configures the global Sentry client. It reports false when no DSN is
// set; the returned flush func is always safe to call.
func Init(cfg config.ErrorReportingConfig) (bool, func(), error) {
	if cfg.GetSentryDSN() == "" {
		return false, func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.GetSentryDSN(),
		Environment:      cfg.GetSentryEnvironment(),
		AttachStacktrace: true,
		SendDefaultPII:   false,
	})
	if err != nil {
		return false, func() {}, err
	}
	return true, func() { sentry.Flush(flushTimeout) }, nil
}

// Middleware attaches a per-request hub and reports panics. It repanics so
// gin.Recovery still answers the request.
func Middleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

// Capture reports err on the request hub when reporting is enabled.
func Capture(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}
