// Package leads provides the lead board bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/events"
	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/internal/leads/changefeed"
	"leadboard_backend/internal/leads/handler"
	"leadboard_backend/internal/leads/lifecycle"
	"leadboard_backend/internal/leads/management"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/internal/leads/transport"
	"leadboard_backend/internal/notification/sse"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"
	"leadboard_backend/platform/validator"
)

// Deps are the collaborators built by the composition root.
type Deps struct {
	Repo           repository.LeadsRepository
	Hub            *changefeed.Hub
	EventBus       events.Bus
	Validator      *validator.Validator
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	Guard          lifecycle.InFlightGuard
	DefaultCountry string

	// Storage is nil when MinIO is not configured; uploads then fail with 503.
	Storage storage.StorageService
	Bucket  string
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	uploads *handler.UploadHandler
	log     *logger.Logger
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(deps Deps) (*Module, error) {
	if err := transport.RegisterValidations(deps.Validator); err != nil {
		return nil, err
	}

	mgmtSvc := management.New(deps.Repo, deps.EventBus, deps.Hub, deps.Validator, deps.Logger, deps.DefaultCountry)
	if deps.Storage != nil {
		mgmtSvc.SetStorage(deps.Storage, deps.Bucket)
	}

	engine := lifecycle.New(deps.Repo, deps.Guard, deps.EventBus, deps.Hub, deps.Logger)
	sseSvc := sse.New(deps.Hub, deps.Logger)

	if deps.Metrics != nil {
		mgmtSvc.SetMetrics(deps.Metrics)
		engine.SetMetrics(deps.Metrics)
		sseSvc.SetMetrics(deps.Metrics)
	}

	return &Module{
		handler: handler.New(mgmtSvc, engine, sseSvc.Handler(), deps.Validator),
		uploads: handler.NewUploadHandler(mgmtSvc),
		log:     deps.Logger,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterHandlers subscribes to leads events that need background work.
// Without a scheduler, deleted images stay in the bucket.
func (m *Module) RegisterHandlers(bus events.Bus, cleanup ImageCleanupScheduler) {
	bus.Subscribe(events.LeadDeleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadDeleted)
		if !ok || len(e.ImageURLs) == 0 {
			return nil
		}
		if cleanup == nil {
			m.log.Warn("image cleanup skipped, no job queue configured", "leadId", e.LeadID, "images", len(e.ImageURLs))
			return nil
		}
		return cleanup.ScheduleImageCleanup(ctx, e.LeadID, e.ImageURLs)
	}))
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))

	uploads := ctx.Protected.Group("/uploads")
	if ctx.UploadRateLimiter != nil {
		uploads.Use(ctx.UploadRateLimiter.RateLimit())
	}
	m.uploads.RegisterRoutes(uploads)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
