// Package auth provides the session probe for the externally managed identity.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"leadboard_backend/internal/auth/handler"
	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/platform/httpkit"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the auth module.
func NewModule() *Module {
	return &Module{handler: handler.New()}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// The session probe is public; a valid token only enriches the answer.
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(httpkit.OptionalAuth(ctx.Config))
	m.handler.RegisterRoutes(authGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
