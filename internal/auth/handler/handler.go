package handler

import (
	"leadboard_backend/internal/auth/transport"
	"leadboard_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// RegisterRoutes expects the group to run httpkit.OptionalAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/session", h.GetSession)
}

func (h *Handler) GetSession(c *gin.Context) {
	httpkit.OK(c, transport.ToSessionResponse(currentSession(c)))
}

func currentSession(c *gin.Context) transport.Session {
	id := httpkit.GetIdentity(c)
	if !id.IsAuthenticated() {
		return transport.Session{}
	}
	return transport.Session{Authenticated: true, UserID: id.UserID(), Roles: id.Roles()}
}
