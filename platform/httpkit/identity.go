// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the caller as established by the auth middleware.
// Sessions are issued by the external identity provider; the service only
// knows "authenticated or not" plus the subject claim.
type Identity interface {
	UserID() uuid.UUID
	Roles() []string
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID     { return i.userID }
func (i *identity) Roles() []string       { return i.roles }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	var roleList []string
	if roles, ok := c.Get(ContextRolesKey); ok {
		roleList, _ = roles.([]string)
	}

	return &identity{userID: uid, roles: roleList, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "unauthorized"})
		return nil
	}
	return id
}

// ActorID returns the authenticated user id, or nil for anonymous callers.
func ActorID(c *gin.Context) *uuid.UUID {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		return nil
	}
	uid := id.UserID()
	return &uid
}
