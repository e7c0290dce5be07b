// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/errorreport"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format. Code lets clients pick
// between a blocking notice (validation, guard) and a dismissible one.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// NoContent sends an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError maps domain errors to HTTP responses.
// If the error chain holds an *apperr.Error, its Kind decides the status code.
// Untyped errors are treated as internal failures and their text is not leaked.
// Backend and internal failures are reported to Sentry when enabled.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		if domainErr.Kind == apperr.KindUnavailable || domainErr.Kind == apperr.KindInternal {
			errorreport.Capture(c, err)
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Code:    domainErr.Kind.Code(),
			Details: domainErr.Details,
		})
		return true
	}

	_ = c.Error(err)
	errorreport.Capture(c, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal error",
		Code:  apperr.KindInternal.Code(),
	})
	return true
}
