package httpkit

import (
	"net/http"
	"sync/atomic"

	"bd_pipeline_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

const msgInternal = "internal server error"

var exposeInternalErrors atomic.Bool

// ExposeInternalErrors controls whether 500 responses carry the underlying
// error string. The router enables it outside production.
func ExposeInternalErrors(expose bool) {
	exposeInternalErrors.Store(expose)
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

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind; anything else is an internal
// failure. Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	_ = c.Error(err)

	domainErr, ok := apperr.As(err)
	if !ok {
		domainErr = apperr.Internal(msgInternal, err)
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		resp := ErrorResponse{Error: msgInternal}
		if exposeInternalErrors.Load() && domainErr.Err != nil {
			resp.Details = domainErr.Err.Error()
		}
		c.JSON(status, resp)
		return true
	}

	c.JSON(status, ErrorResponse{
		Error:   domainErr.Message,
		Code:    domainErr.Code,
		Details: domainErr.Details,
	})
	return true
}
