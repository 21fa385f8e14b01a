package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contract-backend/internal/shared/telemetry"
)

const (
	requestIDKey      = "requestId"
	requestIDHeader   = "X-Request-Id"
	maxRequestIDBytes = 128
)

// RequestID attaches a request ID to the gin context, the request context and the
// response header. Inbound ids are reused only when they are short printable tokens.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID middleware.
func RequestIDFromContext(c *gin.Context) string {
	return stringFromContext(c, requestIDKey)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDBytes {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.' || ch == ':':
		default:
			return false
		}
	}
	return true
}
