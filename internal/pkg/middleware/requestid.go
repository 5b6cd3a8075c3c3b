// Package middleware provides the gin middleware Herald's HTTP server runs
// with: request identification, access logging and panic recovery.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// RequestIDKey is the context key and response header carrying the request id.
const RequestIDKey = "X-Request-ID"

// RequestID attaches a ULID to every request. An id supplied by the caller
// is kept, so upstream proxies can stitch traces together.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if requestID == "" {
			requestID = ulid.Make().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDKey, requestID)
		c.Next()
	}
}

// RequestIDFromContext returns the request id attached by RequestID, or ""
// outside of a request.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(RequestIDKey)
}
