package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID ensures every request has an ID for tracing and logs. An incoming
// header value is kept so ids can be followed across services.
func RequestID(header string) gin.HandlerFunc {
	if strings.TrimSpace(header) == "" {
		header = "X-Request-ID"
	}
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.Request.Header.Get(header))
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(header, rid)
		c.Next()
	}
}

// GetRequestID extracts request_id from gin context when available.
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}
