package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arklim/workforce-api/internal/core/domain"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"
	// ActorKey is the context key for the authenticated principal
	ActorKey = "actor"
)

// EnrichContext adds a trace ID to each request and echoes it in the response.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// Actor retrieves the authenticated principal placed by RequireAuth.
func Actor(c *gin.Context) (domain.User, bool) {
	raw, exists := c.Get(ActorKey)
	if !exists {
		return domain.User{}, false
	}
	actor, ok := raw.(domain.User)
	return actor, ok
}
