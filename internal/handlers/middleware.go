package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"cheflink/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

// RequestID reuses the caller's X-Request-Id or mints one, echoes it back and
// stores it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(l zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := l.Info()
		if status >= http.StatusInternalServerError {
			evt = l.Error()
		}
		evt.Str("request_id", logger.RequestID(c.Request.Context())).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

// Recovery converts a panic into a 500 envelope so one request cannot take the process down.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		respondError(c, fmt.Errorf("panic: %v", recovered))
	})
}

func noRoute(c *gin.Context) {
	respondFailure(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func noMethod(c *gin.Context) {
	respondFailure(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}
