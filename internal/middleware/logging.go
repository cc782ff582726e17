package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextKey is the type of keys stored in request contexts by this package.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerKey    = contextKey("logger")
	loggerCtxKey = contextKey("ctxLogger")
	requestIDKey = contextKey("requestID")
)

// StructuredLoggingMiddleware creates a Gin middleware handler that injects
// a request-scoped logger into both the Gin and the request context.
func StructuredLoggingMiddleware(baseLogger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		requestLogger := baseLogger.With(
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		c.Header("X-Request-ID", requestID)
		c.Set(string(loggerKey), requestLogger)
		ctx := context.WithValue(c.Request.Context(), requestIDKey, requestID)
		c.Request = c.Request.WithContext(WithLogger(ctx, requestLogger))

		c.Next()

		GetLoggerFromCtx(c.Request.Context()).Info("Request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// GetLoggerFromCtx returns the request-scoped logger, or the default logger.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// GetLoggerFromContext retrieves the request-scoped logger from the Gin context.
func GetLoggerFromContext(c *gin.Context) *slog.Logger {
	if logger, ok := c.Get(string(loggerKey)); ok {
		if slogLogger, ok := logger.(*slog.Logger); ok {
			return slogLogger
		}
	}
	return GetLoggerFromCtx(c.Request.Context())
}

// GetRequestID returns the id assigned by StructuredLoggingMiddleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
