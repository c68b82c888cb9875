package middleware

import (
	"time"

	"chatwire/internal/core/domain"
	"chatwire/pkg/logger"
	"chatwire/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware assigns every request an id, echoes it in the
// X-Request-ID header and logs the request with context fields once it
// completes.
func RequestLoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	ctxLogger := logger.NewContextLogger(log)

	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		// The auth middleware runs after us, so pick the user up here.
		if val, ok := c.Get("user_id"); ok {
			if userID, ok := val.(domain.UserID); ok {
				ctx = logger.WithUserID(ctx, string(userID))
			}
		}
		ctxLogger.LogRequest(ctx, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
