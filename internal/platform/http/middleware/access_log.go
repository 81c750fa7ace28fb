package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// AccessLog writes one structured line per request once the handler chain returns.
// Panics are recovered and answered with a generic 500.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", GetRequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(500, gin.H{"message": "Server error"})
			}

			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("client_ip", c.ClientIP()),
				zap.String("request_id", GetRequestID(c)),
			}
			if p, ok := identity.FromContext(c.Request.Context()); ok {
				fields = append(fields, zap.String("user_id", p.UserID), zap.String("role", p.Role.String()))
			}

			switch {
			case c.Writer.Status() >= 500:
				logger.Error("request", fields...)
			case c.Writer.Status() >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		}()

		c.Next()
	}
}
