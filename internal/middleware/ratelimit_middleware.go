package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/metrics"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/ratelimit"
)

// LoginRateLimit throttles login attempts per client address. Every request
// through it consumes window budget, correct credentials included, so a
// throttled client stays throttled until the window slides.
func LoginRateLimit(limiter *ratelimit.SlidingWindowLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			logger.Warn().Str("clientIP", clientIP).Msg("Login throttled")
			if m != nil {
				m.LoginAttempts.WithLabelValues("throttled").Inc()
			}
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeTooManyAttempts, "Too many login attempts, try again later")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
