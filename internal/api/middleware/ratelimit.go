package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/shared/errors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/ratelimit"
)

// RateLimit returns a gin middleware limiting requests per client IP.
// A nil limiter disables it. Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Rate limiter unavailable",
				zap.Error(err),
				zap.String("client_ip", c.ClientIP()))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.DebugCtx(c.Request.Context(), "Request rate limited",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierrors.NewRateLimitedError("Too many requests", "retry after "+strconv.Itoa(retryAfter)+"s"))
			return
		}

		c.Next()
	}
}
