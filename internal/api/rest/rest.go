package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/middleware"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/ratelimit"
)

// RouteConfig holds the per-route protection of the REST API
type RouteConfig struct {
	Auth           middleware.AuthConfig
	PayloadLimiter ratelimit.Limiter   // nil disables payload rate limiting
	Gatherer       prometheus.Gatherer // nil disables /metrics
}

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, cfg RouteConfig) {
	// Operational endpoints (no auth)
	router.GET("/health", handler.HealthCheck)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	// Provenance timeline (public read access)
	router.GET("/verify/:batchId", handler.Verify)
	router.GET("/actors/:address", handler.GetActor)

	// Payload upload (auth and rate limit only when configured)
	router.POST("/storePayload",
		middleware.RateLimit(cfg.PayloadLimiter),
		middleware.Auth(cfg.Auth),
		handler.StorePayload,
	)
}
