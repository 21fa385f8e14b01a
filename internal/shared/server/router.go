package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/contracts"
	"contract-backend/internal/shared/auth"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/server/middleware"
	"contract-backend/internal/shared/server/respond"
)

const (
	uploadRateGroup    = "UPLOAD"
	readinessTimeout   = 2 * time.Second
	defaultUploadBurst = 5
)

// RouterDeps carries the handlers and settings the router needs.
type RouterDeps struct {
	Config           config.Config
	Keys             *auth.Keyring
	ContractsHandler *contracts.Handler
	// Ready reports backing store health for /health. Optional.
	Ready   func(ctx context.Context) error
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	health := healthHandler(deps.Ready)
	r.GET("/health", health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", health)

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Keys))
	registerMeRoutes(authed)
	if deps.ContractsHandler != nil {
		deps.ContractsHandler.RegisterRoutes(authed, uploadRateLimit(deps))
	}
	return r
}

func uploadRateLimit(deps RouterDeps) gin.HandlerFunc {
	perMinute := deps.Config.UploadRatePerMinute
	burst := deps.Config.UploadBurst
	if burst <= 0 {
		burst = defaultUploadBurst
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: uploadRateGroup,
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			uploadRateGroup: middleware.PerMinute(perMinute, burst),
		},
	})
}

func healthHandler(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			defer cancel()
			if err := ready(ctx); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "unavailable", err.Error(), nil)
				return
			}
		}
		respond.OK(c, gin.H{"ok": true})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
