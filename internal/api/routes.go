// Package api assembles the HTTP surface: the public redirect endpoint,
// the authenticated management API, and operational endpoints.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/affiliate-tracker/internal/handler"
	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
	"github.com/jonesrussell/affiliate-tracker/pkg/authtoken"
)

// Handlers groups the route handlers wired by SetupRoutes.
type Handlers struct {
	Redirect    *handler.RedirectHandler
	Links       *handler.LinkHandler
	Conversions *handler.ConversionHandler
	Analytics   *handler.AnalyticsHandler
}

// RouteConfig carries the route-level settings SetupRoutes needs.
type RouteConfig struct {
	JWTSecret          string
	MaxClicksPerMinute int
	RateLimitWindow    time.Duration
	Done               <-chan struct{}
}

// SetupRoutes configures all routes. Health routes are registered by the
// server builder; /metrics is added here.
func SetupRoutes(router *gin.Engine, h Handlers, cfg RouteConfig) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public redirect: no auth, bot filtering and per-IP throttling only.
	click := router.Group("/click")
	click.Use(middleware.BotFilter())
	click.Use(middleware.RateLimiter(cfg.MaxClicksPerMinute, cfg.RateLimitWindow, cfg.Done))
	click.GET("/:code", h.Redirect.Redirect)

	api := router.Group("/api/v1")
	api.Use(middleware.Authenticate(cfg.JWTSecret))

	links := api.Group("/links")
	links.Use(middleware.RequireRole(authtoken.RoleAffiliate, authtoken.RoleSystem))
	links.POST("", h.Links.Create)
	links.GET("/mine", h.Links.List)
	links.DELETE("/:code", h.Links.Deactivate)

	conversions := api.Group("/conversions")
	conversions.Use(middleware.RequireRole(authtoken.RoleMerchant, authtoken.RoleSystem))
	conversions.POST("", h.Conversions.Record)
	conversions.GET("/:external_id", h.Conversions.Get)

	// Any authenticated role; scope ownership is enforced in the handler.
	api.GET("/analytics", h.Analytics.Summary)
}
