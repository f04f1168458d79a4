package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/config"
	"github.com/jonesrussell/affiliate-tracker/pkg/httpserver"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// Redirects must not sit behind long server timeouts; these are tighter
// than the httpserver defaults.
const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// NewServer builds the HTTP server with all routes and health checks
// registered. checks feed the /health endpoint; done stops background
// route middleware when the server shuts down.
func NewServer(
	cfg *config.Config,
	log logger.Logger,
	h Handlers,
	checks map[string]httpserver.HealthChecker,
	done <-chan struct{},
) *httpserver.Server {
	serverCfg := httpserver.NewConfig(cfg.Service.Name, cfg.Service.Port)
	serverCfg.Debug = cfg.Service.Debug
	serverCfg.ServiceVersion = cfg.Service.Version
	serverCfg.ReadTimeout = readTimeout
	serverCfg.WriteTimeout = writeTimeout
	serverCfg.IdleTimeout = idleTimeout

	routeCfg := RouteConfig{
		JWTSecret:          cfg.Service.JWTSecret,
		MaxClicksPerMinute: cfg.RateLimit.MaxClicksPerMinute,
		RateLimitWindow:    time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		Done:               done,
	}

	return httpserver.NewServer(serverCfg, log, func(router *gin.Engine) {
		httpserver.RegisterHealthRoutes(router, cfg.Service.Name, cfg.Service.Version, checks)
		SetupRoutes(router, h, routeCfg)
	})
}
