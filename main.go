package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/affiliate-tracker/internal/api"
	"github.com/jonesrussell/affiliate-tracker/internal/cache"
	"github.com/jonesrussell/affiliate-tracker/internal/codegen"
	"github.com/jonesrussell/affiliate-tracker/internal/config"
	"github.com/jonesrussell/affiliate-tracker/internal/database"
	"github.com/jonesrussell/affiliate-tracker/internal/handler"
	"github.com/jonesrussell/affiliate-tracker/internal/metrics"
	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/internal/storage"
	"github.com/jonesrussell/affiliate-tracker/pkg/configloader"
	"github.com/jonesrussell/affiliate-tracker/pkg/httpserver"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
	"github.com/jonesrussell/affiliate-tracker/pkg/rediscache"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	redisClient, err := rediscache.NewClient(cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to Redis", logger.Error(err))
		return 1
	}
	defer func() { _ = redisClient.Close() }()

	return runServer(cfg, log, db, redisClient)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := configloader.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// runServer wires all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sqlx.DB, redisClient *redis.Client) int {
	linkRepo := database.NewLinkRepository(db)
	clickRepo := database.NewClickRepository(db)
	conversionRepo := database.NewConversionRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)
	directoryRepo := database.NewDirectoryRepository(db)

	buf := storage.NewBuffer(cfg.Service.BufferSize)
	writer := storage.NewWriter(clickRepo, buf, log, cfg.Service.FlushInterval, cfg.Service.FlushThreshold)
	writer.Start()
	defer writer.Stop()

	m := metrics.New(prometheus.DefaultRegisterer, buf.Len)
	linkCache := cache.NewLinkCache(redisClient, cfg.Service.LinkCacheTTL, log)
	gen := codegen.New(cfg.Service.CodeLength)

	linkSvc := service.NewLinkService(linkRepo, directoryRepo, linkCache, gen, log)
	clickSvc := service.NewClickService(linkRepo, linkCache, buf, m, log)
	conversionSvc := service.NewConversionService(conversionRepo, clickRepo, m, log, cfg.Service.AttributionWindow)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)

	handlers := api.Handlers{
		Redirect:    handler.NewRedirectHandler(clickSvc, cfg.Service.RedirectTimeout, log),
		Links:       handler.NewLinkHandler(linkSvc, log),
		Conversions: handler.NewConversionHandler(conversionSvc, log),
		Analytics:   handler.NewAnalyticsHandler(analyticsSvc, linkSvc),
	}

	checks := map[string]httpserver.HealthChecker{
		"postgres": httpserver.PingChecker(db.Ping),
		"redis": httpserver.PingChecker(func() error {
			return redisClient.Ping(context.Background()).Err()
		}),
	}

	// done stops the rate limiter sweep goroutine on shutdown.
	done := make(chan struct{})
	defer close(done)

	server := api.NewServer(cfg, log, handlers, checks, done)

	log.Info("Affiliate tracker starting",
		logger.Int("port", cfg.Service.Port),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Affiliate tracker exited cleanly")
	return 0
}
