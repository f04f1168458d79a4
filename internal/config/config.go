package config

import (
	"fmt"
	"time"

	"github.com/jonesrussell/affiliate-tracker/pkg/configloader"
	"github.com/jonesrussell/affiliate-tracker/pkg/rediscache"
)

// Default configuration values.
const (
	defaultServiceName  = "affiliate-tracker"
	defaultServicePort  = 8094
	defaultVersion      = "0.1.0"
	defaultCodeLength   = 8
	defaultBufferSize   = 1000
	defaultFlushThresh  = 500
	defaultLoggingLevel = "info"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "affiliate_tracker"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"
	defaultRedisAddress = "localhost:6379"

	defaultMaxClicksPerMinute = 60
	defaultWindowSeconds      = 60

	defaultFlushIntervalS    = 1
	defaultRedirectTimeoutMs = 50
	defaultAttributionDays   = 30
	defaultCacheTTLMinutes   = 10
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig     `yaml:"service"`
	Database  DatabaseConfig    `yaml:"database"`
	Redis     rediscache.Config `yaml:"redis"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"TRACKER_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"    yaml:"debug"`

	// JWTSecret validates bearer tokens issued by the identity subsystem.
	JWTSecret string `env:"TRACKER_JWT_SECRET" yaml:"jwt_secret"`

	// CodeLength is the tracking code length in characters.
	CodeLength int `yaml:"code_length"`

	// RedirectTimeout bounds link resolution on the redirect hot path.
	RedirectTimeout time.Duration `yaml:"redirect_timeout"`

	// AttributionWindow is the maximum click-to-conversion age for a
	// conversion to be credited to a click.
	AttributionWindow time.Duration `env:"TRACKER_ATTRIBUTION_WINDOW" yaml:"attribution_window"`

	// LinkCacheTTL is how long resolved links stay in Redis.
	LinkCacheTTL time.Duration `yaml:"link_cache_ttl"`

	// BufferSize is the click event channel capacity.
	BufferSize int `yaml:"buffer_size"`

	// FlushInterval and FlushThreshold control click batch writes.
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_TRACKER_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_TRACKER_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_TRACKER_USER"     yaml:"user"`
	Password string `env:"POSTGRES_TRACKER_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_TRACKER_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_TRACKER_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// MigrateURL returns the PostgreSQL URL used by the migrate command.
func (d *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RateLimitConfig holds redirect-path rate limiting configuration.
type RateLimitConfig struct {
	MaxClicksPerMinute int `yaml:"max_clicks_per_minute"`
	WindowSeconds      int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return configloader.LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.CodeLength == 0 {
		svc.CodeLength = defaultCodeLength
	}
	if svc.RedirectTimeout == 0 {
		svc.RedirectTimeout = defaultRedirectTimeoutMs * time.Millisecond
	}
	if svc.AttributionWindow == 0 {
		svc.AttributionWindow = defaultAttributionDays * 24 * time.Hour
	}
	if svc.LinkCacheTTL == 0 {
		svc.LinkCacheTTL = defaultCacheTTLMinutes * time.Minute
	}
	if svc.BufferSize == 0 {
		svc.BufferSize = defaultBufferSize
	}
	if svc.FlushInterval == 0 {
		svc.FlushInterval = defaultFlushIntervalS * time.Second
	}
	if svc.FlushThreshold == 0 {
		svc.FlushThreshold = defaultFlushThresh
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setRedisDefaults(r *rediscache.Config) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxClicksPerMinute == 0 {
		rl.MaxClicksPerMinute = defaultMaxClicksPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := configloader.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := configloader.ValidateRequired("service.jwt_secret", c.Service.JWTSecret); err != nil {
		return err
	}
	if err := configloader.ValidatePositive("service.code_length", c.Service.CodeLength); err != nil {
		return err
	}
	if c.Service.AttributionWindow < 0 {
		return &configloader.ValidationError{
			Field:   "service.attribution_window",
			Message: "must not be negative",
		}
	}
	return nil
}
