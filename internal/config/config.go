package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL is a PostgreSQL connection URL for the postgres driver and a
// sqlite DSN (file path or "file::memory:") for the sqlite driver.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
	TokenSweepIntervalMinutes   int    `mapstructure:"token_sweep_interval_minutes"   validate:"gte=0"`
}

// RateLimitConfig controls request limiting on the public auth endpoints.
// A zero RequestsPerMinute disables limiting; an empty RedisAddr keeps the
// counters in process memory. Clients are keyed by the connection's peer
// address unless TrustProxyHeaders is set, in which case X-Forwarded-For and
// X-Real-IP are honored. Only enable it behind a proxy that overwrites them.
type RateLimitConfig struct {
	RequestsPerMinute int    `mapstructure:"requests_per_minute" validate:"gte=0"`
	RedisAddr         string `mapstructure:"redis_addr"`
	TrustProxyHeaders bool   `mapstructure:"trust_proxy_headers"`
}
