// Package config loads linkboard settings from the environment.
// Every section is processed with the "APP" prefix, so APP_PORT and PORT both work.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "APP"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
	Events   EventsConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Host has no alternate tag, so only APP_HOST is read. Shells commonly
	// export HOST as the machine name.
	Host string `default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"8080"`

	// Mode is the gin mode: debug, release or test.
	Mode string `envconfig:"GIN_MODE" default:"release"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `envconfig:"DB_DRIVER" default:"postgres"`
	URL    string `envconfig:"DATABASE_URL" default:"host=localhost user=postgres password=postgres dbname=linkboard port=5432 sslmode=disable"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	AutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	// LogLevel is the gorm log level: silent, error, warn, info.
	LogLevel string `envconfig:"DB_LOG_LEVEL" default:"warn"`
}

// AuthConfig holds the session credential settings.
type AuthConfig struct {
	Secret string `envconfig:"SECRET" required:"true"`

	// TokenTTL of zero issues tokens without an expiry claim.
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`

	// Resolved callers are cached by user id. A size or ttl of zero disables
	// the cache.
	CallerCacheSize int           `envconfig:"CALLER_CACHE_SIZE" default:"512"`
	CallerCacheTTL  time.Duration `envconfig:"CALLER_CACHE_TTL" default:"30s"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"`
}

// EventsConfig tunes the in-process event bus.
type EventsConfig struct {
	// Buffer is the number of undelivered events kept per subscriber before
	// further events are dropped for it.
	Buffer int `envconfig:"EVENT_BUFFER" default:"16"`
}

// Addr returns the listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	sections := []struct {
		name string
		spec any
	}{
		{"server", &cfg.Server},
		{"database", &cfg.Database},
		{"auth", &cfg.Auth},
		{"log", &cfg.Log},
		{"events", &cfg.Events},
	}
	for _, s := range sections {
		if err := envconfig.Process(envPrefix, s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only the database section, for commands that never
// serve requests and so need no signing secret.
func LoadDatabase() (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret must not be empty")
	}
	if c.Events.Buffer < 1 {
		return fmt.Errorf("event buffer must be positive, got %d", c.Events.Buffer)
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("token ttl must not be negative")
	}
	return nil
}
