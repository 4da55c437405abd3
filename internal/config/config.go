package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"bikeshare-dashboard/pkg/database"
)

// Dataset sources
const (
	SourceCSV      = "csv"
	SourceDatabase = "database"
)

// Config holds the environment driven configuration shared by all commands
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Dataset  DatasetConfig  `envPrefix:"DATASET_"`
	Logging  LoggingConfig  `envPrefix:"LOG_"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig configures the optional SQL store
type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"bikeshare"`
	Password        string        `env:"PASSWORD"`
	Database        string        `env:"NAME" envDefault:"bikeshare"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"./data/bikeshare.db"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

// DatasetConfig selects where dashboard records come from
type DatasetConfig struct {
	Source string `env:"SOURCE" envDefault:"csv"`
	Path   string `env:"PATH" envDefault:"./day.csv"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

// CacheConfig configures the dashboard result cache
type CacheConfig struct {
	Size int           `env:"SIZE" envDefault:"128"`
	TTL  time.Duration `env:"TTL" envDefault:"5m"`
}

// LoadConfig reads an optional .env file and parses the environment
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Dataset.Source = strings.ToLower(strings.TrimSpace(cfg.Dataset.Source))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Dataset.Source {
	case SourceCSV:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			problems = append(problems, "dataset path cannot be empty when using the csv source")
		}
	case SourceDatabase:
		problems = append(problems, c.Database.validate()...)
	default:
		problems = append(problems, fmt.Sprintf("invalid dataset source '%s': must be one of [%s %s]",
			c.Dataset.Source, SourceCSV, SourceDatabase))
	}

	if c.Cache.Size < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must not be negative", c.Cache.Size))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateDatabase checks only the database section, for the tools that
// always need a database regardless of the dashboard source
func (c *Config) ValidateDatabase() error {
	if problems := c.Database.validate(); len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func (d DatabaseConfig) validate() []string {
	var problems []string
	switch d.Driver {
	case database.DriverPostgres:
		if d.Host == "" {
			problems = append(problems, "database host is required for the postgres driver")
		}
		if d.Database == "" {
			problems = append(problems, "database name is required for the postgres driver")
		}
	case database.DriverSQLite:
		if d.SQLitePath == "" {
			problems = append(problems, "sqlite path is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database driver '%s': must be one of [%s %s]",
			d.Driver, database.DriverPostgres, database.DriverSQLite))
	}
	if d.MaxOpenConns < 1 {
		problems = append(problems, fmt.Sprintf("invalid max open connections %d: must be at least 1", d.MaxOpenConns))
	}
	return problems
}

// DatabaseConfig converts the section into the database package's Config
func (c *Config) DatabaseConfig() *database.Config {
	return &database.Config{
		Driver:          c.Database.Driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		SQLitePath:      c.Database.SQLitePath,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
