package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pixelready/express-jobly/db"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Retry    RetryConfig    `yaml:"retry"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig describes the store. URL wins when set; otherwise the DSN is
// built by the named driver from the structured fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	DefaultTimeout  time.Duration `yaml:"default_timeout"`

	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
	LogArgs            bool          `yaml:"log_args"`
}

type AuthConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RetryConfig governs retries of read routes on transient store errors.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 3001},
		Database: DatabaseConfig{
			Driver:             "postgres",
			Host:               "localhost",
			Port:               5432,
			Name:               "jobly",
			SSLMode:            "disable",
			MaxOpenConns:       25,
			MaxIdleConns:       10,
			ConnMaxLifetime:    5 * time.Minute,
			DefaultTimeout:     10 * time.Second,
			SlowQueryThreshold: 200 * time.Millisecond,
		},
		Auth:  AuthConfig{SecretKey: "secret-dev"},
		Log:   LogConfig{Level: "info"},
		Retry: RetryConfig{MaxAttempts: 3, Delay: 100 * time.Millisecond},
	}
}

// Load builds the configuration in order of increasing precedence:
//  1. defaults
//  2. the YAML file at path, or at $JOBLY_CONFIG when path is empty
//  3. explicit environment variables, including those from a .env file
//
// godotenv never overrides variables that are already set, so the real
// environment beats .env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("JOBLY_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)

	d := &c.Database
	d.URL = getEnvOrDefault("DATABASE_URL", d.URL)
	d.Driver = getEnvOrDefault("DB_DRIVER", d.Driver)
	d.Host = getEnvOrDefault("DB_HOST", d.Host)
	d.Port = getEnvAsInt("DB_PORT", d.Port)
	d.User = getEnvOrDefault("DB_USER", d.User)
	d.Password = getEnvOrDefault("DB_PASSWORD", d.Password)
	d.Name = getEnvOrDefault("DB_NAME", d.Name)
	d.SSLMode = getEnvOrDefault("DB_SSLMODE", d.SSLMode)
	d.DefaultTimeout = getEnvAsDuration("DB_DEFAULT_TIMEOUT", d.DefaultTimeout)
	d.SlowQueryThreshold = getEnvAsDuration("DB_SLOW_QUERY", d.SlowQueryThreshold)

	c.Auth.SecretKey = getEnvOrDefault("SECRET_KEY", c.Auth.SecretKey)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Auth.SecretKey == "" {
		problems = append(problems, "auth.secret_key is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Database.URL == "" {
		if _, err := db.LookupDriver(c.Database.Driver); err != nil {
			problems = append(problems, fmt.Sprintf("database.driver %q is not registered", c.Database.Driver))
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.url or database.name is required")
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: validation errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DriverOptions converts the structured fields for db.OpenWithDriver.
func (d DatabaseConfig) DriverOptions() db.DriverOptions {
	return db.DriverOptions{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
	}
}

// Pool converts the pool settings for db.Open and db.OpenWithDriver.
func (d DatabaseConfig) Pool(hooks ...db.Hook) db.Config {
	return db.Config{
		DSN:             d.URL,
		DriverName:      d.Driver,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		DefaultTimeout:  d.DefaultTimeout,
		Hooks:           hooks,
	}
}

func (r RetryConfig) DB() db.RetryConfig {
	return db.RetryConfig{MaxAttempts: r.MaxAttempts, Delay: r.Delay}
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q is invalid", l.Level)
	}
	return lvl, nil
}

// Helper functions
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
