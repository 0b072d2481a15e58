package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    LoggerConfig    `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port           int    `yaml:"port" env:"PORT" env-default:"4000"`
	Mode           string `yaml:"mode" env:"GIN_MODE" env-default:"release"`                                 // debug, release
	Timezone       string `yaml:"timezone" env:"TZ_NAME" env-default:"Local"`                                // zone used for "today" and hourly buckets
	FrontendOrigin string `yaml:"frontend_origin" env:"FRONTEND_ORIGIN" env-default:"http://localhost:5173"` // CORS allowed origin
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host" env:"MYSQL_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"MYSQL_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"MYSQL_USER" env-default:"root"`
	Password string `yaml:"password" env:"MYSQL_PASSWORD"`
	Database string `yaml:"database" env:"MYSQL_DATABASE" env-default:"swasthyaflow"`
}

// DSN builds the go-sql-driver DSN. Times are stored in UTC.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level" env:"LOG_LEVEL" env-default:"info"`      // debug, info, warn, error
	Output string           `yaml:"output" env:"LOG_OUTPUT" env-default:"console"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path       string `yaml:"path" env:"LOG_FILE" env-default:"logs/swasthyaflow.log"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"7"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
}

// AuthConfig identity resolution configuration
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are verified.
	// When false the dev header is trusted as the caller identity.
	EnableVerification bool   `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION"`
	JWTSecret          string `yaml:"-" env:"JWT_SECRET"` // secret, env only
	DevHeader          string `yaml:"dev_header" env:"AUTH_DEV_HEADER" env-default:"X-User-ID"`
}

// AnalyticsConfig live analytics configuration (durations in seconds)
type AnalyticsConfig struct {
	KeepAliveInterval int `yaml:"keep_alive_interval" env:"ANALYTICS_KEEP_ALIVE" env-default:"25"`
	RefreshInterval   int `yaml:"refresh_interval" env:"ANALYTICS_REFRESH" env-default:"3600"`
	BroadcastTimeout  int `yaml:"broadcast_timeout" env:"ANALYTICS_BROADCAST_TIMEOUT" env-default:"10"`
	SubscriberBuffer  int `yaml:"subscriber_buffer" env-default:"16"`
}

func (c AnalyticsConfig) KeepAlive() time.Duration {
	return time.Duration(c.KeepAliveInterval) * time.Second
}

func (c AnalyticsConfig) Refresh() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

func (c AnalyticsConfig) BroadcastDeadline() time.Duration {
	return time.Duration(c.BroadcastTimeout) * time.Second
}

// Location resolves the configured time zone.
func (c ServerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		return err
	}

	GlobalConfig = cfg
	return nil
}

// Load reads the YAML file (if present) and applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, err
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := c.Server.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Server.Timezone, err)
	}
	if c.Auth.EnableVerification && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when auth verification is enabled")
	}
	if c.Analytics.KeepAliveInterval <= 0 {
		return fmt.Errorf("invalid analytics keep_alive_interval: %d", c.Analytics.KeepAliveInterval)
	}
	if c.Analytics.SubscriberBuffer <= 0 {
		c.Analytics.SubscriberBuffer = 16
	}
	return nil
}
