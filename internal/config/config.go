// Package config loads userview's configuration: defaults, then an optional
// userview.yaml, then USERVIEW_* / USERSERVER_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v2"

	"github.com/graphql-sample/userview/graphql"
)

// Config represents userview's configuration, generally read from
// userview.yaml.
//
// Callers must call ValidateAndFillDefaults before using a Config they built
// by hand.
type Config struct {
	// Endpoint is the GraphQL server the client talks to.
	Endpoint string `yaml:"endpoint" env:"USERVIEW_ENDPOINT"`
	// UserID is the id the user view is mounted with.
	UserID      string        `yaml:"user_id" env:"USERVIEW_USER_ID"`
	FetchPolicy string        `yaml:"fetch_policy" env:"USERVIEW_FETCH_POLICY"`
	CacheSize   int           `yaml:"cache_size" env:"USERVIEW_CACHE_SIZE"`
	Timeout     time.Duration `yaml:"timeout" env:"USERVIEW_TIMEOUT"`
	// Listen, if set, serves the page over HTTP instead of printing it.
	Listen string `yaml:"listen" env:"USERVIEW_LISTEN"`

	Log    LogConfig    `yaml:"log" envPrefix:"USERVIEW_LOG_"`
	Server ServerConfig `yaml:"server" envPrefix:"USERSERVER_"`

	policy graphql.FetchPolicy
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	// Output is stdout, stderr, or a file path.
	Output string `yaml:"output" env:"OUTPUT"`
}

// ServerConfig configures the demo GraphQL server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

const (
	DefaultEndpoint = "http://localhost:8080/graphql"
	DefaultUserID   = "1"
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		UserID:      DefaultUserID,
		FetchPolicy: graphql.CacheFirst.String(),
		CacheSize:   graphql.DefaultCacheSize,
		Timeout:     10 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Policy returns the parsed FetchPolicy.  Only valid after
// ValidateAndFillDefaults.
func (c *Config) Policy() graphql.FetchPolicy {
	return c.policy
}

// ValidateAndFillDefaults ensures that the configuration is valid, and fills
// in any options that were unspecified.
func (c *Config) ValidateAndFillDefaults() error {
	def := Default()

	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an absolute http(s) URL", c.Endpoint)
	}

	if strings.TrimSpace(c.UserID) == "" {
		c.UserID = def.UserID
	}

	c.policy, err = graphql.ParseFetchPolicy(c.FetchPolicy)
	if err != nil {
		return err
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if c.CacheSize == 0 {
		c.CacheSize = def.CacheSize
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Log.Output == "" {
		c.Log.Output = def.Log.Output
	}

	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	return nil
}

// ReadAndValidateConfig builds the configuration from the defaults, the given
// file (skipped when filename is empty), and the environment, validates it,
// and returns it.
func ReadAndValidateConfig(filename string) (*Config, error) {
	config := Default()

	if filename != "" {
		text, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("unreadable config file %v: %w", filename, err)
		}
		err = yaml.UnmarshalStrict(text, config)
		if err != nil {
			return nil, fmt.Errorf("invalid config file %v: %w", filename, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := config.ValidateAndFillDefaults(); err != nil {
		if filename == "" {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return nil, fmt.Errorf("invalid config file %v: %w", filename, err)
	}
	return config, nil
}
