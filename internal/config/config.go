// Package config loads SellerLegend client configuration from the
// environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so values like "30s" decode from both
// environment variables and YAML.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all client configuration. Environment variables use the SL_
// prefix; an optional YAML file overrides environment values.
type Config struct {
	// General
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" yaml:"log_level"`
	Environment string `envconfig:"ENVIRONMENT" default:"development" yaml:"environment"`

	// Instance and OAuth application
	BaseURL      string `envconfig:"BASE_URL" yaml:"base_url"`
	ClientID     string `envconfig:"CLIENT_ID" yaml:"client_id"`
	ClientSecret string `envconfig:"CLIENT_SECRET" yaml:"client_secret"`
	RedirectURI  string `envconfig:"REDIRECT_URI" default:"http://localhost:5001/callback" yaml:"redirect_uri"`

	// Pre-issued tokens (optional — bypasses the grant flows)
	AccessToken  string `envconfig:"ACCESS_TOKEN" yaml:"access_token"`
	RefreshToken string `envconfig:"REFRESH_TOKEN" yaml:"refresh_token"`

	// Request pipeline
	Timeout       Duration `envconfig:"TIMEOUT" default:"30s" yaml:"timeout"`
	MaxRetries    int      `envconfig:"MAX_RETRIES" default:"3" yaml:"max_retries"`
	BackoffFactor float64  `envconfig:"BACKOFF_FACTOR" default:"0.3" yaml:"backoff_factor"`

	// Loopback callback server for the authorization-code flow
	CallbackAddr string `envconfig:"CALLBACK_ADDR" default:"localhost:5001" yaml:"callback_addr"`
}

// HasClientCredentials returns true if an OAuth application is configured.
func (c *Config) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// HasToken returns true if a pre-issued access token is configured.
func (c *Config) HasToken() bool {
	return c.AccessToken != ""
}

// Validate checks that the configuration can authenticate at all.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://")
	}
	if !c.HasClientCredentials() && !c.HasToken() {
		return fmt.Errorf("either client credentials or an access token must be configured")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.BackoffFactor <= 0 {
		return fmt.Errorf("backoff factor must be positive")
	}
	return nil
}

// Load reads configuration from SL_-prefixed environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("SL", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads configuration from the environment first, then applies the
// YAML file on top. Fields absent from the file keep their environment or
// default values.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}
