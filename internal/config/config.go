// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "siwe"

	// DevelopmentURL is used when no public URL is configured
	DevelopmentURL = "http://localhost:3000"
)

var ErrMissingSecret = errors.New("SIWE_SESSION_SECRET must be set")

// Config holds every setting of the service
type Config struct {
	Env        string `default:"development"`
	ListenAddr string `split_words:"true" default:":9000"`
	LogLevel   string `split_words:"true" default:"info"`

	// PublicURL is the origin users sign in from; its host is the expected
	// message domain. DeploymentHost is the fallback for platforms that only
	// expose a host name.
	PublicURL      string `split_words:"true"`
	DeploymentHost string `split_words:"true"`

	SessionSecret string        `split_words:"true"`
	SessionTTL    time.Duration `split_words:"true" default:"24h"`
	NonceTTL      time.Duration `split_words:"true" default:"10m"`
	MessageMaxAge time.Duration `split_words:"true" default:"10m"`
	ClockSkew     time.Duration `split_words:"true" default:"1m"`

	RedisURL     string  `split_words:"true"`
	RateLimit    float64 `split_words:"true" default:"5"`
	CookieSecure bool    `split_words:"true" default:"true"`

	origin string
	domain string
}

// Load reads an optional .env file, then the SIWE_* environment variables
func Load(filename string) (*Config, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := new(Config)
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvironment(filename string) error {
	if filename != "" {
		return godotenv.Overload(filename)
	}
	err := godotenv.Load()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyDefaults derives the expected origin and domain once
func (c *Config) ApplyDefaults() error {
	origin := c.PublicURL
	switch {
	case origin != "":
	case c.DeploymentHost != "":
		origin = "https://" + c.DeploymentHost
	default:
		origin = DevelopmentURL
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid public url %q", origin)
	}

	c.origin = u.Scheme + "://" + u.Host + strings.TrimSuffix(u.Path, "/")
	c.domain = u.Host
	return nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return ErrMissingSecret
	}
	if c.SessionTTL <= 0 || c.NonceTTL <= 0 {
		return errors.New("session and nonce TTLs must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// ExpectedOrigin is the URI sign-in messages must carry
func (c *Config) ExpectedOrigin() string { return c.origin }

// ExpectedDomain is the domain sign-in messages must carry
func (c *Config) ExpectedDomain() string { return c.domain }

// UsingFallbackURL reports whether no public URL was configured
func (c *Config) UsingFallbackURL() bool {
	return c.PublicURL == "" && c.DeploymentHost == ""
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
