package config

import (
	"errors"
	"net/url"
	"os"
	"time"
)

// TokenFileName is the file inside TokenDir holding the session token.
const TokenFileName = "token"

// Config holds runtime settings for the pdfdesk CLI.
type Config struct {
	ServerURL      string
	TokenDir       string
	RequestTimeout time.Duration
}

var ErrInvalidServerURL = errors.New("server URL must be an absolute http(s) URL")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.TokenDir = ".pdfdesk"
	c.RequestTimeout = 30 * time.Second
}

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
