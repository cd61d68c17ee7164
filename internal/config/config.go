// Package config provides configuration loading for timeboard.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// tokenPlaceholder is the value shipped in the sample config. A token
// file still holding it means the operator never configured a real
// credential, so startup must fail rather than hammer the upstream
// API with a bogus bearer token.
const tokenPlaceholder = "changeme"

// Config is the full timeboard server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// UpstreamConfig holds the upstream project-management API settings.
// Token is populated from TokenFile during Load and never appears in
// the YAML file itself.
type UpstreamConfig struct {
	BaseURL   string `koanf:"base_url"`
	TokenFile string `koanf:"token_file"`
	ProjectID int64  `koanf:"project_id"`

	Token Secret `koanf:"-" json:"-"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig selects the zap logger profile.
type LoggingConfig struct {
	Development bool   `koanf:"development"`
	Level       string `koanf:"level"`
}

// Validate checks the configuration for startup-blocking problems.
// A failure here means the process must not serve traffic.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base_url is required")
	}
	if c.Upstream.ProjectID == 0 {
		return errors.New("upstream project_id is required")
	}
	if c.Upstream.TokenFile == "" {
		return errors.New("upstream token_file is required")
	}
	if !c.Upstream.Token.IsSet() {
		return fmt.Errorf("upstream token file %s is empty", c.Upstream.TokenFile)
	}
	if strings.TrimSpace(c.Upstream.Token.Value()) == tokenPlaceholder {
		return fmt.Errorf("upstream token file %s still holds the placeholder value", c.Upstream.TokenFile)
	}
	if c.Cache.Path == "" {
		return errors.New("cache path is required")
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "cache.json"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
