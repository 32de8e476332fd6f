// Package config loads and validates the TOML server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	Server  *ServerConfig  `toml:"server,omitempty"`
	Static  *StaticConfig  `toml:"static,omitempty"`
	Logging *LoggingConfig `toml:"logging,omitempty"`
}

// ServerConfig holds listener and lifecycle settings.
type ServerConfig struct {
	Address                 *string `toml:"address,omitempty"`
	GracefulShutdownTimeout *string `toml:"graceful_shutdown_timeout,omitempty"` // e.g. "10s"
}

// StaticConfig configures the static content handler.
type StaticConfig struct {
	DocumentRoot          string  `toml:"document_root"`
	ServeDirectoryListing *bool   `toml:"serve_directory_listing,omitempty"`
	MimeTypesPath         *string `toml:"mime_types_path,omitempty"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `toml:"level,omitempty"`
	Format string `toml:"format,omitempty"`
}

// Default returns a configuration with all defaults applied: listen on
// :8080, serve the current directory with listings enabled, JSON logs at
// info level.
func Default() *Config {
	addr := ":8080"
	timeout := "10s"
	listing := true
	return &Config{
		Server: &ServerConfig{
			Address:                 &addr,
			GracefulShutdownTimeout: &timeout,
		},
		Static: &StaticConfig{
			DocumentRoot:          ".",
			ServeDirectoryListing: &listing,
		},
		Logging: &LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a TOML config file and fills any omitted values with defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}
	cfg.applyDefaults()

	// Relative paths in the file are relative to the file itself.
	base := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Static.DocumentRoot) {
		cfg.Static.DocumentRoot = filepath.Join(base, cfg.Static.DocumentRoot)
	}
	if cfg.Static.MimeTypesPath != nil && *cfg.Static.MimeTypesPath != "" && !filepath.IsAbs(*cfg.Static.MimeTypesPath) {
		p := filepath.Join(base, *cfg.Static.MimeTypesPath)
		cfg.Static.MimeTypesPath = &p
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server == nil {
		c.Server = def.Server
	}
	if c.Server.Address == nil || *c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.GracefulShutdownTimeout == nil || *c.Server.GracefulShutdownTimeout == "" {
		c.Server.GracefulShutdownTimeout = def.Server.GracefulShutdownTimeout
	}
	if c.Static == nil {
		c.Static = def.Static
	}
	if c.Static.DocumentRoot == "" {
		c.Static.DocumentRoot = def.Static.DocumentRoot
	}
	if c.Static.ServeDirectoryListing == nil {
		c.Static.ServeDirectoryListing = def.Static.ServeDirectoryListing
	}
	if c.Logging == nil {
		c.Logging = def.Logging
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
}

// Validate checks the configuration and makes the document root absolute.
// The root must exist and be a directory at startup; it is treated as fixed
// for the lifetime of the server.
func (c *Config) Validate() error {
	abs, err := filepath.Abs(c.Static.DocumentRoot)
	if err != nil {
		return fmt.Errorf("document_root %q: %w", c.Static.DocumentRoot, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("document_root %q: %w", abs, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("document_root %q is not a directory", abs)
	}
	c.Static.DocumentRoot = abs

	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	return nil
}

// ShutdownTimeout parses the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(*c.Server.GracefulShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("graceful_shutdown_timeout %q: %w", *c.Server.GracefulShutdownTimeout, err)
	}
	return d, nil
}
