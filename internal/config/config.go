// Package config handles TOML configuration for cfs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	// DisablePluginsEnv turns plugin execution off when set to "1" or "true".
	DisablePluginsEnv = "CFS_DISABLE_PLUGINS"
	// OTLPEndpointEnv supplies the OTLP endpoint when the file sets none.
	OTLPEndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the root configuration structure.
type Config struct {
	AWS     AWSConfig     `toml:"aws"`
	Output  OutputConfig  `toml:"output"`
	Sync    SyncConfig    `toml:"sync"`
	Plugins PluginsConfig `toml:"plugins"`
	Browse  BrowseConfig  `toml:"browse"`
	Search  SearchConfig  `toml:"search"`
	Log     LogConfig     `toml:"log"`
	OTel    OTelConfig    `toml:"otel"`
}

// AWSConfig holds AWS provider settings.
type AWSConfig struct {
	Region  string `toml:"region"`
	Profile string `toml:"profile"`
}

// OutputConfig holds the location of the mirrored tree.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// SyncConfig restricts which kinds a sync writes. Empty means all.
type SyncConfig struct {
	Kinds []string `toml:"kinds"`
}

// PluginsConfig holds plugin runner settings.
type PluginsConfig struct {
	Disabled bool `toml:"disabled"`
	// Interpreters maps script extensions to the command that runs them,
	// e.g. ".py" = ["python3"]. Entries add to or replace the built-ins.
	Interpreters map[string][]string `toml:"interpreters"`
}

// BrowseConfig holds browse server settings.
type BrowseConfig struct {
	Addr string `toml:"addr"`
	Open *bool  `toml:"open"`
}

// SearchConfig holds settings for loading the tree into memory.
type SearchConfig struct {
	Workers int `toml:"workers"`
}

// OTelConfig holds OpenTelemetry export settings. Metrics are pushed over
// OTLP gRPC only when Endpoint is set.
type OTelConfig struct {
	Endpoint string `toml:"endpoint"` // e.g. "localhost:4317"
	Insecure bool   `toml:"insecure"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a TOML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = ".cfs"
	}
	if cfg.Browse.Addr == "" {
		cfg.Browse.Addr = "localhost:3000"
	}
	if cfg.Browse.Open == nil {
		open := true
		cfg.Browse.Open = &open
	}
	if cfg.Search.Workers == 0 {
		cfg.Search.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	switch strings.ToLower(strings.TrimSpace(getenv(DisablePluginsEnv))) {
	case "1", "true":
		c.Plugins.Disabled = true
	}
	if c.OTel.Endpoint == "" {
		c.OTel.Endpoint = strings.TrimSpace(getenv(OTLPEndpointEnv))
	}
}

// OpenBrowser reports whether browse opens the page on start.
func (c *Config) OpenBrowser() bool {
	return c.Browse.Open == nil || *c.Browse.Open
}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output: dir must not be empty")
	}
	if c.Browse.Addr == "" {
		return fmt.Errorf("browse: addr must not be empty")
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search: workers must be at least 1 (got %d)", c.Search.Workers)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: invalid level %q", c.Log.Level)
	}
	for ext, command := range c.Plugins.Interpreters {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("plugins: interpreter extension %q must look like \".py\"", ext)
		}
		if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
			return fmt.Errorf("plugins: interpreter for %q must name a command", ext)
		}
	}
	return nil
}
