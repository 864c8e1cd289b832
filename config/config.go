// Package config provides configuration loading and management for
// the flag sweeper server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete flag sweeper configuration
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Registry RegistryConfig `yaml:"registry"`
	Audit    AuditConfig    `yaml:"audit"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tools    ToolsConfig    `yaml:"tools"`
}

// EngineConfig configures the external rewrite engine
type EngineConfig struct {
	// Command is the rewrite engine executable
	Command string `yaml:"command"`
	// Args are extra arguments passed to the engine on every invocation
	Args []string `yaml:"args"`
	// Timeout is the maximum time to wait for a single rewrite
	Timeout time.Duration `yaml:"timeout"`
}

// RegistryConfig configures flag config discovery
type RegistryConfig struct {
	// SearchPaths are the directories probed for a flag config file
	// (default: current directory and its parent)
	SearchPaths []string `yaml:"search_paths"`
	// Filenames are the config filename patterns probed in order
	Filenames []string `yaml:"filenames"`
	// Watch reloads the registry when the config file changes on disk
	Watch bool `yaml:"watch"`
}

// AuditConfig configures tool call audit recording
type AuditConfig struct {
	// NATSURL is the NATS server URL for publishing audit records
	// (empty = log-only audit sink)
	NATSURL string `yaml:"nats_url"`
	// Subject is the NATS subject for audit records
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus metrics endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// ToolsConfig configures tool executor settings
type ToolsConfig struct {
	// Allowlist is the list of allowed tool name patterns (empty = allow all)
	Allowlist []string `yaml:"allowlist"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Command: "piranha-cli",
			Timeout: 2 * time.Minute,
		},
		Registry: RegistryConfig{
			SearchPaths: nil, // current directory and parent
			Filenames:   nil, // flags.json, flags.md
			Watch:       false,
		},
		Audit: AuditConfig{
			NATSURL: "",
			Subject: "flagsweeper.toolcalls",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
		Tools: ToolsConfig{
			Allowlist: nil, // Allow all
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.Command == "" {
		return fmt.Errorf("engine.command is required")
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must not be negative")
	}
	if c.Audit.NATSURL != "" && c.Audit.Subject == "" {
		return fmt.Errorf("audit.subject is required when audit.nats_url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Engine
	if other.Engine.Command != "" {
		c.Engine.Command = other.Engine.Command
	}
	if len(other.Engine.Args) > 0 {
		c.Engine.Args = other.Engine.Args
	}
	if other.Engine.Timeout != 0 {
		c.Engine.Timeout = other.Engine.Timeout
	}

	// Registry
	if len(other.Registry.SearchPaths) > 0 {
		c.Registry.SearchPaths = other.Registry.SearchPaths
	}
	if len(other.Registry.Filenames) > 0 {
		c.Registry.Filenames = other.Registry.Filenames
	}
	if other.Registry.Watch {
		c.Registry.Watch = true
	}

	// Audit
	if other.Audit.NATSURL != "" {
		c.Audit.NATSURL = other.Audit.NATSURL
	}
	if other.Audit.Subject != "" {
		c.Audit.Subject = other.Audit.Subject
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}

	// Tools
	if len(other.Tools.Allowlist) > 0 {
		c.Tools.Allowlist = other.Tools.Allowlist
	}
}
