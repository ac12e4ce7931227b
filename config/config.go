// Package config loads demo configuration: defaults, an optional YAML
// file, then environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full demo configuration.
type Config struct {
	// Agent settings.
	Agent AgentConfig `yaml:"agent"`

	// Gemini backend settings. APIKey comes from GOOGLE_API_KEY.
	Gemini GeminiConfig `yaml:"gemini"`

	// MCP filesystem server settings.
	Filesystem FilesystemConfig `yaml:"filesystem"`

	// API spec target.
	API APIConfig `yaml:"api"`

	// Log settings.
	Log LogConfig `yaml:"log"`
}

type AgentConfig struct {
	Name          string `yaml:"name"`
	Model         string `yaml:"model"`
	MaxIterations int    `yaml:"max_iterations"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"-"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type FilesystemConfig struct {
	// Command and Args launch the MCP server, e.g. npx with the
	// filesystem server package.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// Root is the directory the server is allowed to touch. Appended
	// to Args at launch.
	Root string `yaml:"root"`
}

type APIConfig struct {
	// BaseURL overrides the URL embedded in the API document.
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:          "combined_agent",
			Model:         "gemini-2.5-flash",
			MaxIterations: 10,
		},
		Gemini: GeminiConfig{
			Timeout: 60 * time.Second,
		},
		Filesystem: FilesystemConfig{
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-filesystem"},
			Root:    "/tmp",
		},
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// when path is non-empty, then environment variables. GOOGLE_API_KEY
// is required.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("config: GOOGLE_API_KEY environment variable is not set; " +
			"export a Gemini API key before running")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("AGENTBRIDGE_MODEL"); v != "" {
		c.Agent.Model = v
	}
	if v := os.Getenv("AGENTBRIDGE_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("AGENTBRIDGE_FS_ROOT"); v != "" {
		c.Filesystem.Root = v
	}
	if v := os.Getenv("AGENTBRIDGE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
