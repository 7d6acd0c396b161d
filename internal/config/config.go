// Package config loads the layered finewiki-mcp configuration: hardcoded
// defaults, then .finewiki.yaml in the working directory, then FINEWIKI_*
// environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-directory configuration file.
const ConfigFileName = ".finewiki.yaml"

// Config represents the complete finewiki-mcp configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Paths   PathsConfig  `yaml:"paths" json:"paths"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// PathsConfig locates the corpus and the index root.
type PathsConfig struct {
	// CorpusDir holds the source data files.
	CorpusDir string `yaml:"corpus_dir" json:"corpus_dir"`
	// IndexDir is the index root directory.
	IndexDir string `yaml:"index_dir" json:"index_dir"`
}

// SearchConfig configures query behavior.
type SearchConfig struct {
	// MaxResults is the default search hit cap.
	MaxResults int `yaml:"max_results" json:"max_results"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			CorpusDir: "corpus",
			IndexDir:  "index",
		},
		Search: SearchConfig{
			MaxResults: 10,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// Load loads configuration for the given directory. Precedence, lowest to
// highest: defaults, .finewiki.yaml in dir, FINEWIKI_* environment
// variables. A missing config file is not an error.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML merges configuration from a YAML file over the current values.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Paths.CorpusDir != "" {
		c.Paths.CorpusDir = other.Paths.CorpusDir
	}
	if other.Paths.IndexDir != "" {
		c.Paths.IndexDir = other.Paths.IndexDir
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies FINEWIKI_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FINEWIKI_CORPUS_DIR"); v != "" {
		c.Paths.CorpusDir = v
	}
	if v := os.Getenv("FINEWIKI_INDEX_DIR"); v != "" {
		c.Paths.IndexDir = v
	}
	if v := os.Getenv("FINEWIKI_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("FINEWIKI_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	if c.Paths.CorpusDir == "" {
		return fmt.Errorf("paths.corpus_dir must not be empty")
	}
	if c.Paths.IndexDir == "" {
		return fmt.Errorf("paths.index_dir must not be empty")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("server.log_level must be one of debug, info, warn, error, got %q", c.Server.LogLevel)
	}
	return nil
}

// Save writes the configuration as YAML to the given directory.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
