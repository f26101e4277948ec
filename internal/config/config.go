// Package config handles configuration loading for scaffold.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for scaffold.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	AWS          AWSConfig          `mapstructure:"aws"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Workers      WorkersConfig      `mapstructure:"workers"`
	Journal      JournalConfig      `mapstructure:"journal"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	// UseMock swaps the real model client for the deterministic mock.
	UseMock bool `mapstructure:"use_mock"`
}

// AWSConfig holds AWS Bedrock settings.
type AWSConfig struct {
	UseBedrock bool   `mapstructure:"use_bedrock"`
	Region     string `mapstructure:"region"`
	Profile    string `mapstructure:"profile"`
}

// OrchestratorConfig holds orchestration settings.
type OrchestratorConfig struct {
	// DispatchTimeout bounds how long a dispatched task waits for its
	// worker response.
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
}

// WorkersConfig holds worker roster settings.
type WorkersConfig struct {
	// RosterPath is the YAML file defining workers. Empty means the
	// built-in roster.
	RosterPath string `mapstructure:"roster_path"`
	// Watch enables hot reload of the roster file.
	Watch bool `mapstructure:"watch"`
}

// JournalConfig holds execution journal settings.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, SCAFFOLD_*)
// 2. Project config (.scaffold.yaml in current directory or parent)
// 3. User config (~/.config/scaffold/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SCAFFOLD")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("aws.use_bedrock", "CLAUDE_CODE_USE_BEDROCK")
	v.BindEnv("aws.region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("anthropic.use_mock", false)

	v.SetDefault("aws.use_bedrock", false)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.profile", "")

	v.SetDefault("orchestrator.dispatch_timeout", "2m")

	v.SetDefault("workers.roster_path", "")
	v.SetDefault("workers.watch", false)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// getUserConfigDir returns the XDG config directory for scaffold.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "scaffold")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "scaffold")
	}
	return filepath.Join(home, ".config", "scaffold")
}

// findProjectConfig searches for .scaffold.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".scaffold.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 8192,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Orchestrator: OrchestratorConfig{
			DispatchTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
