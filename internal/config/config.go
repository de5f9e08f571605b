// Package config handles loading and validating the shelfd configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for shelfd.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Transports TransportsConfig `mapstructure:"transports" yaml:"transports"`
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	Client     ClientConfig     `mapstructure:"client" yaml:"client"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds the mediator HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TransportsConfig holds the optional extra transports.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc" yaml:"grpc"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// ModelConfig selects and configures the model backend.
type ModelConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend"` // "cli" or "ollama"
	Name          string        `mapstructure:"name" yaml:"name"`       // model identifier, e.g. "qwen2.5:3b-instruct-q4_K_M"
	Runtime       string        `mapstructure:"runtime" yaml:"runtime"` // runtime binary for the cli backend
	Endpoint      string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	WarmupTimeout time.Duration `mapstructure:"warmup_timeout" yaml:"warmup_timeout"`
	WarmupPrompt  string        `mapstructure:"warmup_prompt" yaml:"warmup_prompt"`
	MaxConcurrent int           `mapstructure:"max_concurrent" yaml:"max_concurrent"`
}

// ClientConfig configures the remote client used by the ask and intent commands.
type ClientConfig struct {
	Host      string        `mapstructure:"host" yaml:"host"`
	Port      int           `mapstructure:"port" yaml:"port"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Transport string        `mapstructure:"transport" yaml:"transport"` // "http" or "grpc"
}

// Addr returns host:port of the mediator.
func (c ClientConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json, text
}

// newViper builds a viper instance with defaults, the config file search
// path and the SHELFD_ environment mapping.
func newViper(configFile string) *viper.Viper {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 28080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 28081)
	v.SetDefault("model.backend", "cli")
	v.SetDefault("model.name", "qwen2.5:3b-instruct-q4_K_M")
	v.SetDefault("model.runtime", "ollama")
	v.SetDefault("model.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("model.timeout", 60*time.Second)
	v.SetDefault("model.warmup_timeout", 30*time.Second)
	v.SetDefault("model.warmup_prompt", "test")
	v.SetDefault("model.max_concurrent", 1)
	v.SetDefault("client.host", "192.168.0.215")
	v.SetDefault("client.port", 28080)
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.transport", "http")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("shelfd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/shelfd")
	}

	// Environment variables: SHELFD_SERVER_PORT, SHELFD_MODEL_NAME, etc.
	v.SetEnvPrefix("SHELFD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./shelfd.yaml, ./configs/shelfd.yaml, /etc/shelfd/shelfd.yaml.
// A .env file in the working directory is loaded into the environment first;
// variables that are already set win.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := newViper(configFile)

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Model.Backend {
	case "cli":
		if c.Model.Runtime == "" {
			return fmt.Errorf("model.runtime is required for the cli backend")
		}
	case "ollama":
		if c.Model.Endpoint == "" {
			return fmt.Errorf("model.endpoint is required for the ollama backend")
		}
	default:
		return fmt.Errorf("unknown model backend %q", c.Model.Backend)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	switch c.Client.Transport {
	case "http", "grpc":
	default:
		return fmt.Errorf("unknown client transport %q", c.Client.Transport)
	}
	return nil
}
