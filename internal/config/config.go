// Package config provides configuration loading for notionctl.
//
// Configuration is read from an optional YAML file and overridden by
// NOTIONCTL_-prefixed environment variables. The Notion API token is never
// part of the configuration; it is resolved by the credential package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the Notion REST API root.
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultAPIVersion is sent as the Notion-Version header.
	DefaultAPIVersion = "2022-06-28"
	// DefaultKeychainService is the OS secret store service name.
	DefaultKeychainService = "notion-cli"
	// DefaultKeychainAccount is the OS secret store account name.
	DefaultKeychainAccount = "notion-api"
)

// Config holds the complete notionctl configuration.
type Config struct {
	Notion     NotionConfig     `koanf:"notion"`
	Credential CredentialConfig `koanf:"credential"`
	Logging    LoggingConfig    `koanf:"logging"`
	Server     ServerConfig     `koanf:"server"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// NotionConfig holds remote API settings.
type NotionConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIVersion string        `koanf:"api_version"`
	Timeout    Duration `koanf:"timeout"`
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// CredentialConfig names the OS secret store entry holding the token.
type CredentialConfig struct {
	Service string `koanf:"service"`
	Account string `koanf:"account"`
}

// LoggingConfig holds the subset of logging options exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig holds HTTP transport configuration.
type ServerConfig struct {
	Host            string        `koanf:"http_host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	Protocol    string `koanf:"protocol"`
	ServiceName string `koanf:"service_name"`
	Insecure    bool   `koanf:"insecure"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = DefaultBaseURL
	}
	if cfg.Notion.APIVersion == "" {
		cfg.Notion.APIVersion = DefaultAPIVersion
	}
	if cfg.Notion.Timeout == 0 {
		cfg.Notion.Timeout = Duration(30 * time.Second)
	}
	if cfg.Notion.RequestsPerSecond == 0 {
		cfg.Notion.RequestsPerSecond = 3 // Notion's documented average limit
	}

	if cfg.Credential.Service == "" {
		cfg.Credential.Service = DefaultKeychainService
	}
	if cfg.Credential.Account == "" {
		cfg.Credential.Account = DefaultKeychainAccount
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9191
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "notionctl"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Notion.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid notion base_url: %q", c.Notion.BaseURL)
	}
	if c.Notion.APIVersion == "" {
		return errors.New("notion api_version is required")
	}
	if c.Notion.Timeout <= 0 {
		return errors.New("notion timeout must be positive")
	}
	if c.Notion.RequestsPerSecond < 0 {
		return fmt.Errorf("notion requests_per_second must be >= 0, got %v", c.Notion.RequestsPerSecond)
	}

	if c.Credential.Service == "" || c.Credential.Account == "" {
		return errors.New("credential service and account are required")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.ServiceName == "" {
			return errors.New("service name required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
			return fmt.Errorf("telemetry protocol must be 'grpc' or 'http/protobuf', got %q", c.Telemetry.Protocol)
		}
	}

	return nil
}
