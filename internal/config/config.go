package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config represents the application configuration
type Config struct {
	Jira   JiraConfig   `yaml:"jira"`
	Tempo  TempoConfig  `yaml:"tempo"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// JiraConfig represents JIRA API configuration
type JiraConfig struct {
	BaseURL   string `yaml:"base_url"`
	Email     string `yaml:"email"`
	APIToken  string `yaml:"api_token"`
	AccountID string `yaml:"account_id"`
	Timeout   int    `yaml:"timeout_seconds"`
}

// TempoConfig represents Tempo API configuration
type TempoConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIToken         string `yaml:"api_token"`
	Timeout          int    `yaml:"timeout_seconds"`
	PageSize         int    `yaml:"page_size"`
	BillingAttribute string `yaml:"billing_attribute"`
}

// ServerConfig represents the MCP transport configuration
type ServerConfig struct {
	Transport string `yaml:"transport"`
	HTTPAddr  string `yaml:"http_addr"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Transports supported by the server
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Default returns a configuration with every optional value filled in
func Default() *Config {
	return &Config{
		Jira: JiraConfig{
			Timeout: 30,
		},
		Tempo: TempoConfig{
			BaseURL:          "https://api.tempo.io/4",
			Timeout:          30,
			PageSize:         1000,
			BillingAttribute: "_Account_",
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			HTTPAddr:  ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config.applyEnv(os.LookupEnv)
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	str("JIRA_BASE_URL", &c.Jira.BaseURL)
	str("JIRA_EMAIL", &c.Jira.Email)
	str("JIRA_API_TOKEN", &c.Jira.APIToken)
	str("JIRA_ACCOUNT_ID", &c.Jira.AccountID)
	num("JIRA_TIMEOUT_SECONDS", &c.Jira.Timeout)

	str("TEMPO_BASE_URL", &c.Tempo.BaseURL)
	str("TEMPO_API_TOKEN", &c.Tempo.APIToken)
	num("TEMPO_TIMEOUT_SECONDS", &c.Tempo.Timeout)
	num("TEMPO_PAGE_SIZE", &c.Tempo.PageSize)
	str("TEMPO_BILLING_ATTRIBUTE", &c.Tempo.BillingAttribute)

	str("MCP_TRANSPORT", &c.Server.Transport)
	str("MCP_HTTP_ADDR", &c.Server.HTTPAddr)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
}

func (c *Config) normalize() {
	c.Jira.BaseURL = strings.TrimRight(c.Jira.BaseURL, "/")
	c.Tempo.BaseURL = strings.TrimRight(c.Tempo.BaseURL, "/")
	c.Server.Transport = strings.ToLower(c.Server.Transport)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

// Validate validates the configuration. Every missing required value is
// reported in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.Jira.BaseURL == "" {
		missing = append(missing, "JIRA_BASE_URL")
	}
	if c.Jira.Email == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if c.Jira.APIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if c.Tempo.APIToken == "" {
		missing = append(missing, "TEMPO_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Server.Transport != TransportStdio && c.Server.Transport != TransportHTTP {
		return fmt.Errorf("transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.Tempo.PageSize <= 0 {
		return fmt.Errorf("tempo page size must be positive")
	}

	return nil
}
