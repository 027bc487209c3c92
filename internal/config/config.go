package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transports supported by the serve command.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the file-backed configuration of the server.
type Config struct {
	Calendar CalendarConfig `yaml:"calendar"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CalendarConfig names the applications the tools drive.
type CalendarConfig struct {
	Application         string `yaml:"application"`
	Companion           string `yaml:"companion"`
	URLScheme           string `yaml:"url_scheme"`
	CreateStrategy      string `yaml:"create_strategy"` // "url" or "applescript"
	DefaultUpcomingDays int    `yaml:"default_upcoming_days"`
}

// ServerConfig configures the MCP transport.
type ServerConfig struct {
	Transport        string `yaml:"transport"`
	HTTPAddr         string `yaml:"http_addr"`
	DisableStreaming bool   `yaml:"disable_streaming"`
}

// MetricsConfig configures the dedicated Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Calendar: CalendarConfig{
			Application:         "Calendar",
			Companion:           "Fantastical",
			URLScheme:           "x-fantastical3",
			CreateStrategy:      "url",
			DefaultUpcomingDays: 7,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			HTTPAddr:  ":8080",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// non-empty) and then with environment variables. ${VAR} references in string
// values are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.expandEnvVars()
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Calendar.CreateStrategy {
	case "url", "applescript":
	default:
		return fmt.Errorf("invalid calendar.create_strategy %q, must be one of: url, applescript", c.Calendar.CreateStrategy)
	}
	if c.Calendar.DefaultUpcomingDays < 1 {
		return fmt.Errorf("calendar.default_upcoming_days must be positive, got %d", c.Calendar.DefaultUpcomingDays)
	}
	if c.Calendar.Application == "" || c.Calendar.Companion == "" || c.Calendar.URLScheme == "" {
		return fmt.Errorf("calendar.application, calendar.companion and calendar.url_scheme cannot be empty")
	}

	switch c.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("invalid server.transport %q, must be one of: stdio, streamable-http", c.Server.Transport)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q, must be one of: text, json", c.Logging.Format)
	}

	return nil
}

// applyEnv overrides fields from FANTASTICAL_MCP_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.Calendar.Application, "FANTASTICAL_MCP_CALENDAR_APP")
	setString(&c.Calendar.Companion, "FANTASTICAL_MCP_COMPANION_APP")
	setString(&c.Calendar.URLScheme, "FANTASTICAL_MCP_URL_SCHEME")
	setString(&c.Calendar.CreateStrategy, "FANTASTICAL_MCP_CREATE_STRATEGY")
	setString(&c.Logging.Level, "FANTASTICAL_MCP_LOG_LEVEL")
	setString(&c.Logging.Format, "FANTASTICAL_MCP_LOG_FORMAT")

	if v := os.Getenv("FANTASTICAL_MCP_UPCOMING_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Calendar.DefaultUpcomingDays = n
		}
	}
	if v := os.Getenv("FANTASTICAL_MCP_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metrics.Enabled = b
		}
	}
}

func (c *Config) expandEnvVars() {
	for _, p := range []*string{
		&c.Calendar.Application,
		&c.Calendar.Companion,
		&c.Calendar.URLScheme,
		&c.Server.HTTPAddr,
		&c.Metrics.Addr,
	} {
		*p = expandEnvVars(*p)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// expandEnvVars expands environment variables in the format ${VAR_NAME}
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
