// Package config provides configuration loading for the modem exporter.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/huawei3g/modem-exporter/modem"
)

// Config holds the application configuration.
type Config struct {
	// Modem configuration
	Modem ModemConfig `yaml:"modem"`

	// Metrics server configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// SMS forwarding configuration
	Forward ForwardConfig `yaml:"forward"`
}

// ModemConfig holds modem connection settings.
type ModemConfig struct {
	// URL is the API root of the modem
	URL string `yaml:"url"`

	// Model is the modem driver (huawei_e303 or auto)
	Model string `yaml:"model"`

	// Timeout for modem requests
	Timeout time.Duration `yaml:"timeout"`

	// Interface names the network interface when the modem is not discovered
	Interface string `yaml:"interface"`

	// USBRoot is the sysfs USB device directory scanned during discovery
	USBRoot string `yaml:"usb_root"`

	// NetRoot is the sysfs network interface directory
	NetRoot string `yaml:"net_root"`
}

// MetricsConfig holds HTTP server settings.
type MetricsConfig struct {
	// Port to serve metrics and the API on
	Port int `yaml:"port"`

	// Path for metrics endpoint
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Format is the log format (json, text)
	Format string `yaml:"format"`
}

// ForwardConfig holds settings for publishing received SMS to NSQ.
type ForwardConfig struct {
	Enabled bool `yaml:"enabled"`

	// NSQDAddr is the nsqd TCP address
	NSQDAddr string `yaml:"nsqd_addr"`

	// Topic receives one JSON event per message
	Topic string `yaml:"topic"`

	// Interval between inbox polls
	Interval time.Duration `yaml:"interval"`

	// DeleteAfterForward removes published messages from the modem
	DeleteAfterForward bool `yaml:"delete_after_forward"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Modem: ModemConfig{
			URL:     modem.DefaultURL,
			Model:   "auto",
			Timeout: 10 * time.Second,
			USBRoot: "/sys/bus/usb/devices",
			NetRoot: "/sys/class/net",
		},
		Metrics: MetricsConfig{
			Port: 9101,
			Path: "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Forward: ForwardConfig{
			NSQDAddr:           "127.0.0.1:4150",
			Topic:              "sms.received",
			Interval:           30 * time.Second,
			DeleteAfterForward: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return &cfg, nil
}

// Validate reports settings that would break the exporter at runtime.
func (c *Config) Validate() error {
	if c.Modem.Timeout <= 0 {
		return fmt.Errorf("modem.timeout must be positive, got %s", c.Modem.Timeout)
	}
	if c.Forward.Interval <= 0 {
		return fmt.Errorf("forward.interval must be positive, got %s", c.Forward.Interval)
	}
	if c.Forward.Enabled && c.Forward.Topic == "" {
		return fmt.Errorf("forward.topic is required when forwarding is enabled")
	}
	return nil
}

// RequestTimeout bounds one API request. A single modem call may fetch a
// token, send, refresh the token and retry, each bounded by Modem.Timeout.
func (c *Config) RequestTimeout() time.Duration {
	return 4*c.Modem.Timeout + 5*time.Second
}

// LoadConfigFromEnv loads configuration from environment variables.
// Environment variables override values from the config file. Forwarding
// is never enabled from the environment because it deletes messages from
// the modem by default.
func LoadConfigFromEnv(cfg *Config) {
	if url := os.Getenv("MODEM_URL"); url != "" {
		cfg.Modem.URL = url
	}

	if model := os.Getenv("MODEM_MODEL"); model != "" {
		cfg.Modem.Model = model
	}

	if timeout := os.Getenv("MODEM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Modem.Timeout = d
		}
	}

	if iface := os.Getenv("MODEM_INTERFACE"); iface != "" {
		cfg.Modem.Interface = iface
	}

	if port := os.Getenv("MODEM_METRICS_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			cfg.Metrics.Port = p
		}
	}

	if level := os.Getenv("MODEM_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if format := os.Getenv("MODEM_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if addr := os.Getenv("MODEM_NSQD_ADDR"); addr != "" {
		cfg.Forward.NSQDAddr = addr
	}

	if topic := os.Getenv("MODEM_FORWARD_TOPIC"); topic != "" {
		cfg.Forward.Topic = topic
	}
}

// ToClientConfig converts the config to a modem.ClientConfig.
func (c *Config) ToClientConfig() modem.ClientConfig {
	model := modem.ModelUnknown
	switch strings.ToLower(c.Modem.Model) {
	case "huawei_e303", "e303":
		model = modem.ModelHuaweiE303
	case "auto", "":
		model = modem.ModelUnknown
	default:
		model = modem.Model(c.Modem.Model)
	}

	return modem.ClientConfig{
		URL:       c.Modem.URL,
		Model:     model,
		Timeout:   c.Modem.Timeout,
		Interface: c.Modem.Interface,
		Locator: &modem.Locator{
			USBRoot: c.Modem.USBRoot,
			NetRoot: c.Modem.NetRoot,
		},
	}
}

// NewLogger builds a slog.Logger writing to w.
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %s", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
}
