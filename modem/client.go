package modem

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the API root of a HiLink modem. The gateway address is fixed
// by the firmware.
const DefaultURL = "http://192.168.8.1/api"

// ClientConfig contains configuration for connecting to a modem.
type ClientConfig struct {
	// URL is the API root of the modem (e.g., http://192.168.8.1/api)
	URL string

	// Model is the modem driver (auto-detect if ModelUnknown)
	Model Model

	// Timeout for HTTP requests
	Timeout time.Duration

	// Interface is the network interface used when the modem is not discovered
	Interface string

	// Locator finds attached modems during auto-detection
	Locator *Locator
}

// DefaultConfig returns a ClientConfig with default values.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		URL:     DefaultURL,
		Model:   ModelUnknown,
		Timeout: 10 * time.Second,
		Locator: NewLocator(),
	}
}

func newHTTPClient(cfg ClientConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
	}
}

// NewClient creates a new modem client based on the configuration.
// If model is not specified, it attempts to auto-detect the modem.
func NewClient(cfg ClientConfig) (Modem, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	httpClient := newHTTPClient(cfg)

	switch cfg.Model {
	case ModelHuaweiE303:
		return NewE303Client(cfg, httpClient, cfg.Interface, "")
	case ModelUnknown, "":
		return autoDetectClient(cfg, httpClient)
	default:
		return nil, fmt.Errorf("unsupported modem model: %s", cfg.Model)
	}
}

// autoDetectClient returns the first supported modem found in sysfs, or
// checks the fixed gateway address when discovery finds nothing.
func autoDetectClient(cfg ClientConfig, httpClient *http.Client) (Modem, error) {
	if cfg.Locator != nil {
		modems := cfg.Locator.Load(cfg)
		if len(modems) > 0 {
			for _, extra := range modems[1:] {
				slog.Info("ignoring additional modem", "interface", extra.Interface())
				extra.Close()
			}
			return modems[0], nil
		}
	}

	client, err := NewE303Client(cfg, httpClient, cfg.Interface, "")
	if err != nil {
		return nil, err
	}
	if _, err := client.GetStatus(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not auto-detect modem at %s: %w", cfg.URL, err)
	}
	return client, nil
}
