package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huawei3g/modem-exporter/modem"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", path, err)
		}
		if cfg.Modem.URL != "http://192.168.8.1/api" {
			t.Errorf("URL = %q", cfg.Modem.URL)
		}
		if cfg.Metrics.Port != 9101 || cfg.Metrics.Path != "/metrics" {
			t.Errorf("Metrics = %+v", cfg.Metrics)
		}
		if cfg.Forward.Enabled {
			t.Error("forwarding enabled by default")
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
modem:
  url: http://10.0.0.1/api
  model: huawei_e303
  timeout: 3s
  interface: wwan0
metrics:
  port: 9200
logging:
  level: debug
  format: json
forward:
  enabled: true
  topic: inbox
  interval: 1m
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Modem.URL != "http://10.0.0.1/api" || cfg.Modem.Timeout != 3*time.Second || cfg.Modem.Interface != "wwan0" {
		t.Errorf("Modem = %+v", cfg.Modem)
	}
	if cfg.Metrics.Port != 9200 || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if !cfg.Forward.Enabled || cfg.Forward.Topic != "inbox" || cfg.Forward.Interval != time.Minute {
		t.Errorf("Forward = %+v", cfg.Forward)
	}
	if cfg.Forward.NSQDAddr != "127.0.0.1:4150" {
		t.Errorf("NSQDAddr = %q, want default", cfg.Forward.NSQDAddr)
	}

	client := cfg.ToClientConfig()
	if client.Model != modem.ModelHuaweiE303 || client.Interface != "wwan0" {
		t.Errorf("ToClientConfig() = %+v", client)
	}
	if client.Locator == nil || client.Locator.USBRoot != "/sys/bus/usb/devices" {
		t.Errorf("Locator = %+v", client.Locator)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("modem: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfigRejectsNonPositiveDurations(t *testing.T) {
	for name, data := range map[string]string{
		"zero interval":     "forward:\n  interval: 0s\n",
		"negative interval": "forward:\n  interval: -1s\n",
		"zero timeout":      "modem:\n  timeout: 0s\n",
		"empty topic":       "forward:\n  enabled: true\n  topic: \"\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAfterEnv(t *testing.T) {
	t.Setenv("MODEM_TIMEOUT", "0s")

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults error = %v", err)
	}
	LoadConfigFromEnv(&cfg)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero modem timeout")
	}
}

func TestRequestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.RequestTimeout()
	if worst := 4 * cfg.Modem.Timeout; got <= worst {
		t.Errorf("RequestTimeout() = %s, want more than %s", got, worst)
	}

	cfg.Modem.Timeout = time.Second
	if got := cfg.RequestTimeout(); got != 9*time.Second {
		t.Errorf("RequestTimeout() = %s, want 9s", got)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MODEM_URL", "http://192.168.1.1/api")
	t.Setenv("MODEM_MODEL", "e303")
	t.Setenv("MODEM_TIMEOUT", "2s")
	t.Setenv("MODEM_METRICS_PORT", "9300")
	t.Setenv("MODEM_LOG_LEVEL", "warn")
	t.Setenv("MODEM_NSQD_ADDR", "nsqd:4150")

	cfg := DefaultConfig()
	LoadConfigFromEnv(&cfg)

	if cfg.Modem.URL != "http://192.168.1.1/api" || cfg.Modem.Timeout != 2*time.Second {
		t.Errorf("Modem = %+v", cfg.Modem)
	}
	if cfg.Metrics.Port != 9300 {
		t.Errorf("Port = %d", cfg.Metrics.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
	if cfg.Forward.NSQDAddr != "nsqd:4150" {
		t.Errorf("NSQDAddr = %q", cfg.Forward.NSQDAddr)
	}
	if cfg.Forward.Enabled {
		t.Error("nsqd address enabled forwarding")
	}
	if cfg.ToClientConfig().Model != modem.ModelHuaweiE303 {
		t.Errorf("Model = %s", cfg.ToClientConfig().Model)
	}
}

func TestToClientConfigAuto(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ToClientConfig().Model; got != modem.ModelUnknown {
		t.Errorf("Model = %s, want unknown", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "interface", "wwan0")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"interface":"wwan0"`) {
		t.Errorf("unexpected output: %s", out)
	}

	if _, err := NewLogger(LoggingConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewLogger(LoggingConfig{Format: "xml"}, &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
