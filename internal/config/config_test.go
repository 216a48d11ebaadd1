package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raaihank/clip-sentinel/internal/patterns"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	if err := validateConfig(GetDefaults()); err != nil {
		t.Errorf("Defaults failed validation: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("FromFile", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 9000
  rate_limit:
    enabled: false
logging:
  level: debug
  format: console
recognizer:
  endpoint: http://recognizer.internal:9090
  timeout: 2s
presets:
  contact:
    want: [phoneNumbers, emailAddresses]
    tolerate: [probableWebSearch]
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
		}
		if cfg.Server.RateLimit.Enabled {
			t.Error("Expected rate limiting disabled")
		}
		if cfg.Recognizer.Timeout != 2*time.Second {
			t.Errorf("Expected 2s timeout, got %s", cfg.Recognizer.Timeout)
		}
		if cfg.Clipboard.Source != "system" {
			t.Errorf("Expected default clipboard source, got %s", cfg.Clipboard.Source)
		}

		presets, err := cfg.DetectorPresets()
		if err != nil {
			t.Fatalf("DetectorPresets failed: %v", err)
		}
		if len(presets) != 1 || presets[0].Name != "contact" {
			t.Fatalf("Unexpected presets: %+v", presets)
		}
		if len(presets[0].Want) != 2 || presets[0].Want[0] != patterns.PhoneNumbers {
			t.Errorf("Unexpected want kinds: %v", presets[0].Want)
		}
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("CLIPSENTINEL_RECOGNIZER_ENDPOINT", "http://env-recognizer:1234")
		path := writeConfig(t, "logging:\n  level: warn\n")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Recognizer.Endpoint != "http://env-recognizer:1234" {
			t.Errorf("Expected env override, got %s", cfg.Recognizer.Endpoint)
		}
		if cfg.Logging.Level != "warn" {
			t.Errorf("Expected warn level, got %s", cfg.Logging.Level)
		}
	})
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"Port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"RateLimit", func(c *Config) { c.Server.RateLimit.Burst = 0 }, "invalid rate limit"},
		{"LogLevel", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
		{"LogFormat", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"Endpoint", func(c *Config) { c.Recognizer.Endpoint = "" }, "endpoint is required"},
		{"Timeout", func(c *Config) { c.Recognizer.Timeout = 0 }, "invalid recognizer timeout"},
		{"ClipboardSource", func(c *Config) { c.Clipboard.Source = "x11" }, "invalid clipboard source"},
		{"PresetKind", func(c *Config) {
			c.Presets = map[string]PresetConfig{"bad": {Want: []string{"fax"}}}
		}, "preset bad"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := GetDefaults()
			tc.mutate(cfg)
			err := validateConfig(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}
