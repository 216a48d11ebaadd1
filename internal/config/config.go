package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/raaihank/clip-sentinel/internal/detector"
	"github.com/raaihank/clip-sentinel/internal/patterns"
	"github.com/spf13/viper"
)

var (
	mu      sync.Mutex
	current *viper.Viper
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/clip-sentinel/")
	v.AddConfigPath("$HOME/.clip-sentinel/")

	// Environment variable overrides, e.g. CLIPSENTINEL_RECOGNIZER_ENDPOINT
	v.SetEnvPrefix("CLIPSENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mu.Lock()
	current = v
	mu.Unlock()

	return config, nil
}

// registerDefaults makes every scalar key known to viper so environment
// overrides apply during Unmarshal
func registerDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.port", c.Server.Port)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", c.Server.IdleTimeout)
	v.SetDefault("server.rate_limit.enabled", c.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.requests_per_min", c.Server.RateLimit.RequestsPerMin)
	v.SetDefault("server.rate_limit.burst", c.Server.RateLimit.Burst)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.file.enabled", c.Logging.File.Enabled)
	v.SetDefault("logging.file.path", c.Logging.File.Path)
	v.SetDefault("recognizer.endpoint", c.Recognizer.Endpoint)
	v.SetDefault("recognizer.token", c.Recognizer.Token)
	v.SetDefault("recognizer.timeout", c.Recognizer.Timeout)
	v.SetDefault("clipboard.source", c.Clipboard.Source)
	v.SetDefault("clipboard.text", c.Clipboard.Text)
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if rl := config.Server.RateLimit; rl.Enabled && (rl.RequestsPerMin <= 0 || rl.Burst <= 0) {
		return fmt.Errorf("invalid rate limit: requests_per_min and burst must be positive")
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	if config.Recognizer.Endpoint == "" {
		return fmt.Errorf("recognizer endpoint is required")
	}
	if config.Recognizer.Timeout <= 0 {
		return fmt.Errorf("invalid recognizer timeout: %s", config.Recognizer.Timeout)
	}

	if config.Clipboard.Source != "system" && config.Clipboard.Source != "static" {
		return fmt.Errorf("invalid clipboard source: %s (must be system or static)", config.Clipboard.Source)
	}

	if _, err := config.DetectorPresets(); err != nil {
		return err
	}

	return nil
}

// DetectorPresets converts the configured presets, sorted by name
func (c *Config) DetectorPresets() ([]detector.Preset, error) {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	presets := make([]detector.Preset, 0, len(names))
	for _, name := range names {
		pc := c.Presets[name]
		want, err := patterns.ParseKinds(pc.Want)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		tolerate, err := patterns.ParseKinds(pc.Tolerate)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		presets = append(presets, detector.Preset{Name: name, Want: want, Tolerate: tolerate})
	}
	return presets, nil
}

// Watch starts watching the loaded configuration file for changes. The
// callback only sees configurations that pass validation; invalid ones are
// reported through onError.
func Watch(callback func(*Config), onError func(error)) error {
	mu.Lock()
	v := current
	mu.Unlock()

	if v == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if v.ConfigFileUsed() == "" {
		return fmt.Errorf("no configuration file to watch")
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := v.Unmarshal(newConfig); err != nil {
			onError(fmt.Errorf("failed to unmarshal config from %s: %w", e.Name, err))
			return
		}

		if err := validateConfig(newConfig); err != nil {
			onError(fmt.Errorf("invalid configuration in %s: %w", e.Name, err))
			return
		}

		callback(newConfig)
	})
	v.WatchConfig()

	return nil
}
