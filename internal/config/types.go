package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server     ServerConfig            `yaml:"server" mapstructure:"server"`
	Logging    LoggingConfig           `yaml:"logging" mapstructure:"logging"`
	Recognizer RecognizerConfig        `yaml:"recognizer" mapstructure:"recognizer"`
	Clipboard  ClipboardConfig         `yaml:"clipboard" mapstructure:"clipboard"`
	Presets    map[string]PresetConfig `yaml:"presets" mapstructure:"presets"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int             `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration   `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration   `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration   `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	RateLimit    RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig limits detect requests per client
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
	Burst          int  `yaml:"burst" mapstructure:"burst"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// RecognizerConfig points at the external pattern recognition service
type RecognizerConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Token    string        `yaml:"token" mapstructure:"token"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ClipboardConfig selects where text is read from
type ClipboardConfig struct {
	Source string `yaml:"source" mapstructure:"source"` // system or static
	Text   string `yaml:"text" mapstructure:"text"`
}

// PresetConfig is a named want/tolerate pair given by kind names
type PresetConfig struct {
	Want     []string `yaml:"want" mapstructure:"want"`
	Tolerate []string `yaml:"tolerate" mapstructure:"tolerate"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8085,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:        true,
				RequestsPerMin: 120,
				Burst:          10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recognizer: RecognizerConfig{
			Endpoint: "http://localhost:8086",
			Timeout:  5 * time.Second,
		},
		Clipboard: ClipboardConfig{
			Source: "system",
		},
	}
	cfg.Logging.File.Path = "logs/clipsentinel.log"
	return cfg
}
