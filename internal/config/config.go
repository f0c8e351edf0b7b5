package config

import "github.com/spf13/viper"

// ServeConfig holds configuration for the comet MCP server.
type ServeConfig struct {
	Port int `mapstructure:"port"`
}

// Config holds all runtime configuration for a comet invocation.
// Values are populated from .comet.yaml, COMET_* env vars, and CLI flags.
type Config struct {
	TraceDir      string      `mapstructure:"trace_dir"`
	ArchivePath   string      `mapstructure:"archive_path"`
	TelemetryPath string      `mapstructure:"telemetry_path"`
	Verbose       bool        `mapstructure:"verbose"`
	Serve         ServeConfig `mapstructure:"serve"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("trace_dir", "traces")
	viper.SetDefault("archive_path", "comet.db")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("serve.port", 8417)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
