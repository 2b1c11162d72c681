package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete census-mcp configuration
type Config struct {
	Version      int    `json:"version" mapstructure:"version"`
	DatabasePath string `json:"databasePath" mapstructure:"databasePath"`

	Query   QueryConfig   `json:"query" mapstructure:"query"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// QueryConfig contains query execution policy
type QueryConfig struct {
	TimeoutMs     int `json:"timeoutMs" mapstructure:"timeoutMs"`
	DefaultLimit  int `json:"defaultLimit" mapstructure:"defaultLimit"`
	MaxLimit      int `json:"maxLimit" mapstructure:"maxLimit"`
	MinPopulation int `json:"minPopulation" mapstructure:"minPopulation"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// Timeout returns the query deadline as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Query.TimeoutMs) * time.Millisecond
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		DatabasePath: "data/acs.db",
		Query: QueryConfig{
			TimeoutMs:     10000,
			DefaultLimit:  10,
			MaxLimit:      100,
			MinPopulation: 10000,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from census-mcp.yaml in configDir,
// falling back to defaults when no file exists.
func LoadConfig(configDir string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("databasePath", def.DatabasePath)
	v.SetDefault("query.timeoutMs", def.Query.TimeoutMs)
	v.SetDefault("query.defaultLimit", def.Query.DefaultLimit)
	v.SetDefault("query.maxLimit", def.Query.MaxLimit)
	v.SetDefault("query.minPopulation", def.Query.MinPopulation)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName("census-mcp")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file: defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.DatabasePath == "" {
		return &ConfigError{Field: "databasePath", Message: "must not be empty"}
	}
	if c.Query.TimeoutMs <= 0 {
		return &ConfigError{Field: "query.timeoutMs", Message: "must be positive"}
	}
	if c.Query.DefaultLimit <= 0 || c.Query.MaxLimit <= 0 {
		return &ConfigError{Field: "query.defaultLimit", Message: "limits must be positive"}
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		return &ConfigError{
			Field:   "query.defaultLimit",
			Message: fmt.Sprintf("exceeds maxLimit %d", c.Query.MaxLimit),
		}
	}
	if c.Query.MinPopulation < 0 {
		return &ConfigError{Field: "query.minPopulation", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
