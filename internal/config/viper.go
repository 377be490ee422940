// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mbh/ledger-sync/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Unprefixed environment variables read alongside the LEDGER_ ones
const (
	// CredentialsEnv holds the service-account key file path.
	CredentialsEnv = "GOOGLE_SHEETS_CREDENTIALS_FILE"
	// LogLevelEnv overrides log.level.
	LogLevelEnv = "LOG_LEVEL"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Sheets struct {
		SpreadsheetID         string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
		SpreadsheetName       string `mapstructure:"spreadsheet_name" yaml:"spreadsheet_name"`
		CredentialsFile       string `mapstructure:"credentials_file" yaml:"credentials_file"`
		RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
		IndexTab              string `mapstructure:"index_tab" yaml:"index_tab"`
	} `mapstructure:"sheets" yaml:"sheets"`

	Quota struct {
		Threshold    int `mapstructure:"threshold" yaml:"threshold"`
		PauseSeconds int `mapstructure:"pause_seconds" yaml:"pause_seconds"`
	} `mapstructure:"quota" yaml:"quota"`

	Retry struct {
		MaxBackoffSeconds int `mapstructure:"max_backoff_seconds" yaml:"max_backoff_seconds"`
	} `mapstructure:"retry" yaml:"retry"`

	Mappings struct {
		NamesFile    string `mapstructure:"names_file" yaml:"names_file"`
		AccountsFile string `mapstructure:"accounts_file" yaml:"accounts_file"`
	} `mapstructure:"mappings" yaml:"mappings"`

	Dedupe struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		DBPath  string `mapstructure:"db_path" yaml:"db_path"`
	} `mapstructure:"dedupe" yaml:"dedupe"`

	Statement struct {
		OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	} `mapstructure:"statement" yaml:"statement"`

	Bot struct {
		Addr                  string `mapstructure:"addr" yaml:"addr"`
		PublicURL             string `mapstructure:"public_url" yaml:"public_url"`
		RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	} `mapstructure:"bot" yaml:"bot"`
}

// InitializeConfig loads configuration with hierarchical precedence:
// defaults, then the config file, then LEDGER_* environment variables.
// configFile overrides the config search path when not empty.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.ledger-sync")
		v.AddConfigPath(".ledger-sync")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The credentials path and log level keep their unprefixed names
	if err := v.BindEnv("sheets.credentials_file", "LEDGER_SHEETS_CREDENTIALS_FILE", CredentialsEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", CredentialsEnv, err)
	}
	if err := v.BindEnv("log.level", "LEDGER_LOG_LEVEL", LogLevelEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", LogLevelEnv, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the configuration built from default values only, with
// no file or environment lookups.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode into Config.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.spreadsheet_name", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.request_timeout_seconds", 30)
	v.SetDefault("sheets.index_tab", "INDEX")

	v.SetDefault("quota.threshold", 25)
	v.SetDefault("quota.pause_seconds", 60)

	v.SetDefault("retry.max_backoff_seconds", 60)

	v.SetDefault("mappings.names_file", "names.yaml")
	v.SetDefault("mappings.accounts_file", "accounts.yaml")

	v.SetDefault("dedupe.enabled", true)
	v.SetDefault("dedupe.db_path", "database/ledger-sync.db")

	v.SetDefault("statement.output_dir", "static")

	v.SetDefault("bot.addr", ":8080")
	v.SetDefault("bot.public_url", "")
	v.SetDefault("bot.request_timeout_seconds", 60)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Sheets.RequestTimeoutSeconds < 1 || config.Sheets.RequestTimeoutSeconds > 600 {
		return fmt.Errorf("sheets.request_timeout_seconds must be between 1 and 600, got: %d", config.Sheets.RequestTimeoutSeconds)
	}

	if strings.TrimSpace(config.Sheets.IndexTab) == "" {
		return fmt.Errorf("sheets.index_tab must not be empty")
	}

	if config.Quota.Threshold < 1 {
		return fmt.Errorf("quota.threshold must be at least 1, got: %d", config.Quota.Threshold)
	}

	if config.Quota.PauseSeconds < 1 {
		return fmt.Errorf("quota.pause_seconds must be at least 1, got: %d", config.Quota.PauseSeconds)
	}

	if config.Retry.MaxBackoffSeconds < 1 {
		return fmt.Errorf("retry.max_backoff_seconds must be at least 1, got: %d", config.Retry.MaxBackoffSeconds)
	}

	if config.Dedupe.Enabled && config.Dedupe.DBPath == "" {
		return fmt.Errorf("dedupe.db_path required when dedupe is enabled")
	}

	if config.Bot.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("bot.request_timeout_seconds must be at least 1, got: %d", config.Bot.RequestTimeoutSeconds)
	}

	return nil
}

// ValidateRemote checks the settings needed to open the spreadsheet.
func (c *Config) ValidateRemote() error {
	if c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("%s (or sheets.credentials_file) is not set", CredentialsEnv)
	}
	if c.Sheets.SpreadsheetID == "" && c.Sheets.SpreadsheetName == "" {
		return fmt.Errorf("sheets.spreadsheet_id or sheets.spreadsheet_name is required")
	}
	return nil
}

// RequestTimeout is the per-call remote timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Sheets.RequestTimeoutSeconds) * time.Second
}

// QuotaPause is how long the governor pauses once the budget is spent
func (c *Config) QuotaPause() time.Duration {
	return time.Duration(c.Quota.PauseSeconds) * time.Second
}

// MaxBackoff caps a single retry wait
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.Retry.MaxBackoffSeconds) * time.Second
}

// BotRequestTimeout bounds the handling of one webhook request
func (c *Config) BotRequestTimeout() time.Duration {
	return time.Duration(c.Bot.RequestTimeoutSeconds) * time.Second
}

// ConfigureLoggingFromConfig returns a logger set to the configured level and format
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
