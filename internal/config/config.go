// Package config loads client settings from the config file, VENDAA_*
// environment variables and command-line flags via viper.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vendaa/vendaa/internal/errors"
)

// Environments and their backend base URLs.
const (
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"

	LocalURL      = "http://localhost:8000"
	StagingURL    = "https://vendaa-be.onrender.com"
	ProductionURL = "https://api.example.com"
)

// Config keys.
const (
	KeyEnvironment       = "environment"
	KeyAPIURL            = "api_url"
	KeyStateFile         = "state_file"
	KeyTimeout           = "timeout"
	KeyRateLimit         = "rate_limit"
	KeyLogLevel          = "log_level"
	KeyLogFormat         = "log_format"
	KeyOutputFormat      = "output_format"
	KeyTelemetryEndpoint = "telemetry_endpoint"
	KeyMetricsAddr       = "metrics_addr"
)

// Keys lists every recognized key in display order.
var Keys = []string{
	KeyEnvironment,
	KeyAPIURL,
	KeyStateFile,
	KeyTimeout,
	KeyRateLimit,
	KeyLogLevel,
	KeyLogFormat,
	KeyOutputFormat,
	KeyTelemetryEndpoint,
	KeyMetricsAddr,
}

const envPrefix = "VENDAA"

// Config is the resolved client configuration.
type Config struct {
	Environment       string        `mapstructure:"environment" yaml:"environment"`
	APIURL            string        `mapstructure:"api_url" yaml:"api_url,omitempty"`
	StateFile         string        `mapstructure:"state_file" yaml:"state_file,omitempty"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit         float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	OutputFormat      string        `mapstructure:"output_format" yaml:"output_format"`
	TelemetryEndpoint string        `mapstructure:"telemetry_endpoint" yaml:"telemetry_endpoint,omitempty"`
	MetricsAddr       string        `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`
}

// SetDefaults registers default values. Every key needs a default so that
// AutomaticEnv picks up its VENDAA_* variable on Unmarshal.
func SetDefaults() {
	viper.SetDefault(KeyEnvironment, EnvStaging)
	viper.SetDefault(KeyAPIURL, "")
	viper.SetDefault(KeyStateFile, "")
	viper.SetDefault(KeyTimeout, 30*time.Second)
	viper.SetDefault(KeyRateLimit, 10.0)
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogFormat, "text")
	viper.SetDefault(KeyOutputFormat, "text")
	viper.SetDefault(KeyTelemetryEndpoint, "")
	viper.SetDefault(KeyMetricsAddr, "")
}

// Init wires defaults, environment variables and the config file into viper.
// A missing default config file is not an error; a missing explicit one is.
func Init(cfgFile string) error {
	SetDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && stderrors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read config file", err).
			WithSuggestion("Check the YAML syntax of your config file").
			WithSuggestion("Run 'vendaa config path' to see which file is used")
	}
	return nil
}

// Get returns the configuration currently held by viper.
func Get() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	return &cfg, nil
}

// Dir returns the vendaa home directory ($HOME/.vendaa).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to locate home directory", err)
	}
	return filepath.Join(home, ".vendaa"), nil
}

// FilePath returns the config file in use, or the default location when no
// file has been read yet.
func FilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// BaseURL resolves the backend base URL. An explicit api_url wins over the
// environment. "development" is accepted as an alias of local.
func (c *Config) BaseURL() (string, error) {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/"), nil
	}
	switch strings.ToLower(c.Environment) {
	case EnvLocal, "development":
		return LocalURL, nil
	case EnvStaging, "":
		return StagingURL, nil
	case EnvProduction:
		return ProductionURL, nil
	}
	return "", errors.NewEnvironmentError(c.Environment)
}

// StatePath returns the file holding tokens and the selected organization.
func (c *Config) StatePath() (string, error) {
	if c.StateFile != "" {
		return c.StateFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	switch c.OutputFormat {
	case "", "text", "json", "yaml":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown output format: %q", c.OutputFormat)).
			WithSuggestion("Use one of: text, json, yaml")
	}
	if c.RateLimit < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "rate_limit must not be negative")
	}
	return nil
}
