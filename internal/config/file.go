package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/vendaa/vendaa/internal/errors"
)

// IsKey reports whether key is a recognized configuration key.
func IsKey(key string) bool {
	return slices.Contains(Keys, key)
}

// coerce converts a command-line value to the type stored for key.
func coerce(key, value string) (any, error) {
	switch key {
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, errors.NewValidationError(key, "must be a positive duration such as 30s")
		}
		return d.String(), nil
	case KeyRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.NewValidationError(key, "must be a number")
		}
		return f, nil
	}
	return value, nil
}

// Save validates value and writes key to the config file at path, keeping
// every other key in the file. Values coming from flags or VENDAA_*
// variables are never written.
func Save(path, key, value string) error {
	if !IsKey(key) {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown configuration key: %s", key)).
			WithSuggestion("Run 'vendaa config view' to list the keys")
	}
	typed, err := coerce(key, value)
	if err != nil {
		return err
	}

	// Validate against the effective configuration with the new value applied.
	prev := viper.Get(key)
	viper.Set(key, typed)
	cfg, err := Get()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		viper.Set(key, prev)
		return err
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read config file", err)
	}
	file.Set(key, typed)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	if err := file.WriteConfigAs(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config file", err)
	}
	return os.Chmod(path, 0o600)
}
