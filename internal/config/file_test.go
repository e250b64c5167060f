package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vendaa/vendaa/internal/errors"
)

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSave(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := Save(path, KeyEnvironment, EnvProduction); err != nil {
		t.Fatalf("Save(environment) failed: %v", err)
	}
	if err := Save(path, KeyTimeout, "45s"); err != nil {
		t.Fatalf("Save(timeout) failed: %v", err)
	}

	got := readYAML(t, path)
	if got[KeyEnvironment] != EnvProduction {
		t.Errorf("environment = %v, want production", got[KeyEnvironment])
	}
	if got[KeyTimeout] != "45s" {
		t.Errorf("timeout = %v, want 45s", got[KeyTimeout])
	}
	if _, ok := got[KeyLogLevel]; ok {
		t.Error("keys that were not set must not be written")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSaveRejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		code  errors.ErrorCode
	}{
		{"unknown key", "colour", "blue", errors.ErrCodeConfigInvalid},
		{"bad environment", KeyEnvironment, "moon", errors.ErrCodeConfigEnvironment},
		{"bad output", KeyOutputFormat, "xml", errors.ErrCodeConfigInvalid},
		{"bad timeout", KeyTimeout, "soon", errors.ErrCodeInputInvalid},
		{"bad rate", KeyRateLimit, "fast", errors.ErrCodeInputInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			SetDefaults()

			path := filepath.Join(t.TempDir(), "config.yaml")
			err := Save(path, tt.key, tt.value)

			var vErr *errors.VendaaError
			if !stderrors.As(err, &vErr) {
				t.Fatalf("Save() error = %v, want VendaaError", err)
			}
			if vErr.Code != tt.code {
				t.Errorf("code = %s, want %s", vErr.Code, tt.code)
			}
			if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
				t.Error("a rejected value must not create the file")
			}
		})
	}
}

func TestIsKey(t *testing.T) {
	for _, key := range Keys {
		if !IsKey(key) {
			t.Errorf("IsKey(%q) = false", key)
		}
	}
	if IsKey("providers.default") {
		t.Error("IsKey accepted an unknown key")
	}
}
