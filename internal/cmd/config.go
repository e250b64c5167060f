package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vendaa/vendaa/internal/config"
	"github.com/vendaa/vendaa/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit vendaa configuration",
	Long: `Manage vendaa configuration stored at ~/.vendaa/config.yaml

Every key can also be set with a VENDAA_<KEY> environment variable or the
matching flag; flags win over the environment, which wins over the file.

Keys:
  environment         local, staging or production
  api_url             backend base URL, overrides environment
  state_file          file holding tokens and the selected organization
  timeout             request timeout, e.g. 30s
  rate_limit          requests per second sent to the backend
  log_level           debug, info, warn or error
  log_format          text or json
  output_format       text, json or yaml
  telemetry_endpoint  OTLP/HTTP endpoint for traces
  metrics_addr        address serving /metrics while the dashboard runs

Examples:
  # View the effective configuration
  vendaa config view

  # Edit configuration in $EDITOR
  vendaa config edit

  # Get a specific value
  vendaa config get environment

  # Set a specific value
  vendaa config set environment production

  # Show configuration file path
  vendaa config path
`,
	Annotations: map[string]string{skipValidation: "true"},
}

var configViewCmd = &cobra.Command{
	Use:         "view",
	Short:       "Display current configuration",
	Long:        `Display the effective vendaa configuration in the specified format.`,
	Annotations: map[string]string{skipValidation: "true"},
	RunE:        runConfigView,
}

var configEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Edit configuration in $EDITOR",
	Long:        `Open the configuration file in your default editor (from $EDITOR environment variable).`,
	Annotations: map[string]string{skipValidation: "true"},
	RunE:        runConfigEdit,
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Get a specific configuration value",
	Long:        `Print the effective value of a configuration key.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipValidation: "true"},
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Set a specific configuration value",
	Long:        `Validate a value and write it to the configuration file.`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{skipValidation: "true"},
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Show configuration file path",
	Long:        `Display the path to the configuration file.`,
	Annotations: map[string]string{skipValidation: "true"},
	RunE:        runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func unknownKeyError(key string) error {
	return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown configuration key: %s", key)).
		WithSuggestion("Valid keys: " + strings.Join(config.Keys, ", "))
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Get()
	if err != nil {
		return err
	}
	if cc.Structured() {
		return cc.Print(cfg)
	}

	path, err := config.FilePath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cc.Out, "Configuration file: %s\n\n", path)
	fmt.Fprint(cc.Out, string(data))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cc.Err, "\nWarning: %v\n", err)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path, err := config.FilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Seed the file so the editor does not open an empty buffer.
		if err := config.Save(path, config.KeyEnvironment, viper.GetString(config.KeyEnvironment)); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.CommandContext(cmd.Context(), editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	// Re-read the edited file so mistakes surface now rather than on the
	// next command.
	if err := config.Init(path); err != nil {
		return err
	}
	cfg, err := config.Get()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cc.Notice("✓ Configuration updated successfully")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !config.IsKey(key) {
		return unknownKeyError(key)
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	value := viper.GetString(key)
	if cc.Structured() {
		return cc.Print(map[string]string{key: value})
	}
	fmt.Fprintln(cc.Out, value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if !config.IsKey(key) {
		return unknownKeyError(key)
	}

	path, err := config.FilePath()
	if err != nil {
		return err
	}
	if err := config.Save(path, key, value); err != nil {
		return err
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cc.Notice("✓ Set %s = %s", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.FilePath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
