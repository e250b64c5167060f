package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vendaa/vendaa/internal/config"
	"github.com/vendaa/vendaa/internal/log"
	"github.com/vendaa/vendaa/internal/telemetry"
	"github.com/vendaa/vendaa/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "vendaa",
	Short: "Operator client for the Vendaa utility-vending platform",
	Long: `vendaa is the command-line client for the Vendaa prepaid utility-vending platform.
It signs you in, keeps track of the organizations you belong to and the one
currently selected, and shows and funds that organization's wallet.

Session tokens and the selected organization are stored in ~/.vendaa/state.json
and shared by every vendaa process running as the same user.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// flagKeys binds persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"env":        config.KeyEnvironment,
	"api-url":    config.KeyAPIURL,
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
	"output":     config.KeyOutputFormat,
}

// skipValidation marks commands that must work with a broken config file so
// the user can repair it.
const skipValidation = "vendaa/skip-config-validation"

var (
	cfgFile          string
	telemetryCleanup func(context.Context) error
	commandStart     time.Time
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on Ctrl+C
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vendaa/config.yaml)")
	flags.String("env", "", "backend environment: local, staging or production")
	flags.String("api-url", "", "backend base URL, overrides --env")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.StringP("output", "o", "", "output format: text, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
}

// setup loads configuration, configures logging and starts tracing before any
// command runs.
func setup(cmd *cobra.Command, args []string) error {
	commandStart = time.Now()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Format = log.ParseFormat(cfg.LogFormat)
	logCfg.ServiceVersion = version.Version
	logCfg.Output = log.NewOutput(cmd.ErrOrStderr())
	log.SetDefaultLogger(log.New(logCfg))

	shutdown, err := telemetry.InitProvider(cmd.Context(), telemetry.FromConfig(cfg, version.Version))
	if err != nil {
		log.DefaultLogger().WithError(err).Warn("tracing disabled")
		return nil
	}
	telemetryCleanup = shutdown
	return nil
}

// loadConfig binds the persistent flags and resolves the configuration.
// Commands annotated with skipValidation tolerate a broken config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}
	lenient := cmd.Annotations[skipValidation] != ""
	if err := config.Init(cfgFile); err != nil && !lenient {
		return nil, err
	}
	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil && !lenient {
		return nil, err
	}
	return cfg, nil
}

// teardown flushes spans exported during the command.
func teardown(cmd *cobra.Command, args []string) error {
	log.DefaultLogger().Debug("command finished",
		"command", cmd.CommandPath(),
		"duration", time.Since(commandStart))

	if telemetryCleanup == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := telemetryCleanup(ctx)
	telemetryCleanup = nil
	if err != nil {
		log.DefaultLogger().WithError(err).Warn("failed to flush traces")
	}
	return nil
}
