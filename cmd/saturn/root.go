package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/telemetry/logging"
)

// defaultConfigFile is the config path probed when --config is not set.
// A missing default file is not an error; built-in defaults apply.
const defaultConfigFile = "saturn.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Mercator Saturn - trade-finance document compliance rule engine",
	Long: `Mercator Saturn is a compliance rule engine for trade-finance documents.

It validates extracted document data against a catalog of declarative
compliance rules and reports structured discrepancies:
  - CRL rulebook parsing and validation (UCP 600 / ISBP checks)
  - Rule catalog assembly from files, a persisted store, and git
  - Pure rule execution with similarity matching and issue generation
  - Validation audit history with retention and export

For more information, visit: https://github.com/mercator-hq/saturn`,
	Version: Version,

	// Findings and infrastructure failures are reported through exit
	// codes, not help text. Execute prints the error once.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Exit codes follow linter convention:
// 0 clean, 1 findings, 2 usage or configuration error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// loadSaturnConfig loads the effective configuration. The default config
// file may be absent; an explicitly requested one may not.
func loadSaturnConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && cfgFile == defaultConfigFile {
			return config.DefaultConfig(), nil
		}
		return nil, cli.NewConfigError("", fmt.Sprintf("config file %q: %v", cfgFile, err))
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// initLogging routes the process-wide slog default through the redacting
// telemetry logger. Command output stays on stdout; logs go to stderr.
// defaultLevel is the level used unless --verbose asks for debug; one-shot
// commands pass "warn" so library internals stay quiet, watch mode passes
// the configured level.
func initLogging(cfg *config.Config, defaultLevel string) error {
	lc := cfg.Telemetry.Logging

	level := defaultLevel
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:          level,
		Format:         lc.Format,
		AddSource:      lc.AddSource,
		RedactFields:   lc.RedactFields,
		RedactPatterns: lc.RedactPatterns,
		Writer:         os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	slog.SetDefault(logger.Slog())
	return nil
}
