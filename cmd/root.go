// =============================================================================
// Inventory Ledger Splitter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invsplit)
//   ├── splitCmd    (invsplit split <ledger>)
//   ├── listCmd     (invsplit list <leaf-file>)
//   ├── validateCmd (invsplit validate)
//   └── versionCmd  (invsplit version)
//
// SHARED SETUP:
//   PersistentPreRunE loads the configuration (unless the command opts out)
//   and builds the zap logger. Logs go to stderr; reports go to stdout.
//
// EXIT CODES:
//   0  success
//   1  any error
//   2  ledger file not found
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/ledger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// appConfig is the configuration loaded in PersistentPreRunE.
var appConfig *config.Config

// logger is built in PersistentPreRunE and synced in PersistentPostRun.
var logger = zap.NewNop()

// skipConfigAnnotation marks commands that load the configuration themselves.
const skipConfigAnnotation = "skip-config"

// defaultConfigFile is used when --config is not given. It may be absent.
const defaultConfigFile = "config.yaml"

// Exit codes returned by Execute.
const (
	exitOK           = 0
	exitError        = 1
	exitMissingInput = 2
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "invsplit",
	Short: "Inventory Ledger Splitter - split an inventory ledger into per-location files",
	Long: `invsplit reads a semicolon-delimited inventory ledger (one row per asset)
and writes one small file per location, nested by the "/"-separated location
path. In owner mode the files are additionally partitioned by custodian.

Example Usage:
  invsplit split MANKO.csv                  # Split into ./out
  invsplit split MANKO.csv --owners         # Partition by custodian first
  invsplit split ledger.xlsx --out exports  # Read an Excel ledger
  invsplit list out/RoomA/Shelf1.csv        # Print one exported file
  invsplit validate --config config.yaml    # Check a configuration file`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Default().Log
		if cmd.Annotations[skipConfigAnnotation] != "true" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			appConfig = cfg
			settings = cfg.Log
		}

		built, err := newLogger(settings, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = built
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with the code for its error.
// It is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ledger.ErrMissingInput):
		return exitMissingInput
	default:
		return exitError
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// loadConfig reads the configuration file. An absent default file yields the
// defaults; an explicitly named file must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(cfgFile)
}

// newLogger builds the production logger at the configured level, or at
// debug level when debug is set.
func newLogger(settings config.LogSettings, debug bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(settings.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = zapcore.DebugLevel
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.Encoding = settings.Encoding
	if settings.Encoding == "console" {
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapConfig.Build()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the YAML configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
