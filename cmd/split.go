// =============================================================================
// Inventory Ledger Splitter - Split Command
// =============================================================================
//
// This file defines the 'split' command, the main command of the tool. It
// runs one ledger through the reader, builder, exporter and reporter.
//
// COMMAND USAGE:
//   invsplit split <ledger> [flags]
//
// FLAGS (each overrides the configuration file):
//   --out            : Output root directory
//   --owners         : Partition by custodian (owner mode)
//   --trailing-empty : Append an empty trailing field to every record
//   --owner-column   : Owner field source: none or scope_custodian
//   --clean          : Empty the output root before writing
//   --summary-file   : Write a run summary to this path
//   --ascii-paths    : Strip accents from file and directory names
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/splitter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// splitFlags holds the command-line overrides of the split command.
type splitFlags struct {
	outputDir     string
	owners        bool
	trailingEmpty bool
	ownerColumn   string
	clean         bool
	summaryFile   string
	asciiPaths    bool
}

var splitOpts splitFlags

// =============================================================================
// SPLIT COMMAND DEFINITION
// =============================================================================

var splitCmd = &cobra.Command{
	Use:   "split <ledger>",
	Short: "Split a ledger into per-location files",
	Long: `The split command reads a semicolon-delimited (or .xlsx) inventory ledger
and writes one file per location leaf:

  <out>/[<custodian>/]<main>/<sub...>/<last>.csv

Rows need at least six columns and a location path with two or more
"/"-separated segments. Header repeats (location containing "Lokalita"),
rows without a sub-location and, in owner mode, rows before the first
custodian marker are skipped.

Existing files are overwritten. Files of locations no longer in the ledger
are kept unless --clean is given.

After the export a count report is printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applySplitFlags(cmd, appConfig); err != nil {
			return err
		}

		result, err := splitter.New(appConfig, cmd.OutOrStdout(), logger).Run(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d item(s) saved in %d file(s) to the '%s' directory.\n",
			result.Export.Items, len(result.Export.Files), appConfig.OutputDir)
		return nil
	},
}

// applySplitFlags copies every explicitly set flag into cfg and validates
// the result.
func applySplitFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("out") {
		cfg.OutputDir = splitOpts.outputDir
	}
	if flags.Changed("owners") {
		cfg.Ledger.Mode = config.ModeLocation
		if splitOpts.owners {
			cfg.Ledger.Mode = config.ModeOwner
		}
	}
	if flags.Changed("trailing-empty") {
		cfg.Layout.IncludeTrailingEmptyColumn = splitOpts.trailingEmpty
	}
	if flags.Changed("owner-column") {
		cfg.Layout.OwnerColumnSource = splitOpts.ownerColumn
	}
	if flags.Changed("clean") {
		cfg.CleanOutput = splitOpts.clean
	}
	if flags.Changed("summary-file") {
		cfg.Report.SummaryFile = splitOpts.summaryFile
	}
	if flags.Changed("ascii-paths") {
		cfg.Layout.ASCIIPaths = splitOpts.asciiPaths
	}

	return cfg.Validate()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(splitCmd)

	flags := splitCmd.Flags()
	flags.StringVarP(&splitOpts.outputDir, "out", "o", "", "Output root directory (default from config: ./out)")
	flags.BoolVar(&splitOpts.owners, "owners", false, "Partition by custodian marker rows")
	flags.BoolVar(&splitOpts.trailingEmpty, "trailing-empty", false, "Append an empty trailing field to every record")
	flags.StringVar(&splitOpts.ownerColumn, "owner-column", "",
		fmt.Sprintf("Owner field source: %s or %s", config.OwnerColumnNone, config.OwnerColumnScopeCustodian))
	flags.BoolVar(&splitOpts.clean, "clean", false, "Empty the output directory before writing")
	flags.StringVar(&splitOpts.summaryFile, "summary-file", "", "Write a plain-text run summary to this file")
	flags.BoolVar(&splitOpts.asciiPaths, "ascii-paths", false, "Strip accents from file and directory names")
}
