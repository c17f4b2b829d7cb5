// =============================================================================
// Inventory Ledger Splitter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which loads and checks the
// configuration without reading a ledger, then prints the effective
// settings as YAML.
//
// COMMAND USAGE:
//   invsplit validate [--config FILE]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/inventory-split/pkg/utils"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file without splitting",
	Long: `Load the configuration file, apply defaults, validate every setting and
print the effective configuration. A missing default config.yaml is not an
error; a file named with --config must exist.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		if !utils.FileExists(cfgFile) {
			fmt.Fprintf(out, "No configuration file at %s, using defaults.\n", cfgFile)
		}
		fmt.Fprintln(out, "Configuration is valid.")
		fmt.Fprintln(out)
		_, err = out.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
