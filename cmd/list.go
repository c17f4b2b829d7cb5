package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventory-split/internal/export"
)

var listASCII bool

// listCmd prints one exported leaf file the way the QR viewer walks it.
var listCmd = &cobra.Command{
	Use:   "list <leaf-file>",
	Short: "Print the entries of an exported leaf file",
	Long: `The list command parses one exported file and prints every entry as
"<label> - <i>/<n>" followed by its code, owner and name.

Use --ascii on terminals that cannot show accented characters.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		leaf, err := export.ReadLeaf(args[0])
		if err != nil {
			return err
		}
		logger.Debug("leaf file parsed",
			zap.String("path", args[0]),
			zap.Int("entries", len(leaf.Entries)))
		return export.Render(cmd.OutOrStdout(), leaf, listASCII)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listASCII, "ascii", false, "Strip accents from the output")
}
