// =============================================================================
// Inventory Ledger Splitter - Main Entry Point
// =============================================================================
//
// USAGE:
//   invsplit split <ledger>    - Split a ledger into per-location files
//   invsplit list <leaf-file>  - Print one exported leaf file
//   invsplit validate          - Validate the configuration file
//   invsplit version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Reader, builder, exporter, reporter and run driver
//   - pkg/utils  : File system helpers and the run summary log
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/inventory-split/cmd"
)

func main() {
	cmd.Execute()
}
