// =============================================================================
// Inventory Ledger Splitter - Tree Exporter
// =============================================================================
//
// The exporter materializes a grouping tree as a directory tree with one
// leaf file per sub-group:
//
//   <root>/[<custodian>/]<main>/<sub_1>/.../<sub_{n-1}>/<sub_n>.csv
//
// The custodian directory exists only in owner-aware mode. Path segments
// are sanitized for the file system; labels inside the files stay literal.
//
// WRITE ORDER:
//   Scopes, groups and leaves are written in first-discovery order. Every
//   file is replaced in full through utils.WriteFileReplace. The first file
//   system error aborts the export; files already written are left in place.
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/partition"
	"github.com/ginjaninja78/inventory-split/internal/textnorm"
	"github.com/ginjaninja78/inventory-split/pkg/utils"
)

// FileExtension is appended to the last sub-key of every leaf.
const FileExtension = ".csv"

// ErrPathCollision is returned when two distinct leaves sanitize to the same
// file path, or to paths differing only in letter case. The latter would
// overwrite each other on case-insensitive file systems.
var ErrPathCollision = errors.New("leaf path collision")

// Options configures an Exporter.
type Options struct {
	// Root is the output directory.
	Root string

	// Layout selects the record variant.
	Layout Layout

	// ASCIIPaths strips accents from path segments.
	ASCIIPaths bool

	// Clean empties Root before the first file is written.
	Clean bool
}

// OptionsFromConfig builds exporter options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:       cfg.OutputDir,
		Layout:     LayoutFromConfig(cfg.Layout),
		ASCIIPaths: cfg.Layout.ASCIIPaths,
		Clean:      cfg.CleanOutput,
	}
}

// Result describes a finished export.
type Result struct {
	// Files lists the written paths in write order.
	Files []string

	// Items is the number of item records written.
	Items int

	// Removed is the number of entries deleted from Root in clean mode.
	Removed int
}

// Exporter writes grouping trees to disk.
type Exporter struct {
	opts   Options
	logger *zap.Logger
}

// NewExporter creates an Exporter. A nil logger disables logging.
func NewExporter(opts Options, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{opts: opts, logger: logger}
}

// leafLocation returns the directory and file name of leaf.
func (e *Exporter) leafLocation(ownerAware bool, leaf *partition.Leaf) (string, string) {
	parts := []string{e.opts.Root}
	if ownerAware {
		parts = append(parts, e.safe(leaf.Custodian))
	}

	segments := leaf.Segments()
	last := len(segments) - 1
	for _, segment := range segments[:last] {
		parts = append(parts, e.safe(segment))
	}

	return filepath.Join(parts...), e.safe(segments[last]) + FileExtension
}

func (e *Exporter) safe(segment string) string {
	return textnorm.SafeSegment(segment, e.opts.ASCIIPaths)
}

// Export writes every leaf of tree.
//
// RETURNS:
//   - Result with the written files and item count.
//   - An error wrapping the first failure; earlier files stay written.
func (e *Exporter) Export(tree *partition.Tree) (Result, error) {
	var result Result

	if e.opts.Clean {
		removed, err := utils.CleanDirectory(e.opts.Root)
		if err != nil {
			return result, fmt.Errorf("failed to clean output directory: %w", err)
		}
		result.Removed = removed
		e.logger.Info("cleaned output directory",
			zap.String("dir", e.opts.Root),
			zap.Int("removed", removed))
	}

	if err := utils.EnsureDir(e.opts.Root); err != nil {
		return result, err
	}

	// Sanitation is lossy, so two different labels may land on one path.
	// Keys are case-folded so the tree exports the same on every file system.
	owners := make(map[string]*partition.Leaf, tree.LeafCount())

	err := tree.Walk(func(leaf *partition.Leaf) error {
		dir, name := e.leafLocation(tree.OwnerAware(), leaf)
		path := filepath.Join(dir, name)

		key := strings.ToLower(path)
		if prev, ok := owners[key]; ok {
			return fmt.Errorf("%w: %q and %q both map to %s",
				ErrPathCollision, prev.Label(), leaf.Label(), path)
		}
		owners[key] = leaf

		data, err := e.opts.Layout.EncodeLeaf(leaf)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		if err := utils.WriteFileReplace(dir, name, data); err != nil {
			return err
		}

		e.logger.Debug("wrote leaf",
			zap.String("path", path),
			zap.Int("items", len(leaf.Items)))

		result.Files = append(result.Files, path)
		result.Items += len(leaf.Items)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to export tree: %w", err)
	}

	return result, nil
}
