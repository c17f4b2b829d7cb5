// =============================================================================
// Inventory Ledger Splitter - Run Driver
// =============================================================================
//
// This module orchestrates one split run, from opening the ledger to
// printing the count report.
//
// PIPELINE:
//   1. Open the ledger (CSV or XLSX) with the configured encoding
//   2. Classify rows into decisions (ledger.Reader)
//   3. Fold decisions into the grouping tree (partition.Build)
//   4. Write one file per leaf (export.Exporter)
//   5. Print the count report (report.Write)
//   6. Optionally write the run summary file
//
// The tree is built completely before the first file is written. Any error
// aborts the run; files written before the failure stay on disk.
//
// =============================================================================

package splitter

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/export"
	"github.com/ginjaninja78/inventory-split/internal/ledger"
	"github.com/ginjaninja78/inventory-split/internal/partition"
	"github.com/ginjaninja78/inventory-split/internal/report"
	"github.com/ginjaninja78/inventory-split/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// RunID identifies the run in logs and in the summary file.
	RunID string

	// InputFile is the ledger that was split.
	InputFile string

	// Stats are the row counters of the partition builder.
	Stats partition.Stats

	// Custodians is the number of custodian scopes (0 in location mode).
	Custodians int

	// Export describes the written files.
	Export export.Result

	// Report is the rendered count report.
	Report string

	// Duration is the wall time of the run.
	Duration time.Duration
}

// =============================================================================
// SPLITTER STRUCTURE
// =============================================================================

// Splitter runs the pipeline with one configuration.
type Splitter struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	now    func() time.Time
}

// New creates a Splitter. The count report is written to out; a nil out
// discards it. A nil logger disables logging.
func New(cfg *config.Config, out io.Writer, logger *zap.Logger) *Splitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Splitter{cfg: cfg, logger: logger, out: out, now: time.Now}
}

// Run splits the ledger at inputPath.
//
// RETURNS:
//   - A Result with counters, written files and the report.
//   - An error wrapping ledger.ErrMissingInput if the ledger cannot be
//     opened, or any other failure of the pipeline.
func (s *Splitter) Run(inputPath string) (Result, error) {
	start := s.now()
	result := Result{
		RunID:     uuid.New().String(),
		InputFile: inputPath,
	}
	logger := s.logger.With(zap.String("run_id", result.RunID))

	logger.Info("splitting ledger",
		zap.String("input", inputPath),
		zap.String("mode", s.cfg.Ledger.Mode),
		zap.String("output", s.cfg.OutputDir))

	// =========================================================================
	// STEP 1-3: READ AND PARTITION
	// =========================================================================

	src, err := ledger.Open(inputPath, s.cfg.Ledger)
	if err != nil {
		return result, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer src.Close()

	reader := ledger.NewReader(src, ledger.OptionsFromConfig(s.cfg.Ledger))
	tree, stats, err := partition.Build(reader, s.cfg.OwnerAware(), logger)
	if err != nil {
		return result, fmt.Errorf("line %d: %w", reader.Line(), err)
	}

	result.Stats = stats
	if tree.OwnerAware() {
		result.Custodians = len(tree.Scopes())
	}

	logger.Info("ledger partitioned",
		zap.Int("rows", stats.Rows),
		zap.Int("items", stats.Items),
		zap.Int("skipped", stats.Skipped),
		zap.Int("unscoped", stats.Unscoped),
		zap.Int("leaves", tree.LeafCount()))

	// =========================================================================
	// STEP 4: EXPORT
	// =========================================================================

	exporter := export.NewExporter(export.OptionsFromConfig(s.cfg), logger)
	exported, err := exporter.Export(tree)
	result.Export = exported
	if err != nil {
		return result, err
	}

	logger.Info("leaves written",
		zap.Int("files", len(exported.Files)),
		zap.Int("items", exported.Items))

	// =========================================================================
	// STEP 5: REPORT
	// =========================================================================

	result.Report = report.String(tree)
	if _, err := io.WriteString(s.out, result.Report); err != nil {
		return result, fmt.Errorf("failed to print report: %w", err)
	}

	// =========================================================================
	// STEP 6: SUMMARY FILE
	// =========================================================================

	end := s.now()
	result.Duration = end.Sub(start)

	if path := s.cfg.Report.SummaryFile; path != "" {
		summary := utils.ProcessingSummary{
			RunID:      result.RunID,
			StartTime:  start,
			EndTime:    end,
			InputFile:  inputPath,
			OutputDir:  s.cfg.OutputDir,
			Mode:       s.cfg.Ledger.Mode,
			Rows:       stats.Rows,
			Items:      stats.Items,
			Skipped:    stats.Skipped,
			Unscoped:   stats.Unscoped,
			Custodians: result.Custodians,
			Files:      len(exported.Files),
			Report:     result.Report,
		}
		if err := utils.WriteSummaryLog(summary, path); err != nil {
			return result, err
		}
		logger.Debug("summary written", zap.String("path", path))
	}

	return result, nil
}
