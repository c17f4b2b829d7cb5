// =============================================================================
// Inventory Ledger Splitter - File Manager Utility
// =============================================================================
//
// This module provides the file system primitives the exporter and the
// reporter rely on:
//   - Directory management (idempotent creation, cleaning an output root)
//   - Whole-file replacement (temp file + rename in the same directory)
//   - Summary log generation
//
// REPLACEMENT STRATEGY:
//   A leaf file is first written to a hidden temp file next to its final
//   name and then renamed over it. A reader never sees a half-written leaf,
//   and an existing file is replaced in full, never appended to.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// ErrUnsafeClean is returned when CleanDirectory is pointed at a path that
// must never be emptied.
var ErrUnsafeClean = errors.New("refusing to clean directory")

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents. An existing directory is not an
// error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// CleanDirectory removes every entry inside dir but keeps dir itself. A
// missing dir is not an error. The working directory and file system roots
// are refused.
//
// RETURNS:
//   - The number of top-level entries removed.
//   - An error if any entry cannot be removed.
func CleanDirectory(dir string) (int, error) {
	cleaned := filepath.Clean(dir)
	if dir == "" || cleaned == "." || cleaned == filepath.VolumeName(cleaned)+string(filepath.Separator) {
		return 0, fmt.Errorf("%w: %q", ErrUnsafeClean, dir)
	}

	entries, err := os.ReadDir(cleaned)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", cleaned, err)
	}

	removed := 0
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(cleaned, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}

	return removed, nil
}

// =============================================================================
// FILE REPLACEMENT
// =============================================================================

// WriteFileReplace writes data to dir/name, replacing any existing file.
// dir is created if needed.
func WriteFileReplace(dir, name string, data []byte) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)
	if info, err := os.Lstat(dst); err == nil && info.IsDir() {
		return fmt.Errorf("cannot write %s: a directory with that name exists", dst)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", dst, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := tmp.Chmod(0o644); err != nil && runtime.GOOS != "windows" {
		return fmt.Errorf("failed to chmod %s: %w", dst, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}

	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about one run.
type ProcessingSummary struct {
	RunID      string
	StartTime  time.Time
	EndTime    time.Time
	InputFile  string
	OutputDir  string
	Mode       string
	Rows       int
	Items      int
	Skipped    int
	Unscoped   int
	Custodians int
	Files      int

	// Report is the rendered count tree, appended verbatim.
	Report string
}

// WriteSummaryLog writes a processing summary to path, replacing any
// previous summary.
func WriteSummaryLog(summary ProcessingSummary, path string) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := writeSummary(writer, summary); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}

	return nil
}

func writeSummary(w io.Writer, summary ProcessingSummary) error {
	duration := summary.EndTime.Sub(summary.StartTime)
	_, err := fmt.Fprintf(w, "Inventory Ledger Splitter - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Input:          %s\n"+
		"  Output:         %s\n"+
		"  Mode:           %s\n\n"+
		"Statistics:\n"+
		"  Rows Read:          %d\n"+
		"  Items Exported:     %d\n"+
		"  Rows Skipped:       %d\n"+
		"  Rows Without Owner: %d\n"+
		"  Custodians:         %d\n"+
		"  Files Written:      %d\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.InputFile,
		summary.OutputDir,
		summary.Mode,
		summary.Rows,
		summary.Items,
		summary.Skipped,
		summary.Unscoped,
		summary.Custodians,
		summary.Files)
	if err != nil {
		return err
	}

	if summary.Report != "" {
		if _, err := io.WriteString(w, "\n"+summary.Report); err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, "================================================================================\n"+
		"End of Summary\n")
	return err
}
