// =============================================================================
// Inventory Ledger Splitter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - ledger    (produces Decisions)
//   - partition (folds Decisions into the grouping tree)
//   - export    (writes Items)
//
// =============================================================================

package types

import "strings"

// =============================================================================
// ITEM
// =============================================================================

// Item is one physical asset attached to a leaf group.
type Item struct {
	// Code is the inventory code (ledger column 0, trimmed).
	Code string

	// Name is the display name (ledger column 1, trimmed).
	Name string
}

// =============================================================================
// READER DECISIONS
// =============================================================================

// DecisionKind tells the builder what to do with one ledger row.
type DecisionKind int

const (
	// Skip marks a row that is not part of any group: the header, a
	// structurally incomplete row, a sentinel row or boilerplate.
	Skip DecisionKind = iota

	// CustodianMarker opens a new custodian scope.
	CustodianMarker

	// DataRow carries an item and its location path.
	DataRow
)

// String returns the lower-case name of the kind, used in logs.
func (k DecisionKind) String() string {
	switch k {
	case Skip:
		return "skip"
	case CustodianMarker:
		return "custodian_marker"
	case DataRow:
		return "data_row"
	default:
		return "unknown"
	}
}

// Decision is the reader's verdict on a single physical ledger row.
type Decision struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind DecisionKind

	// Line is the 1-based ordinal of the row in the ledger. Blank lines
	// count as rows, so it equals the physical line number unless an
	// earlier quoted field spans several lines.
	Line int

	// Custodian is set for CustodianMarker decisions.
	Custodian string

	// Code and Name are set for DataRow decisions.
	Code string
	Name string

	// Segments is the full trimmed location path of a DataRow.
	// It always has at least two elements: the main key and one sub-key.
	Segments []string
}

// Item returns the (code, name) pair of a DataRow.
func (d Decision) Item() Item {
	return Item{Code: d.Code, Name: d.Name}
}

// =============================================================================
// LOCATION PATHS
// =============================================================================

// PathSeparator separates location segments in the ledger and in labels.
const PathSeparator = "/"

// SplitPath splits a location field on "/" and trims every segment.
// Empty segments are kept so that the segment count matches the raw text.
func SplitPath(location string) []string {
	parts := strings.Split(location, PathSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// JoinPath joins segments with "/".
func JoinPath(segments []string) string {
	return strings.Join(segments, PathSeparator)
}
