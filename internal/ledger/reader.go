// =============================================================================
// Inventory Ledger Splitter - Ledger Reader
// =============================================================================
//
// The Reader turns raw ledger rows into Decisions, one per physical row:
//   - Skip            : header, boilerplate, sentinel or incomplete rows
//   - CustodianMarker : a row that opens a custodian scope (owner mode)
//   - DataRow         : an item with a location path of two or more segments
//
// Structural problems are never errors. The only errors the Reader returns
// come from the underlying RowSource.
//
// USAGE:
//   reader := ledger.NewReader(src, ledger.OptionsFromConfig(cfg.Ledger))
//   for {
//       decision, err := reader.Next()
//       if err == io.EOF {
//           break
//       }
//       if err != nil {
//           return err
//       }
//       // Use the decision...
//   }
//
// =============================================================================

package ledger

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/types"
)

// Options controls how rows are classified.
type Options struct {
	// OwnerAware enables custodian marker detection and disables the
	// unconditional header skip.
	OwnerAware bool

	// CodeColumn, NameColumn and LocationColumn are 0-based indexes.
	CodeColumn     int
	NameColumn     int
	LocationColumn int

	// HeaderSentinel excludes any row whose location field contains it.
	HeaderSentinel string

	// MarkerPrefixes are matched case-insensitively against the trimmed
	// first column. The first entry is the canonical spelling.
	MarkerPrefixes []string

	// BoilerplateRows is the number of rows consumed after each marker.
	BoilerplateRows int
}

// OptionsFromConfig maps ledger settings to reader options.
func OptionsFromConfig(settings config.LedgerSettings) Options {
	prefixes := make([]string, 0, 1+len(settings.MarkerAliases))
	prefixes = append(prefixes, settings.MarkerPrefix)
	for _, alias := range settings.MarkerAliases {
		if alias != "" {
			prefixes = append(prefixes, alias)
		}
	}

	return Options{
		OwnerAware:      settings.Mode == config.ModeOwner,
		CodeColumn:      settings.CodeColumn,
		NameColumn:      settings.NameColumn,
		LocationColumn:  settings.LocationColumn,
		HeaderSentinel:  settings.HeaderSentinel,
		MarkerPrefixes:  prefixes,
		BoilerplateRows: settings.BoilerplateRows,
	}
}

// Reader classifies ledger rows lazily.
type Reader struct {
	src  RowSource
	opts Options

	// minColumns is the column count a row needs to be a DataRow.
	minColumns int

	line    int
	pending int
}

// NewReader creates a Reader over src.
func NewReader(src RowSource, opts Options) *Reader {
	minColumns := opts.LocationColumn
	if opts.CodeColumn > minColumns {
		minColumns = opts.CodeColumn
	}
	if opts.NameColumn > minColumns {
		minColumns = opts.NameColumn
	}

	return &Reader{
		src:        src,
		opts:       opts,
		minColumns: minColumns + 1,
	}
}

// Next returns the decision for the next ledger row, or io.EOF when the
// ledger is exhausted.
func (r *Reader) Next() (types.Decision, error) {
	row, err := r.src.Next()
	if err != nil {
		// io.EOF passes through untouched; a ledger that ends while
		// boilerplate rows are still pending simply ends.
		return types.Decision{}, err
	}
	r.line++

	decision := types.Decision{Kind: types.Skip, Line: r.line}

	if r.pending > 0 {
		r.pending--
		return decision, nil
	}

	if !r.opts.OwnerAware && r.line == 1 {
		return decision, nil
	}

	if r.opts.OwnerAware {
		if name, ok := r.custodian(row); ok {
			r.pending = r.opts.BoilerplateRows
			decision.Kind = types.CustodianMarker
			decision.Custodian = name
			return decision, nil
		}
	}

	return r.classify(row, decision), nil
}

// Line returns the number of rows read so far.
func (r *Reader) Line() int {
	return r.line
}

// classify applies the structural checks to a non-marker row.
func (r *Reader) classify(row []string, decision types.Decision) types.Decision {
	if len(row) < r.minColumns {
		return decision
	}

	location := strings.TrimSpace(row[r.opts.LocationColumn])
	if r.opts.HeaderSentinel != "" && strings.Contains(location, r.opts.HeaderSentinel) {
		return decision
	}

	segments := types.SplitPath(location)
	if len(segments) < 2 {
		return decision
	}

	decision.Kind = types.DataRow
	decision.Code = strings.TrimSpace(row[r.opts.CodeColumn])
	decision.Name = strings.TrimSpace(row[r.opts.NameColumn])
	decision.Segments = segments
	return decision
}

// custodian reports whether row is a marker row and returns the custodian
// name that follows the prefix.
func (r *Reader) custodian(row []string) (string, bool) {
	if len(row) == 0 {
		return "", false
	}

	first := strings.TrimSpace(row[0])
	for _, prefix := range r.opts.MarkerPrefixes {
		if prefix == "" {
			continue
		}
		if rest, ok := cutPrefixFold(first, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// cutPrefixFold is strings.CutPrefix with Unicode case folding. The prefix
// is compared rune by rune, so case pairs of different byte length are
// handled.
func cutPrefixFold(s, prefix string) (string, bool) {
	end := 0
	for n := utf8.RuneCountInString(prefix); n > 0; n-- {
		if end >= len(s) {
			return s, false
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	if !strings.EqualFold(s[:end], prefix) {
		return s, false
	}
	return s[end:], true
}

// Drain reads every remaining decision. It is meant for tests and small
// ledgers; the splitter streams decisions instead.
func Drain(r *Reader) ([]types.Decision, error) {
	var decisions []types.Decision
	for {
		decision, err := r.Next()
		if err == io.EOF {
			return decisions, nil
		}
		if err != nil {
			return decisions, err
		}
		decisions = append(decisions, decision)
	}
}
