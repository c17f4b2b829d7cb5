// =============================================================================
// Inventory Ledger Splitter - Partition Builder
// =============================================================================
//
// The builder folds the reader's decisions into a Tree in a single pass.
//
// SCOPE STATE MACHINE (owner mode only):
//
//   NoScope --CustodianMarker(name)--> InScope(name)
//   InScope(a) --CustodianMarker(b)--> InScope(b)
//
//   DataRow in NoScope       : dropped
//   DataRow in InScope(name) : added under name
//
// In location mode markers never arrive from the reader, and every DataRow
// goes to the single anonymous scope.
//
// =============================================================================

package partition

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ginjaninja78/inventory-split/internal/types"
)

// DecisionSource yields decisions until io.EOF.
type DecisionSource interface {
	Next() (types.Decision, error)
}

// Stats counts what happened to the ledger rows.
type Stats struct {
	// Rows is the number of decisions seen.
	Rows int

	// Items is the number of rows added to the tree.
	Items int

	// Skipped is the number of structural skips (header, boilerplate,
	// sentinel and incomplete rows).
	Skipped int

	// Unscoped is the number of data rows dropped because no custodian
	// scope was open yet.
	Unscoped int

	// Markers is the number of custodian marker rows.
	Markers int
}

type scopeState int

const (
	noScope scopeState = iota
	inScope
)

// Builder accumulates decisions into a Tree.
type Builder struct {
	ownerAware bool
	tree       *Tree
	stats      Stats
	logger     *zap.Logger

	state     scopeState
	custodian string
}

// NewBuilder creates a Builder. A nil logger disables logging.
func NewBuilder(ownerAware bool, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		ownerAware: ownerAware,
		tree:       NewTree(ownerAware),
		logger:     logger,
		state:      noScope,
	}
}

// Apply folds one decision into the tree.
func (b *Builder) Apply(d types.Decision) {
	b.stats.Rows++

	switch d.Kind {
	case types.CustodianMarker:
		b.stats.Markers++
		if !b.ownerAware {
			return
		}
		b.state = inScope
		b.custodian = d.Custodian
		b.logger.Debug("custodian scope opened",
			zap.Int("line", d.Line),
			zap.String("custodian", d.Custodian))

	case types.DataRow:
		if len(d.Segments) < 2 {
			b.stats.Skipped++
			return
		}

		custodian := ""
		if b.ownerAware {
			if b.state == noScope {
				b.stats.Unscoped++
				b.logger.Debug("row before first custodian marker dropped",
					zap.Int("line", d.Line),
					zap.String("code", d.Code))
				return
			}
			custodian = b.custodian
		}

		b.tree.Add(custodian, d.Segments, d.Item())
		b.stats.Items++

	default:
		b.stats.Skipped++
	}
}

// Tree returns the tree built so far.
func (b *Builder) Tree() *Tree {
	return b.tree
}

// Stats returns the counters collected so far.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Build folds every decision of src into a new Tree.
//
// PARAMETERS:
//   - src: The decision stream (usually a *ledger.Reader).
//   - ownerAware: Whether custodian scopes partition the tree.
//   - logger: Logger for per-row debug output (nil disables it).
//
// RETURNS:
//   - The completed Tree and the row counters.
//   - An error if the source fails; the partial tree is discarded.
func Build(src DecisionSource, ownerAware bool, logger *zap.Logger) (*Tree, Stats, error) {
	builder := NewBuilder(ownerAware, logger)

	for {
		decision, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, builder.Stats(), fmt.Errorf("failed to read ledger: %w", err)
		}
		builder.Apply(decision)
	}

	return builder.Tree(), builder.Stats(), nil
}
