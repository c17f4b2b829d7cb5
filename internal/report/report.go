// =============================================================================
// Inventory Ledger Splitter - Run Reporter
// =============================================================================
//
// The reporter prints the item counts of a grouping tree for the operator:
//
//   Statistics:
//   RoomA: 3 items
//   	Shelf1: 2 items
//   	Shelf2: 1 items
//   RoomD: 1 items
//   	Shelf1/BoxA: 1 items
//
//   Grand total: 4 items
//
// In owner-aware mode each custodian gets its own heading with its total,
// and the groups below it are indented one level deeper.
//
// The report is computed from the in-memory tree only. It never touches the
// exported files.
//
// =============================================================================

package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/inventory-split/internal/partition"
)

// Heading starts every report.
const Heading = "Statistics:"

// Write renders the count report for tree to w.
func Write(w io.Writer, tree *partition.Tree) error {
	p := &printer{w: w}

	p.line(0, Heading)
	for _, scope := range tree.Scopes() {
		depth := 0
		if tree.OwnerAware() {
			p.line(0, fmt.Sprintf("Custodian %s: %d items", scope.Custodian, scope.Count()))
			depth = 1
		}

		for _, group := range scope.Groups() {
			p.line(depth, fmt.Sprintf("%s: %d items", group.Key, group.Count()))
			for _, leaf := range group.Leaves() {
				p.line(depth+1, fmt.Sprintf("%s: %d items", leaf.SubLabel(), len(leaf.Items)))
			}
		}
	}
	p.line(0, "")
	p.line(0, fmt.Sprintf("Grand total: %d items", tree.Count()))

	return p.err
}

// String renders the count report for tree.
func String(tree *partition.Tree) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = Write(&buf, tree)
	return buf.String()
}

// printer keeps the first write error so Write can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, text string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, strings.Repeat("\t", depth)+text+"\n")
}
