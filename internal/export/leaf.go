package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/inventory-split/internal/textnorm"
)

// Entry is one item record of an exported leaf as a consumer sees it.
type Entry struct {
	Code  string
	Owner string
	Name  string
}

// LeafFile is a parsed leaf file.
type LeafFile struct {
	// Label is the first field of the header record.
	Label string

	Entries []Entry
}

// ReadLeaf parses an exported leaf file the way the downstream viewer does:
// the first field of the first record is the label and every further record
// yields code, owner and name from its first three fields. Fields are
// trimmed and records with fewer than three fields are skipped.
func ReadLeaf(path string) (*LeafFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaf file: %w", err)
	}
	return ParseLeaf(data), nil
}

// ParseLeaf is ReadLeaf on in-memory content.
func ParseLeaf(data []byte) *LeafFile {
	leaf := &LeafFile{}

	records := SplitRecords(data)
	if len(records) == 0 {
		return leaf
	}

	leaf.Label = strings.TrimSpace(records[0][0])
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		leaf.Entries = append(leaf.Entries, Entry{
			Code:  strings.TrimSpace(record[0]),
			Owner: strings.TrimSpace(record[1]),
			Name:  strings.TrimSpace(record[2]),
		})
	}

	return leaf
}

// Render prints every entry of leaf in reading order, each headed by
// "<label> - <i>/<n>". With ascii set, accents are stripped from the output.
func Render(w io.Writer, leaf *LeafFile, ascii bool) error {
	text := func(s string) string {
		if ascii {
			return textnorm.StripAccents(s)
		}
		return s
	}

	total := len(leaf.Entries)
	for i, entry := range leaf.Entries {
		_, err := fmt.Fprintf(w, "%s - %d/%d\n  Code:  %s\n  Owner: %s\n  Name:  %s\n",
			text(leaf.Label), i+1, total, text(entry.Code), text(entry.Owner), text(entry.Name))
		if err != nil {
			return err
		}
	}
	return nil
}
