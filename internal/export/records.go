// =============================================================================
// Inventory Ledger Splitter - Leaf Record Format
// =============================================================================
//
// Every leaf file is a short semicolon-delimited text file:
//
//   RoomD/Shelf1/BoxA;Místnost: RoomD/Shelf1/BoxA
//   001;Jana Nováková;Chair
//   002;Jana Nováková;Desk
//
// RECORDS:
//   Header : <label>;Místnost: <label>[;]
//   Item   : <code>;<owner>;<name>[;]
//
// The bracketed trailing empty field is written only when the layout asks
// for it. Fields are never quoted. A delimiter, quote, backslash or line
// break inside a field is prefixed with the escape character "\".
//
// =============================================================================

package export

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/partition"
	"github.com/ginjaninja78/inventory-split/internal/types"
)

const (
	// Delimiter separates fields within a record.
	Delimiter = ';'

	// EscapeChar precedes special characters inside a field.
	EscapeChar = '\\'

	// RoomPrefix introduces the human-readable room label of a header.
	RoomPrefix = "Místnost: "
)

// Layout selects between the record variants.
type Layout struct {
	// TrailingEmpty appends one empty field to every record.
	TrailingEmpty bool

	// OwnerColumn is config.OwnerColumnNone or config.OwnerColumnScopeCustodian.
	OwnerColumn string

	// CRLF ends records with "\r\n" instead of "\n".
	CRLF bool
}

// LayoutFromConfig maps layout settings to a Layout.
func LayoutFromConfig(settings config.LayoutSettings) Layout {
	return Layout{
		TrailingEmpty: settings.IncludeTrailingEmptyColumn,
		OwnerColumn:   settings.OwnerColumnSource,
		CRLF:          settings.CRLF,
	}
}

// HeaderRecord returns the synthetic first record of a leaf file.
func (l Layout) HeaderRecord(leaf *partition.Leaf) []string {
	label := leaf.Label()
	return l.finish([]string{label, RoomPrefix + label})
}

// ItemRecord returns the record for one item of leaf.
func (l Layout) ItemRecord(leaf *partition.Leaf, item types.Item) []string {
	owner := ""
	if l.OwnerColumn == config.OwnerColumnScopeCustodian {
		owner = leaf.Custodian
	}
	return l.finish([]string{item.Code, owner, item.Name})
}

func (l Layout) finish(fields []string) []string {
	if l.TrailingEmpty {
		fields = append(fields, "")
	}
	return fields
}

// EncodeLeaf renders the complete content of a leaf file.
func (l Layout) EncodeLeaf(leaf *partition.Leaf) ([]byte, error) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, l.CRLF)

	if err := w.Write(l.HeaderRecord(leaf)); err != nil {
		return nil, err
	}
	for _, item := range leaf.Items {
		if err := w.Write(l.ItemRecord(leaf, item)); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// RECORD WRITER
// =============================================================================

// RecordWriter writes unquoted, escape-character delimited records.
type RecordWriter struct {
	w          *bufio.Writer
	terminator string
}

// NewRecordWriter creates a RecordWriter on w.
func NewRecordWriter(w io.Writer, crlf bool) *RecordWriter {
	terminator := "\n"
	if crlf {
		terminator = "\r\n"
	}
	return &RecordWriter{w: bufio.NewWriter(w), terminator: terminator}
}

// Write writes one record.
func (rw *RecordWriter) Write(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := rw.w.WriteByte(Delimiter); err != nil {
				return err
			}
		}
		if _, err := rw.w.WriteString(EscapeField(field)); err != nil {
			return err
		}
	}
	_, err := rw.w.WriteString(rw.terminator)
	return err
}

// Flush flushes buffered records to the underlying writer.
func (rw *RecordWriter) Flush() error {
	return rw.w.Flush()
}

// EscapeField prefixes every special character in field with EscapeChar.
func EscapeField(field string) string {
	if !strings.ContainsAny(field, `;"\`+"\r\n") {
		return field
	}

	var b strings.Builder
	b.Grow(len(field) + 4)
	for i := 0; i < len(field); i++ {
		switch c := field[i]; c {
		case Delimiter, '"', EscapeChar, '\r', '\n':
			b.WriteByte(EscapeChar)
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// SplitRecords is the inverse of RecordWriter: it splits data into records
// and fields, honouring escapes. An unescaped "\r" directly before a line
// break is dropped.
func SplitRecords(data []byte) [][]string {
	var (
		records [][]string
		fields  []string
		field   []byte
		escaped bool
		rawCR   bool
		started bool
	)

	endRecord := func() {
		if rawCR {
			field = field[:len(field)-1]
		}
		fields = append(fields, string(field))
		records = append(records, fields)
		fields, field, rawCR, started = nil, nil, false, false
	}

	for _, c := range data {
		switch {
		case escaped:
			field = append(field, c)
			escaped, rawCR = false, false
		case c == EscapeChar:
			escaped, rawCR = true, false
		case c == Delimiter:
			fields = append(fields, string(field))
			field, rawCR = nil, false
		case c == '\n':
			endRecord()
			continue
		default:
			field = append(field, c)
			rawCR = c == '\r'
		}
		started = true
	}

	if started {
		endRecord()
	}
	return records
}
