// =============================================================================
// Inventory Ledger Splitter - Ledger Row Sources
// =============================================================================
//
// A RowSource streams the raw rows of a ledger one at a time. Two formats
// are supported:
//   - CSV  : semicolon-delimited text, optionally in a legacy code page
//   - XLSX : the first (or a named) worksheet of an Excel workbook
//
// The format is chosen from the file extension. Neither source loads the
// whole ledger into memory.
//
// =============================================================================

package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingInput is returned when the ledger file does not exist or
// cannot be opened.
var ErrMissingInput = errors.New("ledger file not found")

// Delimiter separates ledger fields.
const Delimiter = ';'

// RowSource yields raw ledger rows. Next returns io.EOF after the last row.
type RowSource interface {
	Next() ([]string, error)
	Close() error
}

// Open opens the ledger at path and returns a RowSource for it.
//
// PARAMETERS:
//   - path: The ledger file (".xlsx" selects the workbook reader).
//   - settings: Ledger settings (encoding, worksheet).
//
// RETURNS:
//   - The RowSource; the caller must Close it.
//   - An error wrapping ErrMissingInput if the file cannot be opened.
func Open(path string, settings config.LedgerSettings) (RowSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingInput, path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		src, err := newXLSXSource(file, settings.Sheet)
		if err != nil {
			file.Close()
			return nil, err
		}
		return src, nil
	}

	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		file.Close()
		return nil, err
	}

	return newCSVSource(file, decoder), nil
}

// =============================================================================
// CSV SOURCE
// =============================================================================

type csvSource struct {
	closer io.Closer
	reader *csv.Reader

	// nextLine is the physical line the next record should start on.
	nextLine int
	// blanks counts empty rows still owed before held is returned.
	blanks int
	held   []string
}

// NewCSVSource wraps an already decoded UTF-8 stream.
func NewCSVSource(r io.Reader) RowSource {
	return &csvSource{closer: io.NopCloser(nil), reader: newCSVReader(r), nextLine: 1}
}

func newCSVSource(file *os.File, decoder transform.Transformer) *csvSource {
	r := transform.NewReader(bufio.NewReader(file), decoder)
	return &csvSource{closer: file, reader: newCSVReader(r), nextLine: 1}
}

// newCSVReader configures the reader for the ledger dialect: semicolon
// separated, ragged rows allowed, quotes tolerated where they appear.
func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// Next returns the next row. encoding/csv drops blank lines, but they are
// rows of the ledger (a marker's boilerplate may be blank), so every
// skipped line is returned as an empty row. Blank lines after the last
// record are not reported.
func (s *csvSource) Next() ([]string, error) {
	if s.blanks > 0 {
		s.blanks--
		return []string{}, nil
	}
	if s.held != nil {
		row := s.held
		s.held = nil
		return row, nil
	}

	row, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger row: %w", err)
	}

	start, _ := s.reader.FieldPos(0)
	gap := start - s.nextLine
	s.nextLine = s.endLine(row) + 1

	if gap > 0 {
		s.blanks = gap - 1
		s.held = row
		return []string{}, nil
	}
	return row, nil
}

// endLine returns the physical line the last record ended on. Only the
// last field can carry the record past the line its own field starts on.
func (s *csvSource) endLine(row []string) int {
	last := len(row) - 1
	line, _ := s.reader.FieldPos(last)
	return line + strings.Count(row[last], "\n")
}

func (s *csvSource) Close() error {
	return s.closer.Close()
}

// decoderFor returns the decoder for a configured encoding name. UTF-8
// input may start with a byte order mark, which is dropped.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250.NewDecoder(), nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported ledger encoding %q", name)
	}
}

// =============================================================================
// XLSX SOURCE
// =============================================================================

type xlsxSource struct {
	file *os.File
	book *excelize.File
	rows *excelize.Rows
}

func newXLSXSource(file *os.File, sheet string) (*xlsxSource, error) {
	book, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			book.Close()
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := book.Rows(sheet)
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &xlsxSource{file: file, book: book, rows: rows}, nil
}

func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, fmt.Errorf("failed to read ledger row: %w", err)
		}
		return nil, io.EOF
	}
	row, err := s.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger row: %w", err)
	}
	return row, nil
}

func (s *xlsxSource) Close() error {
	s.rows.Close()
	s.book.Close()
	return s.file.Close()
}
