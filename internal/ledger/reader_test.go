package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/types"
)

const header = "Inv. číslo;Název;Datum;Cena;Účet;Lokalita\n"

func locationOptions() Options {
	return OptionsFromConfig(config.Default().Ledger)
}

func ownerOptions() Options {
	settings := config.Default().Ledger
	settings.Mode = config.ModeOwner
	return OptionsFromConfig(settings)
}

func readAll(t *testing.T, input string, opts Options) []types.Decision {
	t.Helper()
	decisions, err := Drain(NewReader(NewCSVSource(strings.NewReader(input)), opts))
	require.NoError(t, err)
	return decisions
}

func kinds(decisions []types.Decision) []types.DecisionKind {
	out := make([]types.DecisionKind, len(decisions))
	for i, d := range decisions {
		out[i] = d.Kind
	}
	return out
}

func TestReader_DataRows(t *testing.T) {
	input := header +
		"001; Chair ;x;x;x; RoomA / Shelf1 \n" +
		"002;Desk;x;x;x;RoomA/Shelf2\n"

	decisions := readAll(t, input, locationOptions())
	require.Len(t, decisions, 3)

	assert.Equal(t, types.Skip, decisions[0].Kind)

	assert.Equal(t, types.DataRow, decisions[1].Kind)
	assert.Equal(t, "001", decisions[1].Code)
	assert.Equal(t, "Chair", decisions[1].Name)
	assert.Equal(t, []string{"RoomA", "Shelf1"}, decisions[1].Segments)
	assert.Equal(t, 2, decisions[1].Line)

	assert.Equal(t, types.Item{Code: "002", Name: "Desk"}, decisions[2].Item())
	assert.Equal(t, []string{"RoomA", "Shelf2"}, decisions[2].Segments)
}

func TestReader_FirstRowAlwaysSkippedInLocationMode(t *testing.T) {
	// The first row is skipped even when it looks like data.
	input := "000;Header;x;x;x;RoomZ/Shelf9\n001;Chair;x;x;x;RoomA/Shelf1\n"

	decisions := readAll(t, input, locationOptions())
	assert.Equal(t, []types.DecisionKind{types.Skip, types.DataRow}, kinds(decisions))
}

func TestReader_StructuralSkips(t *testing.T) {
	input := header +
		"003;Box;x;x;x;Lokalita/Shelf1\n" + // sentinel
		"004;Lamp;x;x;x;RoomB\n" + // single segment
		"005;Stool;x;x;x\n" + // too few columns
		"006;Rug;x;x;x;Hala Lokalita 2/Shelf\n" + // sentinel anywhere in the field
		"007;Desk;x;x;x;RoomD/Shelf1/BoxA\n"

	decisions := readAll(t, input, locationOptions())
	assert.Equal(t, []types.DecisionKind{
		types.Skip, types.Skip, types.Skip, types.Skip, types.Skip, types.DataRow,
	}, kinds(decisions))
	assert.Equal(t, []string{"RoomD", "Shelf1", "BoxA"}, decisions[5].Segments)
}

func TestReader_EmptySegmentsCount(t *testing.T) {
	decisions := readAll(t, header+"008;Shelf;x;x;x;RoomE/\n", locationOptions())
	require.Len(t, decisions, 2)
	assert.Equal(t, types.DataRow, decisions[1].Kind)
	assert.Equal(t, []string{"RoomE", ""}, decisions[1].Segments)
}

func TestReader_CustodianMarker(t *testing.T) {
	input := "Odpovědná osoba: Jana Nováková ;;;;;\n" +
		"Inv. číslo;Název;;;;Lokalita\n" +
		"anything;at all;;;;RoomX/ShelfX\n" +
		"010;Lamp;x;x;x;RoomC/Shelf1\n"

	decisions := readAll(t, input, ownerOptions())
	require.Len(t, decisions, 4)

	assert.Equal(t, types.CustodianMarker, decisions[0].Kind)
	assert.Equal(t, "Jana Nováková", decisions[0].Custodian)

	// Both boilerplate rows are consumed regardless of their content.
	assert.Equal(t, types.Skip, decisions[1].Kind)
	assert.Equal(t, types.Skip, decisions[2].Kind)

	assert.Equal(t, types.DataRow, decisions[3].Kind)
	assert.Equal(t, []string{"RoomC", "Shelf1"}, decisions[3].Segments)
}

func TestReader_OwnerModeHasNoHeaderSkip(t *testing.T) {
	decisions := readAll(t, "001;Chair;x;x;x;RoomA/Shelf1\n", ownerOptions())
	assert.Equal(t, []types.DecisionKind{types.DataRow}, kinds(decisions))
}

func TestReader_MarkerSpellings(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		want  string
		match bool
	}{
		{"canonical", "Odpovědná osoba: Petr Svoboda", "Petr Svoboda", true},
		{"upper case", "ODPOVĚDNÁ OSOBA:Petr Svoboda", "Petr Svoboda", true},
		{"known typo", "  odpovědna osoba:  Eva Malá ", "Eva Malá", true},
		{"empty name", "Odpovědná osoba:", "", true},
		{"not a marker", "Odpovědný útvar: IT", "", false},
	}

	r := NewReader(nil, ownerOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := r.custodian([]string{tt.cell})
			assert.Equal(t, tt.match, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestReader_MarkersIgnoredInLocationMode(t *testing.T) {
	input := header + "Odpovědná osoba: Jana;;;;;\n001;Chair;x;x;x;RoomA/Shelf1\n"

	decisions := readAll(t, input, locationOptions())
	assert.Equal(t, []types.DecisionKind{types.Skip, types.Skip, types.DataRow}, kinds(decisions))
}

func TestReader_MarkerAtEndOfLedger(t *testing.T) {
	input := "001;Chair;x;x;x;RoomA/Shelf1\nOdpovědná osoba: Jana\nboilerplate\n"

	decisions := readAll(t, input, ownerOptions())
	assert.Equal(t, []types.DecisionKind{types.DataRow, types.CustodianMarker, types.Skip}, kinds(decisions))
}

func TestReader_BlankBoilerplateRow(t *testing.T) {
	input := "Odpovědná osoba: Jana\n" +
		"\n" +
		"hdr;a;b;c;d;Lokalita\n" +
		"001;Chair;;;;RoomC/Shelf1\n"

	decisions := readAll(t, input, ownerOptions())
	require.Equal(t,
		[]types.DecisionKind{types.CustodianMarker, types.Skip, types.Skip, types.DataRow},
		kinds(decisions))

	assert.Equal(t, "001", decisions[3].Code)
	assert.Equal(t, "Jana", decisions[0].Custodian)
	assert.Equal(t, 4, decisions[3].Line)
}

func TestReader_BlankFirstLineInLocationMode(t *testing.T) {
	// The blank line is the skipped first row, so the next row is read as data.
	input := "\n000;Stool;x;x;x;RoomZ/Shelf9\n\n\n001;Chair;x;x;x;RoomA/Shelf1\n"

	decisions := readAll(t, input, locationOptions())
	require.Equal(t,
		[]types.DecisionKind{types.Skip, types.DataRow, types.Skip, types.Skip, types.DataRow},
		kinds(decisions))

	assert.Equal(t, 2, decisions[1].Line)
	assert.Equal(t, 5, decisions[4].Line)
}

func TestReader_MultilineFieldIsNotABlankRow(t *testing.T) {
	input := "001;\"Chair\nwith arms\";x;x;x;RoomA/Shelf1\n" +
		"002;Desk;x;x;x;\"RoomA/\nShelf2\"\n" +
		"\n" +
		"003;Lamp;x;x;x;RoomA/Shelf3\n"

	decisions := readAll(t, input, ownerOptions())
	require.Equal(t,
		[]types.DecisionKind{types.DataRow, types.DataRow, types.Skip, types.DataRow},
		kinds(decisions))

	assert.Equal(t, "Chair\nwith arms", decisions[0].Name)
	assert.Equal(t, "003", decisions[3].Code)
}

func TestCSVSource_QuoteAfterSpaceIsLiteral(t *testing.T) {
	src := NewCSVSource(strings.NewReader("x; \"a;b\"\n"))

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", ` "a`, `b"`}, row)
}

func TestReader_CustomColumns(t *testing.T) {
	settings := config.Default().Ledger
	settings.LocationColumn = 2
	settings.NameColumn = 3
	opts := OptionsFromConfig(settings)

	decisions := readAll(t, "h\n001;x;RoomA/Shelf1;Chair\n002;x;RoomA/Shelf1\n", opts)
	require.Len(t, decisions, 3)
	assert.Equal(t, types.DataRow, decisions[1].Kind)
	assert.Equal(t, "Chair", decisions[1].Name)
	// The name column is missing, so the row is incomplete.
	assert.Equal(t, types.Skip, decisions[2].Kind)
}

func TestCutPrefixFold(t *testing.T) {
	rest, ok := cutPrefixFold("ŠKOLA: 1", "škola:")
	assert.True(t, ok)
	assert.Equal(t, " 1", rest)

	_, ok = cutPrefixFold("ško", "škola:")
	assert.False(t, ok)
}

// =============================================================================
// SOURCES
// =============================================================================

func TestOpen_MissingInput(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "MANKO.csv"), config.Default().Ledger)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestOpen_UTF8WithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "\xEF\xBB\xBFOdpovědná osoba: Jana\nh1\nh2\n001;Chair;x;x;x;RoomA/Shelf1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := Open(path, config.Default().Ledger)
	require.NoError(t, err)
	defer src.Close()

	decisions, err := Drain(NewReader(src, ownerOptions()))
	require.NoError(t, err)
	require.Len(t, decisions, 4)
	assert.Equal(t, types.CustodianMarker, decisions[0].Kind)
	assert.Equal(t, "Jana", decisions[0].Custodian)
}

func TestOpen_Windows1250(t *testing.T) {
	encoded, err := charmap.Windows1250.NewEncoder().String(header + "001;Židle;x;x;x;Učebna/Skříň 1\n")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	settings := config.Default().Ledger
	settings.Encoding = "windows-1250"
	src, err := Open(path, settings)
	require.NoError(t, err)
	defer src.Close()

	decisions, err := Drain(NewReader(src, OptionsFromConfig(settings)))
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "Židle", decisions[1].Name)
	assert.Equal(t, []string{"Učebna", "Skříň 1"}, decisions[1].Segments)
}

func TestOpen_UnsupportedEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(header), 0o644))

	settings := config.Default().Ledger
	settings.Encoding = "EBCDIC"
	_, err := Open(path, settings)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingInput)
}

func TestOpen_XLSX(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows := [][]interface{}{
		{"Inv. číslo", "Název", "", "", "", "Lokalita"},
		{"001", "Chair", "", "", "", "RoomA/Shelf1"},
		{"002", "Lamp", "", "", "", "RoomB"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, book.SaveAs(path))

	src, err := Open(path, config.Default().Ledger)
	require.NoError(t, err)
	defer src.Close()

	decisions, err := Drain(NewReader(src, locationOptions()))
	require.NoError(t, err)
	assert.Equal(t, []types.DecisionKind{types.Skip, types.DataRow, types.Skip}, kinds(decisions))
	assert.Equal(t, "Chair", decisions[1].Name)
}

func TestOpen_XLSXEmptyRowsAreKept(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()

	// Row 2 is never written, so the sheet has no element for it.
	sheet := book.GetSheetName(0)
	rows := map[int][]interface{}{
		1: {"Odpovědná osoba: Jana"},
		3: {"hdr", "a", "b", "c", "d", "Lokalita"},
		4: {"001", "Chair", "", "", "", "RoomC/Shelf1"},
	}
	for n, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, n)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, book.SaveAs(path))

	src, err := Open(path, config.Default().Ledger)
	require.NoError(t, err)
	defer src.Close()

	decisions, err := Drain(NewReader(src, ownerOptions()))
	require.NoError(t, err)
	require.Equal(t,
		[]types.DecisionKind{types.CustodianMarker, types.Skip, types.Skip, types.DataRow},
		kinds(decisions))
	assert.Equal(t, "001", decisions[3].Code)
}

func TestOpen_XLSXUnknownSheet(t *testing.T) {
	book := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	settings := config.Default().Ledger
	settings.Sheet = "Inventura"
	_, err := Open(path, settings)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingInput)
}
