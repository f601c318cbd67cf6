package converter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nconklindev/tidysheet/internal/header"
	"github.com/nconklindev/tidysheet/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// xlsxFixture builds an in-memory workbook whose first sheet holds rows.
func xlsxFixture(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	return xlsxFixtureAt(t, 1, 1, rows...)
}

// xlsxFixtureAt is xlsxFixture with the first row written at (col, row),
// both 1-based. A nil row leaves that sheet row untouched.
func xlsxFixtureAt(t *testing.T, col, row int, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i := range rows {
		if rows[i] == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col, row+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func fixedConverter(opts ...Option) *Converter {
	opts = append([]Option{WithTokenSource(header.TokenFunc(func() string { return "blank1" }))}, opts...)
	return New(opts...)
}

func TestBuildDataset(t *testing.T) {
	data := xlsxFixture(t,
		[]interface{}{"ID", "Nome Completo", "Preço (R$)"},
		[]interface{}{1, "Ana", 10.5},
		[]interface{}{2, "Bruno", 7},
	)

	ds, err := fixedConverter().BuildDataset(data, "vendas_2024.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "nome_completo", "preco_r"}, ds.Headers)
	assert.Equal(t, "vendas_2024", ds.BaseName)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, types.NumberCell(1), ds.Rows[0].At(0))
	assert.Equal(t, types.TextCell("Ana"), ds.Rows[0].At(1))
	assert.Equal(t, types.NumberCell(10.5), ds.Rows[0].At(2))
	assert.Equal(t, types.TextCell("Bruno"), ds.Rows[1].At(1))
}

func TestBuildDatasetCellTypes(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	data := xlsxFixture(t,
		[]interface{}{"when", "ok", "note"},
		[]interface{}{day, true, "  spaced  "},
	)

	ds, err := fixedConverter().BuildDataset(data, "types.xlsx")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)

	when := ds.Rows[0].At(0)
	require.Equal(t, types.DateTime, when.Kind, "date cell decoded as %s", when.Kind)
	assert.True(t, when.Time.Equal(day), "got %v; want %v", when.Time, day)
	assert.Equal(t, "2024-01-15", when.String())

	assert.Equal(t, types.BoolCell(true), ds.Rows[0].At(1))
	assert.Equal(t, types.TextCell("  spaced  "), ds.Rows[0].At(2))
}

func TestBuildDatasetBlankHeaderGetsFallback(t *testing.T) {
	data := xlsxFixture(t,
		[]interface{}{"name", nil, "total"},
		[]interface{}{"x", "y", "z"},
	)

	ds, err := fixedConverter().BuildDataset(data, "blank.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "col_blank1", "total"}, ds.Headers)
}

func TestBuildDatasetDuplicateHeaders(t *testing.T) {
	data := xlsxFixture(t,
		[]interface{}{"ID", "Id ", "Nome"},
		[]interface{}{1, 2, "Ana"},
	)

	ds, err := fixedConverter().BuildDataset(data, "dup.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "id_2", "nome"}, ds.Headers)

	ds, err = fixedConverter(WithKeepDuplicates(true)).BuildDataset(data, "dup.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "id", "nome"}, ds.Headers)
}

func TestBuildDatasetRaggedRows(t *testing.T) {
	data := xlsxFixture(t,
		[]interface{}{"a", "b", "c"},
		[]interface{}{"only"},
		[]interface{}{1, 2, 3, "extra"},
	)

	ds, err := fixedConverter().BuildDataset(data, "ragged.xlsx")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	short := ds.Rows[0]
	assert.Equal(t, types.TextCell("only"), short.At(0))
	assert.True(t, short.At(1).IsEmpty())
	assert.True(t, short.At(2).IsEmpty())

	long := ds.Rows[1]
	require.Len(t, long, 4)
	assert.Equal(t, types.TextCell("extra"), long.At(3))
}

func TestBuildDatasetDataAwayFromA1(t *testing.T) {
	data := xlsxFixtureAt(t, 2, 2,
		[]interface{}{"Nome", "Idade"},
		[]interface{}{"Ana", 30},
		nil,
		[]interface{}{"Bruno", 41},
	)

	ds, err := fixedConverter().BuildDataset(data, "b2.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"nome", "idade"}, ds.Headers)
	require.Len(t, ds.Rows, 3)

	assert.Equal(t, types.Row{types.TextCell("Ana"), types.NumberCell(30)}, ds.Rows[0])
	assert.Empty(t, ds.Rows[1], "blank row inside the data is kept")
	assert.Equal(t, types.Row{types.TextCell("Bruno"), types.NumberCell(41)}, ds.Rows[2])
}

func TestBuildDatasetUsesFirstSheetByPosition(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Zeta"))
	_, err := f.NewSheet("Alpha")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Zeta", "A1", &[]interface{}{"from zeta"}))
	require.NoError(t, f.SetSheetRow("Alpha", "A1", &[]interface{}{"from alpha"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := fixedConverter().BuildDataset(buf.Bytes(), "sheets.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"from_zeta"}, ds.Headers)
	assert.Empty(t, ds.Rows)
}

func TestBuildDatasetErrors(t *testing.T) {
	emptySheet := xlsxFixture(t)

	tests := []struct {
		name  string
		data  []byte
		check func(error) bool
	}{
		{"Empty payload", nil, IsUnreadable},
		{"Plain text", []byte("id,name\n1,Ana\n"), IsDecodeError},
		{"Broken zip", []byte("PK\x03\x04 definitely not a workbook"), IsDecodeError},
		{"Empty first sheet", emptySheet, IsDecodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := fixedConverter().BuildDataset(tt.data, "input.xlsx")
			assert.Nil(t, ds)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestEmptySheetMessage(t *testing.T) {
	_, err := fixedConverter().BuildDataset(xlsxFixture(t), "empty.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sheet")
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"vendas_2024.xlsx", "vendas_2024"},
		{"report", "report"},
		{"archive.tar.xls", "archive.tar"},
		{"trailing.", "trailing."},
		{"Planilha Final.XLSX", "Planilha Final"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := BaseName(tt.input); got != tt.expected {
				t.Errorf("BaseName(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "clientes.xlsx")
	require.NoError(t, os.WriteFile(good, xlsxFixture(t, []interface{}{"Cliente"}, []interface{}{"Ana"}), 0o644))

	ds, err := fixedConverter().Load(good)
	require.NoError(t, err)
	assert.Equal(t, "clientes", ds.BaseName)
	assert.Equal(t, []string{"cliente"}, ds.Headers)

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))
	_, err = fixedConverter().Load(notes)
	assert.True(t, IsUnsupported(err), "got %v", err)

	_, err = fixedConverter().Load(filepath.Join(dir, "missing.xlsx"))
	assert.True(t, IsUnreadable(err), "got %v", err)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "vendas_2024.xlsx")
	require.NoError(t, os.WriteFile(input, xlsxFixture(t,
		[]interface{}{"ID", "Nome Completo"},
		[]interface{}{1, "Ana"},
		[]interface{}{2, "Bruno"},
	), 0o644))

	result, err := fixedConverter().Convert(input, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vendas_2024_normalized.csv"), result.OutputFile)
	assert.Equal(t, 2, result.RowsWritten)
	assert.Equal(t, []string{"id", "nome_completo"}, result.Headers)

	f, err := os.Open(result.OutputFile)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "nome_completo"},
		{"1", "Ana"},
		{"2", "Bruno"},
	}, records)
}

func TestConvertToOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.xlsx")
	require.NoError(t, os.WriteFile(input, xlsxFixture(t, []interface{}{"a"}), 0o644))

	out := filepath.Join(dir, "exports", "nested")
	result, err := fixedConverter().Convert(input, out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.OutputFile, out))

	_, err = os.Stat(result.OutputFile)
	assert.NoError(t, err)
}
