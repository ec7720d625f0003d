package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/ll97/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *models.Table {
	return models.NewTable("ll97_by_year", []string{"BBL", "Address", "2024_carbon_emissions", "Zip"}, [][]string{
		{"1000010001", "1 Main St", "0.29", "00501"},
		{"2000020002", "", "12.5", "10001"},
	})
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"csv", FormatCSV},
		{"XLSX", FormatXLSX},
		{" json ", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, err := ForFormat(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, w.Format())
		})
	}

	_, err := ForFormat("parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "ll97_by_year.xlsx"), Path("out", "ll97_by_year", XLSXWriter{}))
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTable(dir, CSVWriter{}, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ll97_by_year.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"BBL", "Address", "2024_carbon_emissions", "Zip"}, records[0])
	assert.Equal(t, []string{"2000020002", "", "12.5", "10001"}, records[2])
}

func TestXLSXWriter(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTable(dir, XLSXWriter{}, sampleTable())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"ll97_by_year"}, f.GetSheetList())

	rows, err := f.GetRows("ll97_by_year")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "BBL", rows[0][0])
	assert.Equal(t, "1 Main St", rows[1][1])

	// Numbers are stored as numbers, identifiers with leading zeros as text
	cellType, err := f.GetCellType("ll97_by_year", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	zip, err := f.GetCellValue("ll97_by_year", "D2")
	require.NoError(t, err)
	assert.Equal(t, "00501", zip)

	// The building key is stored like the zip code, not like the number in C2
	key, err := f.GetCellValue("ll97_by_year", "A2")
	require.NoError(t, err)
	assert.Equal(t, "1000010001", key)
	keyType, err := f.GetCellType("ll97_by_year", "A2")
	require.NoError(t, err)
	zipType, err := f.GetCellType("ll97_by_year", "D2")
	require.NoError(t, err)
	assert.Equal(t, zipType, keyType)
	assert.NotEqual(t, cellType, keyType)
}

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTable(dir, JSONWriter{}, sampleTable())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	// The building key stays a string even though it is all digits
	assert.Equal(t, "1000010001", rows[0]["BBL"])
	assert.Equal(t, 0.29, rows[0]["2024_carbon_emissions"])
	assert.Equal(t, "00501", rows[0]["Zip"])
	assert.Equal(t, "", rows[1]["Address"])

	// Keys keep the table's column order
	first := string(data)
	assert.Less(t, strings.Index(first, `"BBL"`), strings.Index(first, `"Address"`))
	assert.Less(t, strings.Index(first, `"Address"`), strings.Index(first, `"2024_carbon_emissions"`))
}

func TestJSONWriter_EmptyTable(t *testing.T) {
	dir := t.TempDir()
	table := models.NewTable("empty", []string{"BBL"}, nil)

	path, err := WriteTable(dir, JSONWriter{}, table)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteTable_LeavesNoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist")

	_, err := WriteTable(missing, CSVWriter{}, sampleTable())
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteTable_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ll97_by_year.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := WriteTable(dir, CSVWriter{}, sampleTable())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BBL,Address"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be renamed away")
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "ll97_by_period", "ll97_by_period"},
		{"forbidden characters", "a/b:c", "a_b_c"},
		{"empty", "", "Sheet1"},
		{"too long", strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SheetName(tt.input))
		})
	}
}

func TestTextColumns(t *testing.T) {
	table := models.NewTable("t", []string{"Zip", models.KeyColumn, "2024_carbon_emissions"}, nil)

	assert.Equal(t, []bool{false, true, false}, textColumns(table))
}

func TestNumericCell(t *testing.T) {
	tests := []struct {
		input   string
		numeric bool
	}{
		{"0", true},
		{"0.5", true},
		{"-12.25", true},
		{"1e3", true},
		{"007", false},
		{"", false},
		{"NaN", false},
		{"Inf", false},
		{"12 Main", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ok := numericCell(tt.input)
			assert.Equal(t, tt.numeric, ok)
		})
	}
}
