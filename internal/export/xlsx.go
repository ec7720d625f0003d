package export

import (
	"io"
	"strings"

	"github.com/stwalsh4118/ll97/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet      = "Sheet1"
	maxSheetNameChars = 31
)

// XLSXWriter writes a workbook with a single sheet named after the table.
// Numeric cells are stored as numbers.
type XLSXWriter struct{}

// Format returns "xlsx".
func (XLSXWriter) Format() string { return FormatXLSX }

// Write writes t to path as an XLSX workbook.
func (XLSXWriter) Write(path string, t *models.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(t.Name)
	if sheet != defaultSheet {
		f.SetSheetName(defaultSheet, sheet)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(t.Header))
	for i, name := range t.Header {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	text := textColumns(t)
	values := make([]interface{}, len(t.Header))
	for r, row := range t.Rows {
		for i, cell := range row {
			if n, ok := numericCell(cell); ok && !text[i] {
				values[i] = n
			} else {
				values[i] = cell
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, values[:len(row)]); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	return writeAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

// SheetName maps a table name to a valid worksheet name.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))

	if name == "" {
		return defaultSheet
	}
	if runes := []rune(name); len(runes) > maxSheetNameChars {
		name = string(runes[:maxSheetNameChars])
	}
	return name
}
