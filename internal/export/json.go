package export

import (
	"bufio"
	"io"

	"github.com/goccy/go-json"
	"github.com/stwalsh4118/ll97/internal/models"
)

// JSONWriter writes an array with one object per row. Object keys follow
// the table's column order and numeric cells are written as JSON numbers,
// except in the building key column.
type JSONWriter struct{}

// Format returns "json".
func (JSONWriter) Format() string { return FormatJSON }

// Write writes t to path as JSON.
func (JSONWriter) Write(path string, t *models.Table) error {
	keys := make([][]byte, len(t.Header))
	for i, name := range t.Header {
		b, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = b
	}

	text := textColumns(t)

	return writeAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		bw.WriteString("[")
		for r, row := range t.Rows {
			if r > 0 {
				bw.WriteString(",")
			}
			bw.WriteString("\n  {")
			for i, cell := range row {
				if i > 0 {
					bw.WriteString(",")
				}
				bw.Write(keys[i])
				bw.WriteString(":")
				value, err := encodeCell(cell, text[i])
				if err != nil {
					return err
				}
				bw.Write(value)
			}
			bw.WriteString("}")
		}
		if len(t.Rows) > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString("]\n")
		return bw.Flush()
	})
}

func encodeCell(cell string, text bool) ([]byte, error) {
	if n, ok := numericCell(cell); ok && !text {
		return json.Marshal(n)
	}
	return json.Marshal(cell)
}
