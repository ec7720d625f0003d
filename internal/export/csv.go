package export

import (
	"encoding/csv"
	"io"

	"github.com/stwalsh4118/ll97/internal/models"
)

// CSVWriter writes a header row followed by every data row.
type CSVWriter struct{}

// Format returns "csv".
func (CSVWriter) Format() string { return FormatCSV }

// Write writes t to path as CSV.
func (CSVWriter) Write(path string, t *models.Table) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		return cw.Error()
	})
}
