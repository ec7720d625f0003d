package dataset

import (
	"github.com/stwalsh4118/ll97/internal/calculator"
	"github.com/stwalsh4118/ll97/internal/models"
)

// CleanseStats counts the cells Cleanse had to coerce.
type CleanseStats struct {
	Coerced      int
	AddedColumns []string
}

// Cleanse rewrites every numeric column of the joined table as plain decimal
// text. Missing, non-numeric and non-finite cells become "0"; numeric columns
// absent from the table are appended filled with "0". The table is modified in place.
func Cleanse(t *models.Table) CleanseStats {
	var stats CleanseStats
	for _, column := range models.NumericColumns {
		if !t.HasColumn(column) {
			// AppendColumn only fails for an existing column, which HasColumn excluded.
			_ = t.AppendColumn(column, "0")
			stats.AddedColumns = append(stats.AddedColumns, column)
			continue
		}
		col, _ := t.ColumnIndex(column)
		for _, row := range t.Rows {
			cleaned := calculator.FormatNumber(calculator.ParseReading(row[col]))
			if cleaned != row[col] {
				stats.Coerced++
			}
			row[col] = cleaned
		}
	}
	return stats
}
