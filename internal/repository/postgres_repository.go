package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stwalsh4118/ll97/internal/database"
	"github.com/stwalsh4118/ll97/internal/models"
)

// postgresRepository reads source tables with SQL queries.
type postgresRepository struct {
	db *database.Database
}

// NewPostgresRepository creates a TableRepository whose source is a SQL query.
func NewPostgresRepository(db *database.Database) TableRepository {
	return &postgresRepository{
		db: db,
	}
}

// Load runs query and returns the result set as text. Column names become the
// header; NULL becomes an empty cell.
func (r *postgresRepository) Load(ctx context.Context, query string) (*models.Table, error) {
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run source query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	var records [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		records = append(records, record)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return models.NewTable("query", header, records), nil
}

// formatValue renders a decoded column value the way it would appear in a CSV export.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

