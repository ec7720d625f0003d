package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/models"
)

// SourceSpec names one input table: a file path or a SQL query.
// Query wins when both are set.
type SourceSpec struct {
	Name  string
	Path  string
	Query string
}

// Describe returns the path or "query" for log fields.
func (s SourceSpec) Describe() string {
	if s.Query != "" {
		return "query"
	}
	return s.Path
}

// Sources dispatches a SourceSpec to the file or query repository.
type Sources struct {
	Files   TableRepository
	Queries TableRepository
}

// Load reads the table described by spec and renames it to spec.Name.
func (s Sources) Load(ctx context.Context, spec SourceSpec) (*models.Table, error) {
	var (
		table *models.Table
		err   error
	)
	switch {
	case spec.Query != "":
		if s.Queries == nil {
			return nil, fmt.Errorf("source %s is a query but no database is configured", spec.Name)
		}
		table, err = s.Queries.Load(ctx, spec.Query)
	case spec.Path != "":
		if s.Files == nil {
			return nil, fmt.Errorf("source %s is a file but no file repository is configured", spec.Name)
		}
		table, err = s.Files.Load(ctx, spec.Path)
	default:
		return nil, fmt.Errorf("source %s has neither a path nor a query", spec.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s source: %w", spec.Name, err)
	}

	if spec.Name != "" {
		table.Name = spec.Name
	}
	metrics.AddSourceRows(spec.Name, table.Len())
	return table, nil
}
