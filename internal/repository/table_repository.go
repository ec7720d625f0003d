package repository

import (
	"context"
	"errors"

	"github.com/stwalsh4118/ll97/internal/models"
)

// ErrSourceNotFound indicates a source table does not exist.
var ErrSourceNotFound = errors.New("source not found")

// TableRepository defines how source tables are read.
type TableRepository interface {
	// Load reads the whole table identified by source (a file path or a query,
	// depending on the implementation). The header row becomes Table.Header and
	// every cell is returned as text.
	Load(ctx context.Context, source string) (*models.Table, error)
}
