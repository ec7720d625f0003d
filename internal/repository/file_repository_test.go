package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileRepository_Load(t *testing.T) {
	// Arrange
	path := writeFile(t, "ll97.csv", "\ufeffBBL,Address\n1-00001-0001,\"1 Main St, NY\"\n2-00002-0002,2 Side Ave\n")
	repo := NewFileRepository()

	// Act
	table, err := repo.Load(context.Background(), path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ll97", table.Name)
	assert.Equal(t, []string{"BBL", "Address"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "1 Main St, NY", table.Value(0, "Address"))
	assert.Equal(t, "2-00002-0002", table.Value(1, "BBL"))
}

func TestFileRepository_RaggedRows(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b,c\n1\n1,2,3,4\n")

	table, err := NewFileRepository().Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1])
}

func TestFileRepository_CustomDelimiter(t *testing.T) {
	path := writeFile(t, "ll84.tsv", "BBL\tScore\n1\t75\n")

	table, err := NewFileRepository(WithComma('\t')).Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "75", table.Value(0, "Score"))
}

func TestFileRepository_NotFound(t *testing.T) {
	_, err := NewFileRepository().Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestFileRepository_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	_, err := NewFileRepository().Load(context.Background(), path)

	require.Error(t, err)
}

func TestFileRepository_CancelledContext(t *testing.T) {
	path := writeFile(t, "ll97.csv", "BBL\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileRepository().Load(ctx, path)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSources_Load(t *testing.T) {
	path := writeFile(t, "covered.csv", "BBL\n1\n")
	sources := Sources{Files: NewFileRepository()}

	table, err := sources.Load(context.Background(), SourceSpec{Name: "primary", Path: path})

	require.NoError(t, err)
	assert.Equal(t, "primary", table.Name)
	assert.Equal(t, 1, table.Len())
}

func TestSources_QueryWithoutDatabase(t *testing.T) {
	sources := Sources{Files: NewFileRepository()}

	_, err := sources.Load(context.Background(), SourceSpec{Name: "secondary", Path: "x.csv", Query: "SELECT 1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database is configured")
}

func TestSources_EmptySpec(t *testing.T) {
	_, err := Sources{Files: NewFileRepository()}.Load(context.Background(), SourceSpec{Name: "primary"})

	require.Error(t, err)
}

func TestSourceSpec_Describe(t *testing.T) {
	assert.Equal(t, "a.csv", SourceSpec{Path: "a.csv"}.Describe())
	assert.Equal(t, "query", SourceSpec{Path: "a.csv", Query: "SELECT 1"}.Describe())
}
