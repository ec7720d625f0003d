package models

import "fmt"

// Table is an in-memory delimited-text table: a header row plus string cells.
// Rows are never shorter than the header once constructed through NewTable.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable creates a table, padding ragged rows with empty cells and
// truncating rows longer than the header.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:   name,
		Header: append([]string(nil), header...),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, fitRow(row, len(header)))
	}
	t.reindex()
	return t
}

func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		// First occurrence wins for duplicated header names.
		if _, exists := t.index[name]; !exists {
			t.index[name] = i
		}
	}
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Value returns the cell at (row, column name), or "" when the column is absent.
func (t *Table) Value(row int, column string) string {
	i, ok := t.ColumnIndex(column)
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// AppendColumn adds a column filled with value.
// It returns an error when a column with the same name already exists.
func (t *Table) AppendColumn(name, value string) error {
	if t.HasColumn(name) {
		return fmt.Errorf("column %q already exists in table %q", name, t.Name)
	}
	t.Header = append(t.Header, name)
	t.index[name] = len(t.Header) - 1
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], value)
	}
	return nil
}

// Clone returns a deep copy of the table under a new name.
func (t *Table) Clone(name string) *Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return NewTable(name, t.Header, rows)
}
