// Package dataset joins the covered-buildings list with the benchmarking
// dataset and materializes the per-year and per-period projection tables.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/stwalsh4118/ll97/internal/models"
)

// CollisionSuffix is appended to secondary columns whose names already exist
// in the primary table.
const CollisionSuffix = " (LL84)"

// ErrMissingKeyColumn indicates a source table lacks its configured key column.
var ErrMissingKeyColumn = errors.New("missing key column")

// JoinOptions configures the key columns of both sources.
type JoinOptions struct {
	PrimaryKey   string
	SecondaryKey string
	// Name of the joined table.
	Name string
}

// DefaultJoinOptions returns the column names used by the published LL97 and LL84 datasets.
func DefaultJoinOptions() JoinOptions {
	return JoinOptions{
		PrimaryKey:   models.KeyColumn,
		SecondaryKey: models.SecondaryKeyColumn,
		Name:         "joined",
	}
}

// JoinStats reports what the join did with the input rows.
type JoinStats struct {
	PrimaryRows        int
	SecondaryRows      int
	DuplicatePrimary   int
	DuplicateSecondary int
	Matched            int
	Unmatched          int
	RenamedColumns     []string
}

// NormalizeKey strips the separators ("-", "/") and all whitespace from a raw
// Borough-Block-Lot value.
func NormalizeKey(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '/' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// Join left-joins secondary onto primary by normalized key.
//
// The result holds one row per primary row, sorted ascending by key, with the
// normalized key in the first column. Secondary rows sharing a normalized key
// are deduplicated keeping the first one in file order. Primary rows without a
// match carry empty secondary cells.
func Join(primary, secondary *models.Table, opts JoinOptions) (*models.Table, JoinStats, error) {
	if opts.PrimaryKey == "" || opts.SecondaryKey == "" {
		defaults := DefaultJoinOptions()
		if opts.PrimaryKey == "" {
			opts.PrimaryKey = defaults.PrimaryKey
		}
		if opts.SecondaryKey == "" {
			opts.SecondaryKey = defaults.SecondaryKey
		}
	}
	if opts.Name == "" {
		opts.Name = DefaultJoinOptions().Name
	}

	stats := JoinStats{PrimaryRows: primary.Len(), SecondaryRows: secondary.Len()}

	pKey, ok := primary.ColumnIndex(opts.PrimaryKey)
	if !ok {
		return nil, stats, fmt.Errorf("%w: %q in %s", ErrMissingKeyColumn, opts.PrimaryKey, primary.Name)
	}
	sKey, ok := secondary.ColumnIndex(opts.SecondaryKey)
	if !ok {
		return nil, stats, fmt.Errorf("%w: %q in %s", ErrMissingKeyColumn, opts.SecondaryKey, secondary.Name)
	}

	// Index the secondary source, first row per key wins.
	secondaryByKey := make(map[string]int, secondary.Len())
	for i, row := range secondary.Rows {
		key := NormalizeKey(row[sKey])
		if _, exists := secondaryByKey[key]; exists {
			stats.DuplicateSecondary++
			continue
		}
		secondaryByKey[key] = i
	}

	header, primaryCols, renamed := joinedHeader(primary, secondary, pKey)
	stats.RenamedColumns = renamed

	type keyedRow struct {
		key string
		row []string
	}
	keyed := make([]keyedRow, 0, primary.Len())
	seenPrimary := make(map[string]struct{}, primary.Len())

	for _, row := range primary.Rows {
		key := NormalizeKey(row[pKey])
		if _, exists := seenPrimary[key]; exists {
			stats.DuplicatePrimary++
		}
		seenPrimary[key] = struct{}{}

		out := make([]string, 0, len(header))
		out = append(out, key)
		for _, c := range primaryCols {
			out = append(out, row[c])
		}

		if si, found := secondaryByKey[key]; found {
			stats.Matched++
			out = append(out, secondary.Rows[si]...)
		} else {
			stats.Unmatched++
			out = append(out, make([]string, len(secondary.Header))...)
		}
		keyed = append(keyed, keyedRow{key: key, row: out})
	}

	sort.SliceStable(keyed, func(a, b int) bool {
		return keyed[a].key < keyed[b].key
	})

	rows := make([][]string, len(keyed))
	for i, k := range keyed {
		rows[i] = k.row
	}
	return models.NewTable(opts.Name, header, rows), stats, nil
}

// joinedHeader lays out the output columns: key, primary columns other than the
// key, then every secondary column (renamed on collision).
func joinedHeader(primary, secondary *models.Table, pKey int) ([]string, []int, []string) {
	header := make([]string, 0, 1+len(primary.Header)+len(secondary.Header))
	header = append(header, models.KeyColumn)
	used := map[string]struct{}{models.KeyColumn: {}}

	primaryCols := make([]int, 0, len(primary.Header))
	for i, name := range primary.Header {
		if i == pKey {
			continue
		}
		primaryCols = append(primaryCols, i)
		header = append(header, name)
		used[name] = struct{}{}
	}

	var renamed []string
	for _, name := range secondary.Header {
		out := name
		for {
			if _, taken := used[out]; !taken {
				break
			}
			out += CollisionSuffix
		}
		if out != name {
			renamed = append(renamed, name)
		}
		header = append(header, out)
		used[out] = struct{}{}
	}
	return header, primaryCols, renamed
}
