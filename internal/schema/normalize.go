package schema

import (
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
)

// Normalize canonicalizes the columns of a raw table. It fails with a
// *SchemaError when a required column is absent; optional columns are simply
// reported through Table.Has.
func Normalize(kind Kind, raw *RawTable) (*Table, error) {
	if raw == nil {
		return nil, &SchemaError{Kind: kind, Missing: Required(kind)}
	}

	t := &Table{
		Kind:  kind,
		Name:  raw.Name,
		index: make(map[string]int, len(raw.Columns)),
	}

	// source position of each kept column
	keep := make([]int, 0, len(raw.Columns))
	for i, col := range raw.Columns {
		name := Canonical(kind, col)
		if name == "" {
			continue
		}
		if _, dup := t.index[name]; dup {
			t.Dropped = append(t.Dropped, col)
			continue
		}
		t.index[name] = len(t.Columns)
		t.Columns = append(t.Columns, name)
		keep = append(keep, i)
	}

	var missing []string
	for _, col := range requiredColumns[kind] {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Kind: kind, Table: raw.Name, Missing: missing}
	}

	if len(t.Dropped) > 0 {
		logging.Warn().
			Str("table", raw.Name).
			Strs("columns", t.Dropped).
			Msg("Ignoring duplicate columns")
	}

	t.Rows = make([][]string, len(raw.Rows))
	for r, src := range raw.Rows {
		row := make([]string, len(keep))
		for j, i := range keep {
			if i < len(src) {
				row[j] = src[i]
			}
		}
		t.Rows[r] = row
	}

	return t, nil
}
