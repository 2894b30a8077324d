//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// TableNames maps each dataset to its table.
var TableNames = map[schema.Kind]string{
	schema.Customers: "customers",
	schema.Orders:    "orders",
	schema.Items:     "itemstock",
}

// ImportTable replaces a table with the contents of a normalized table.
// Every column is stored as text so that the original cell spelling
// survives a round trip.
func ImportTable(ctx context.Context, db DB, name string, t *schema.Table) (int64, error) {
	ident := pgx.Identifier{name}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize() + " TEXT"
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("failed to drop %s: %w", name, err)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", ident.Sanitize(), strings.Join(cols, ", "))
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	start := time.Now()
	n, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
		row := make([]any, len(t.Rows[i]))
		for j, v := range t.Rows[i] {
			row[j] = v
		}
		return row, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy into %s: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", name, err)
	}

	logging.Info().
		Str("table", name).
		Int64("rows", n).
		Dur("elapsed", time.Since(start)).
		Msg("Imported table")

	return n, nil
}

// ReadTable reads every row of a table as text cells.
func ReadTable(ctx context.Context, db DB, name string) (*schema.RawTable, error) {
	rows, err := db.Query(ctx, "SELECT * FROM "+pgx.Identifier{name}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &schema.RawTable{Name: name, Columns: make([]string, len(fields))}
	for i, f := range fields {
		t.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = text(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// DropTables drops the dataset tables and the metadata table.
func DropTables(ctx context.Context, db DB) error {
	for _, kind := range schema.Kinds() {
		name := pgx.Identifier{TableNames[kind]}.Sanitize()
		if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
			return fmt.Errorf("failed to drop %s: %w", TableNames[kind], err)
		}
	}
	return DropMetadata(ctx, db)
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	}
	return fmt.Sprint(v)
}
