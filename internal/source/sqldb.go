//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// DefaultTables are the table names database sources read.
var DefaultTables = map[schema.Kind]string{
	schema.Customers: "customers",
	schema.Orders:    "orders",
	schema.Items:     "itemstock",
}

// SQLDB reads one table per dataset through database/sql.
type SQLDB struct {
	driver string
	db     *sql.DB
	opts   Options
}

// NewSQLite opens the SQLite database file at opts.Path.
func NewSQLite(opts Options) (Source, error) {
	dsn := opts.Path
	if dsn == "" {
		dsn = opts.Connection
	}
	if dsn == "" {
		return nil, errors.New("sqlite source requires a database path")
	}
	return openSQL("sqlite", dsn, opts)
}

// NewMySQL connects to the MySQL database named by opts.Connection.
func NewMySQL(opts Options) (Source, error) {
	if opts.Connection == "" {
		return nil, errors.New("mysql source requires a connection string")
	}
	return openSQL("mysql", opts.Connection, opts)
}

func openSQL(driver, dsn string, opts Options) (*SQLDB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return &SQLDB{driver: driver, db: db, opts: opts}, nil
}

// Name returns the driver name.
func (s *SQLDB) Name() string {
	return s.driver
}

// Close closes the database handle.
func (s *SQLDB) Close() error {
	return s.db.Close()
}

// Load reads every row of the table for the given kind.
func (s *SQLDB) Load(ctx context.Context, kind schema.Kind) (*schema.RawTable, error) {
	table := s.opts.name(kind, DefaultTables)
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	t := &schema.RawTable{Name: table, Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}

		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = cellString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// cellString renders a scanned value the way it would appear in a csv
// export.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}
