//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides a throwaway PostgreSQL database for integration
// tests, optionally seeded with retail tables.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-retailstats/internal/db"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// DefaultTestConnString is used unless PGEDGE_TEST_CONN is set.
const DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

// RetailDB is a scratch database created for one test.
type RetailDB struct {
	// ConnString points at the scratch database.
	ConnString string

	// Pool is connected to the scratch database.
	Pool *pgxpool.Pool

	name string
}

// baseConnString returns the server connection string, or "" when the
// server does not answer.
func baseConnString() string {
	connStr := os.Getenv("PGEDGE_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return ""
	}
	return connStr
}

// NewRetailDB creates an empty database named after label, or skips the
// test when PostgreSQL is not available. The database is dropped when the
// test passes and kept for diagnostics when it fails.
func NewRetailDB(t *testing.T, label string) *RetailDB {
	t.Helper()

	base := baseConnString()
	if base == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	name := "retailstats_test_" + label + "_" + hex.EncodeToString(suffix)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, base)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	ident := pgx.Identifier{name}.Sanitize()
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(base)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cfg.ConnConfig.Database = name

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	rdb := &RetailDB{
		ConnString: keywordConnString(cfg.ConnConfig.Config),
		Pool:       pool,
		name:       name,
	}
	t.Cleanup(func() { rdb.drop(t, base) })
	return rdb
}

// Seed imports the given tables the way the import command does and
// returns the row count per dataset.
func (r *RetailDB) Seed(t *testing.T, raw map[schema.Kind]*schema.RawTable) map[schema.Kind]int64 {
	t.Helper()

	ctx := context.Background()
	counts := make(map[schema.Kind]int64, len(raw))
	for _, kind := range schema.Kinds() {
		table, err := schema.Normalize(kind, raw[kind])
		if err != nil {
			t.Fatalf("Failed to normalize %s: %v", kind, err)
		}
		n, err := db.ImportTable(ctx, r.Pool, db.TableNames[kind], table)
		if err != nil {
			t.Fatalf("Failed to import %s: %v", kind, err)
		}
		counts[kind] = n
	}
	return counts
}

// keywordConnString rebuilds a connection string from a parsed config.
// ConnString() on a config returns the original text, which does not
// reflect a changed Database.
func keywordConnString(c pgconn.Config) string {
	s := fmt.Sprintf("host=%s port=%d user=%s dbname=%s", c.Host, c.Port, c.User, c.Database)
	if c.Password != "" {
		s += " password=" + c.Password
	}
	return s
}

func (r *RetailDB) drop(t *testing.T, base string) {
	r.Pool.Close()
	if t.Failed() {
		t.Logf("Test failed - keeping database %s for diagnostics", r.name)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, base)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{r.name}.Sanitize()+" WITH (FORCE)"); err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}
