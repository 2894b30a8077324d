//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the PostgreSQL import and read path.
// Run with: go test -tags=integration ./internal/db/...
// Requires PostgreSQL to be available.
// Set PGEDGE_TEST_CONN environment variable to override connection string.

package db_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/datagen"
	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/db"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
	"github.com/pgEdge/pgedge-retailstats/internal/testutil"
)

// TestImportRoundTrip imports a generated dataset and checks that reading
// it back yields the same dashboard.
func TestImportRoundTrip(t *testing.T) {
	rdb := testutil.NewRetailDB(t, "import")
	pool := rdb.Pool

	ctx := context.Background()

	cfg := datagen.DefaultConfig()
	cfg.Customers = 50
	cfg.Items = 20
	cfg.Orders = 400
	cfg.Seed = 7
	raw, err := datagen.Generate(ctx, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want, err := dataset.Build(raw)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var counts map[schema.Kind]int64
	t.Run("ImportTable", func(t *testing.T) {
		counts = rdb.Seed(t, raw)
		for _, kind := range schema.Kinds() {
			if counts[kind] != int64(len(raw[kind].Rows)) {
				t.Errorf("Expected %d rows in %s, got %d", len(raw[kind].Rows), kind, counts[kind])
			}
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		if err := db.SaveMetadata(ctx, pool, "generated", counts); err != nil {
			t.Fatalf("SaveMetadata failed: %v", err)
		}
		exists, err := db.MetadataExists(ctx, pool)
		if err != nil || !exists {
			t.Fatalf("Expected metadata table to exist, got %v (%v)", exists, err)
		}
		meta, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			t.Fatalf("GetAllMetadata failed: %v", err)
		}
		if meta["source"] != "generated" {
			t.Errorf("Expected source 'generated', got '%s'", meta["source"])
		}
	})

	t.Run("ReadBack", func(t *testing.T) {
		src, err := source.New("postgres", source.Options{Connection: rdb.ConnString})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer func() { _ = source.Close(src) }()

		store := dataset.NewStore(src.Name(), source.Loader(src))
		got, err := store.Reload(ctx)
		if err != nil {
			t.Fatalf("Reload failed: %v", err)
		}

		if !reflect.DeepEqual(got.Stats(), want.Stats()) {
			t.Errorf("Expected row counts %v, got %v", want.Stats(), got.Stats())
		}

		opts := analytics.DefaultOptions()
		wantDash := analytics.Dashboard(want, analytics.DashboardParams{}, opts)
		gotDash := analytics.Dashboard(got, analytics.DashboardParams{}, opts)
		if gotDash.TotalCustomers != wantDash.TotalCustomers {
			t.Errorf("Expected %d customers, got %d", wantDash.TotalCustomers, gotDash.TotalCustomers)
		}
		if gotDash.TotalSales != wantDash.TotalSales {
			t.Errorf("Expected total sales %v, got %v", wantDash.TotalSales, gotDash.TotalSales)
		}
		if !reflect.DeepEqual(gotDash.AreaSummary, wantDash.AreaSummary) {
			t.Errorf("Area summary differs after round trip")
		}
	})

	t.Run("DropTables", func(t *testing.T) {
		if err := db.DropTables(ctx, pool); err != nil {
			t.Fatalf("DropTables failed: %v", err)
		}
		exists, err := db.MetadataExists(ctx, pool)
		if err != nil {
			t.Fatalf("MetadataExists failed: %v", err)
		}
		if exists {
			t.Error("Expected metadata table to be dropped")
		}
	})
}
