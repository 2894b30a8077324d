package datagen

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Customers = 40
	cfg.Items = 15
	cfg.Orders = 300
	cfg.Seed = 7
	cfg.DuplicateRate = 0.2
	cfg.LowStockRate = 0.3
	return cfg
}

func TestGenerate(t *testing.T) {
	tables, err := Generate(context.Background(), smallConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if n := len(tables[schema.Customers].Rows); n != 40 {
		t.Errorf("Expected 40 customers, got %d", n)
	}
	if n := len(tables[schema.Orders].Rows); n < 300 {
		t.Errorf("Expected at least 300 order lines, got %d", n)
	}

	snap, err := dataset.Build(tables)
	if err != nil {
		t.Fatalf("Generated data does not decode: %v", err)
	}
	if len(snap.Warnings) > 0 {
		t.Errorf("Unexpected warnings: %v", snap.Warnings)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, o := range snap.Orders {
		if o.OrderDate.Before(start) || o.OrderDate.After(end) {
			t.Fatalf("Order date %v outside range", o.OrderDate)
		}
	}

	// duplicated lines and catalog rows must not inflate the stock view
	s := analytics.Stock(snap, analytics.StockParams{}, analytics.DefaultOptions())
	if len(s.ItemAnalysis) != 15 {
		t.Errorf("Expected 15 item groups, got %d", len(s.ItemAnalysis))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(context.Background(), smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(context.Background(), smallConfig())
	if err != nil {
		t.Fatal(err)
	}

	ra, rb := a[schema.Orders].Rows, b[schema.Orders].Rows
	if len(ra) != len(rb) {
		t.Fatalf("Same seed produced %d and %d order lines", len(ra), len(rb))
	}
	for i := range ra {
		for j := range ra[i] {
			if ra[i][j] != rb[i][j] {
				t.Fatalf("Row %d differs: %v vs %v", i, ra[i], rb[i])
			}
		}
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Customers = 0
	if _, err := Generate(context.Background(), cfg); err == nil {
		t.Error("Expected error for zero customers")
	}

	cfg = smallConfig()
	cfg.Profile = "nope"
	if _, err := Generate(context.Background(), cfg); err == nil {
		t.Error("Expected error for unknown profile")
	}

	cfg = smallConfig()
	cfg.End = cfg.Start.AddDate(0, 0, -1)
	if _, err := Generate(context.Background(), cfg); err == nil {
		t.Error("Expected error for inverted date range")
	}
}

func TestWriteAndReadBack(t *testing.T) {
	tables, err := Generate(context.Background(), smallConfig())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := WriteCSV(dir, tables); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	xlsxPath := filepath.Join(dir, "retail.xlsx")
	if err := WriteXLSX(xlsxPath, tables); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	for name, opts := range map[string]source.Options{
		"csv":  {Path: dir},
		"xlsx": {Path: xlsxPath},
	} {
		src, err := source.New(name, opts)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		raw, err := source.LoadAll(context.Background(), src)
		if err != nil {
			t.Fatalf("%s: LoadAll failed: %v", name, err)
		}
		for _, kind := range schema.Kinds() {
			if got, want := len(raw[kind].Rows), len(tables[kind].Rows); got != want {
				t.Errorf("%s %s: expected %d rows, got %d", name, kind, want, got)
			}
		}
		if _, err := dataset.Build(raw); err != nil {
			t.Errorf("%s: Build failed: %v", name, err)
		}
	}
}
