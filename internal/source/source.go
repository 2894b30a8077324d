//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source loads the raw customer, order and item tables from files
// or databases.
package source

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// Source reads one raw table per dataset kind.
type Source interface {
	// Name returns the source type.
	Name() string

	// Load reads the raw table of the given kind. It must be safe to
	// call for different kinds concurrently.
	Load(ctx context.Context, kind schema.Kind) (*schema.RawTable, error)
}

// Options configures a source.
type Options struct {
	// Path is the data directory (csv), workbook (xlsx) or database
	// file (sqlite).
	Path string

	// Connection is the connection string for server databases.
	Connection string

	// Names overrides the file, sheet or table name per kind.
	Names map[schema.Kind]string
}

func (o Options) name(kind schema.Kind, defaults map[schema.Kind]string) string {
	if n := o.Names[kind]; n != "" {
		return n
	}
	return defaults[kind]
}

// Factory creates a source from options.
type Factory func(opts Options) (Source, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds a source factory to the registry.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// New creates a source by type name.
func New(name string, opts Options) (Source, error) {
	mu.RLock()
	factory, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source type: %s", name)
	}
	return factory(opts)
}

// List returns all registered source types, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAll reads the three datasets concurrently. The first failure cancels
// the remaining loads.
func LoadAll(ctx context.Context, src Source) (map[schema.Kind]*schema.RawTable, error) {
	kinds := schema.Kinds()
	tables := make([]*schema.RawTable, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			t, err := src.Load(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", kind, err)
			}
			logging.Debug().
				Str("source", src.Name()).
				Str("table", t.Name).
				Int("rows", len(t.Rows)).
				Msg("Loaded table")
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[schema.Kind]*schema.RawTable, len(kinds))
	for i, kind := range kinds {
		out[kind] = tables[i]
	}
	return out, nil
}

// Loader adapts a source to the dataset store.
func Loader(src Source) dataset.Loader {
	return func(ctx context.Context) (map[schema.Kind]*schema.RawTable, error) {
		return LoadAll(ctx, src)
	}
}

// Close releases the resources of sources that hold any.
func Close(src Source) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkIdent rejects table names that would need quoting.
func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

func init() {
	Register("csv", NewCSV)
	Register("xlsx", NewXLSX)
	Register("sqlite", NewSQLite)
	Register("mysql", NewMySQL)
	Register("postgres", NewPostgres)
}
