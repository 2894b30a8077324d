//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// ErrNotLoaded is returned by Current before the first successful Reload.
var ErrNotLoaded = errors.New("dataset not loaded")

// Loader fetches the raw tables for all three datasets.
type Loader func(ctx context.Context) (map[schema.Kind]*schema.RawTable, error)

// Store holds the current snapshot. Readers never block: Reload builds a
// complete new snapshot and swaps it in, and a failed reload leaves the
// previous snapshot in place.
type Store struct {
	name string
	load Loader

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	reloads atomic.Int64
	lastErr atomic.Pointer[error]
}

// NewStore creates a store backed by the given loader.
func NewStore(name string, load Loader) *Store {
	return &Store{name: name, load: load}
}

// Name returns the loader name.
func (s *Store) Name() string {
	return s.name
}

// Current returns the latest snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Set installs a snapshot directly, bypassing the loader.
func (s *Store) Set(snap *Snapshot) {
	s.current.Store(snap)
}

// Reloads returns the number of successful reloads.
func (s *Store) Reloads() int64 {
	return s.reloads.Load()
}

// LastError returns the error of the most recent reload, if it failed.
func (s *Store) LastError() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Reload runs the loader and installs the resulting snapshot. Concurrent
// calls are serialized.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.Component("dataset")
	start := time.Now()

	snap, err := s.build(ctx)
	if err != nil {
		s.lastErr.Store(&err)
		log.Error().Err(err).Str("source", s.name).Msg("Reload failed, keeping previous snapshot")
		return nil, err
	}
	s.lastErr.Store(nil)

	snap.Source = s.name
	s.current.Store(snap)
	s.reloads.Add(1)

	stats := snap.Stats()
	log.Info().
		Str("source", s.name).
		Int("customers", stats[schema.Customers]).
		Int("orders", stats[schema.Orders]).
		Int("items", stats[schema.Items]).
		Int("warnings", len(snap.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("Dataset loaded")
	for _, w := range snap.Warnings {
		log.Warn().Str("source", s.name).Msg(w)
	}

	return snap, nil
}

func (s *Store) build(ctx context.Context) (*Snapshot, error) {
	if s.load == nil {
		return nil, fmt.Errorf("store %s has no loader", s.name)
	}
	raw, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Build(raw)
}
