//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analytics aggregates customer, order and item snapshots into the
// dashboard, stock and customer detail views. Every entry point is a pure
// function of an immutable snapshot and its parameters.
package analytics

// Default tuning values.
const (
	DefaultTopN              = 10
	DefaultLowStockThreshold = 0.1
	DefaultLowStockLimit     = 5
)

// Options tunes the ranking steps.
type Options struct {
	// TopN bounds the top-by-frequency and top-by-spend rankings.
	TopN int

	// LowStockThreshold is the stock ratio below which an item with
	// orders is considered at risk.
	LowStockThreshold float64

	// LowStockLimit bounds the low-stock risk ranking.
	LowStockLimit int
}

// DefaultOptions returns the default ranking options.
func DefaultOptions() Options {
	return Options{
		TopN:              DefaultTopN,
		LowStockThreshold: DefaultLowStockThreshold,
		LowStockLimit:     DefaultLowStockLimit,
	}
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = DefaultLowStockThreshold
	}
	if o.LowStockLimit <= 0 {
		o.LowStockLimit = DefaultLowStockLimit
	}
	return o
}
