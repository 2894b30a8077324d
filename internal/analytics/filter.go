//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analytics

import (
	"strings"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// Note records a dimension or clause that could not be honored because the
// loaded data lacks a column.
type Note struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func missingColumnClause(column string) Note {
	return Note{Field: column, Message: column + " column is absent; the filter matches no rows"}
}

// filterCustomers applies the customer-level clauses in order: gender, age
// range, area. A clause on an absent column matches nothing.
func filterCustomers(snap *dataset.Snapshot, p DashboardParams) ([]dataset.Customer, []Note) {
	var notes []Note
	keepNone := false

	if p.Gender != "" && !snap.Has(schema.Customers, schema.ColSex) {
		notes = append(notes, missingColumnClause(schema.ColSex))
		keepNone = true
	}
	if (p.MinAge != nil || p.MaxAge != nil) && !snap.Has(schema.Customers, schema.ColAge) {
		notes = append(notes, missingColumnClause(schema.ColAge))
		keepNone = true
	}
	if p.Area != "" && !snap.Has(schema.Customers, schema.ColArea) {
		notes = append(notes, missingColumnClause(schema.ColArea))
		keepNone = true
	}
	if keepNone {
		return []dataset.Customer{}, notes
	}

	gender := dataset.NormalizeKey(p.Gender)
	area := CanonicalArea(p.Area)

	out := make([]dataset.Customer, 0, len(snap.Customers))
	for _, c := range snap.Customers {
		if gender != "" && !strings.EqualFold(c.Sex, gender) {
			continue
		}
		if p.MinAge != nil && (c.Age == nil || *c.Age < *p.MinAge) {
			continue
		}
		if p.MaxAge != nil && (c.Age == nil || *c.Age > *p.MaxAge) {
			continue
		}
		if area != "" && CanonicalArea(c.Area) != area {
			continue
		}
		out = append(out, c)
	}
	return out, notes
}

// filterItems applies the item-level clauses to a copy of the item view.
// The input slice is not modified.
func filterItems(snap *dataset.Snapshot, items []ItemMetrics, p StockParams) ([]ItemMetrics, []Note) {
	var notes []Note
	keepNone := false

	if p.ItemName != "" && !snap.Has(schema.Items, schema.ColItemName) {
		notes = append(notes, missingColumnClause(schema.ColItemName))
		keepNone = true
	}
	if p.ItemCategory != "" && !hasCategory(snap) {
		notes = append(notes, missingColumnClause(schema.ColItemCategory))
		keepNone = true
	}
	if keepNone {
		return []ItemMetrics{}, notes
	}

	code := strings.ToLower(p.ItemCode)
	name := strings.ToLower(p.ItemName)

	out := make([]ItemMetrics, 0, len(items))
	for _, m := range items {
		if code != "" && !strings.Contains(strings.ToLower(m.ItemCode), code) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(m.ItemName), name) {
			continue
		}
		if p.ItemCategory != "" && m.ItemCategory != p.ItemCategory {
			continue
		}
		if p.MinStockRatio != nil && (m.StockRatio == nil || *m.StockRatio*100 < *p.MinStockRatio) {
			continue
		}
		if p.MaxStockRatio != nil && (m.StockRatio == nil || *m.StockRatio*100 > *p.MaxStockRatio) {
			continue
		}
		if p.MinOrdered != nil && m.TotalOrdered < float64(*p.MinOrdered) {
			continue
		}
		if p.MaxOrdered != nil && m.TotalOrdered > float64(*p.MaxOrdered) {
			continue
		}
		out = append(out, m)
	}
	return out, notes
}

func hasCategory(snap *dataset.Snapshot) bool {
	return snap.Has(schema.Items, schema.ColItemCategory) || snap.Has(schema.Orders, schema.ColItemCategory)
}
