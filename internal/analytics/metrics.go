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
	"sort"
	"time"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
)

// CustomerMetrics is a customer together with its purchase KPIs.
type CustomerMetrics struct {
	dataset.Customer

	PurchaseCount int        `json:"purchase_count"`
	TotalSpent    float64    `json:"total_spent"`
	LastOrderDate *time.Time `json:"last_order_date"`
}

// ItemMetrics holds the demand and stock figures of one item group.
type ItemMetrics struct {
	ItemCode     string   `json:"item_code"`
	ItemCategory string   `json:"item_category,omitempty"`
	ItemName     string   `json:"item_name,omitempty"`
	TotalOrdered float64  `json:"total_ordered"`
	CurrentStock *float64 `json:"current_stock"`

	// StockRatio is CurrentStock / TotalOrdered, zero when nothing was
	// ordered and nil when orders exist but the stock is unknown.
	StockRatio *float64 `json:"stock_ratio"`
}

// Ratio returns the stock ratio, or 0 when it is unknown.
func (m ItemMetrics) Ratio() float64 {
	if m.StockRatio == nil {
		return 0
	}
	return *m.StockRatio
}

// customerMetrics computes KPIs for every customer, in customer order.
// Orders must already be restricted and deduplicated.
func customerMetrics(customers []dataset.Customer, orders []dataset.Order) []CustomerMetrics {
	index := make(map[string]int, len(customers))
	out := make([]CustomerMetrics, len(customers))
	for i, c := range customers {
		index[c.ID] = i
		out[i].Customer = c
	}

	for _, o := range orders {
		i, ok := index[o.CustomerID]
		if !ok {
			continue
		}
		m := &out[i]
		m.PurchaseCount++
		m.TotalSpent += o.Price
		if m.LastOrderDate == nil || o.OrderDate.After(*m.LastOrderDate) {
			d := o.OrderDate
			m.LastOrderDate = &d
		}
	}
	return out
}

// itemMetrics joins deduplicated orders onto the catalog and sums demand
// per item group. Catalog groups without orders are kept with zero demand.
// The result is sorted by code, category and name.
func itemMetrics(snap *dataset.Snapshot, orders []dataset.Order) []ItemMetrics {
	cat := newCatalog(snap)

	var totals []float64
	for _, o := range orders {
		g := cat.resolve(o)
		for len(totals) <= g {
			totals = append(totals, 0)
		}
		totals[g] += o.Quantity
	}
	for len(totals) < len(cat.keys) {
		totals = append(totals, 0)
	}

	out := make([]ItemMetrics, len(cat.keys))
	for g, k := range cat.keys {
		out[g] = ItemMetrics{
			ItemCode:     k.Code,
			ItemCategory: k.Category,
			ItemName:     k.Name,
			TotalOrdered: totals[g],
			CurrentStock: copyFloat(cat.stock[g]),
			StockRatio:   stockRatio(cat.stock[g], totals[g]),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ItemCode != b.ItemCode {
			return a.ItemCode < b.ItemCode
		}
		if a.ItemCategory != b.ItemCategory {
			return a.ItemCategory < b.ItemCategory
		}
		return a.ItemName < b.ItemName
	})
	return out
}

// stockRatio divides stock by demand. No demand means no risk, so the
// ratio is zero whatever the stock.
func stockRatio(stock *float64, totalOrdered float64) *float64 {
	if totalOrdered <= 0 {
		zero := 0.0
		return &zero
	}
	if stock == nil {
		return nil
	}
	r := *stock / totalOrdered
	return &r
}

// safeDiv returns a/b, or 0 when b is zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
