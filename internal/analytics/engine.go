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
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// DashboardSummary is the customer-facing dashboard view.
type DashboardSummary struct {
	TotalCustomers   int                `json:"total_customers"`
	TotalSales       float64            `json:"total_sales"`
	AvgSales         float64            `json:"avg_sales"`
	TopByFrequency   []CustomerMetrics  `json:"top_by_frequency"`
	TopBySpend       []CustomerMetrics  `json:"top_by_spend"`
	AreaSummary      []AreaSummary      `json:"area_summary"`
	AgeGenderSummary []AgeGenderSummary `json:"age_gender_summary"`
	LowStockRisk     []ItemMetrics      `json:"low_stock_risk"`
	Filters          DashboardParams    `json:"filters"`
	Notes            []Note             `json:"notes,omitempty"`
}

// StockView is the inventory view.
type StockView struct {
	LowStockRisk []ItemMetrics `json:"low_stock_risk"`
	ItemAnalysis []ItemMetrics `json:"item_analysis"`
	Categories   []string      `json:"categories"`
	Filters      StockParams   `json:"filters"`
	Notes        []Note        `json:"notes,omitempty"`
}

// CustomerDetailView is the order history of one customer.
type CustomerDetailView struct {
	// Customer is nil when orders exist for an ID missing from the
	// customer master.
	Customer      *dataset.Customer `json:"customer"`
	OrderHistory  []dataset.Order   `json:"order_history"`
	TotalOrders   int               `json:"total_orders"`
	TotalSpent    float64           `json:"total_spent"`
	LastOrderDate *time.Time        `json:"last_order_date"`
}

// Dashboard restricts customers by the dashboard clauses, aggregates their
// deduplicated orders and ranks and segments the result.
func Dashboard(snap *dataset.Snapshot, p DashboardParams, opts Options) *DashboardSummary {
	opts = opts.withDefaults()

	customers, notes := filterCustomers(snap, p)
	ids := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		ids[c.ID] = struct{}{}
	}
	orders := dedupOrders(snap, restrictOrders(snap.Orders, ids))

	metrics := customerMetrics(customers, orders)
	var total float64
	for _, m := range metrics {
		total += m.TotalSpent
	}

	s := &DashboardSummary{
		TotalCustomers:   len(ids),
		TotalSales:       total,
		AvgSales:         safeDiv(total, float64(len(ids))),
		TopByFrequency:   topBy(metrics, opts.TopN, byPurchaseCount),
		TopBySpend:       topBy(metrics, opts.TopN, byTotalSpent),
		AreaSummary:      []AreaSummary{},
		AgeGenderSummary: []AgeGenderSummary{},
		LowStockRisk:     lowStockRisk(itemMetrics(snap, orders), opts),
		Filters:          p,
		Notes:            notes,
	}

	if snap.Has(schema.Customers, schema.ColArea) {
		s.AreaSummary = areaSummary(metrics)
	} else {
		s.Notes = append(s.Notes, Note{Field: schema.ColArea, Message: "area column is absent; area summary omitted"})
	}

	for _, col := range []string{schema.ColAge, schema.ColSex} {
		if !snap.Has(schema.Customers, col) {
			s.Notes = append(s.Notes, Note{Field: col, Message: col + " column is absent; age and gender summary omitted"})
		}
	}
	if snap.Has(schema.Customers, schema.ColAge) && snap.Has(schema.Customers, schema.ColSex) {
		s.AgeGenderSummary = ageGenderSummary(metrics)
	}

	return s
}

// Stock computes item metrics over every deduplicated order. The risk
// ranking and category list are taken from the unfiltered metrics; the
// search clauses only narrow item_analysis.
func Stock(snap *dataset.Snapshot, p StockParams, opts Options) *StockView {
	opts = opts.withDefaults()

	items := itemMetrics(snap, dedupOrders(snap, snap.Orders))
	filtered, notes := filterItems(snap, items, p)

	v := &StockView{
		LowStockRisk: lowStockRisk(items, opts),
		ItemAnalysis: filtered,
		Categories:   categories(items),
		Filters:      p,
		Notes:        notes,
	}

	if !snap.Has(schema.Items, schema.ColItemName) {
		v.Notes = append(v.Notes, Note{Field: schema.ColItemName, Message: "item_name column is absent; items are grouped by code only"})
	}
	if !hasCategory(snap) {
		v.Notes = append(v.Notes, Note{Field: schema.ColItemCategory, Message: "item_category column is absent; category list omitted"})
	}
	return v
}

// CustomerDetail returns the deduplicated order history of one customer,
// oldest first. It fails with *NotFoundError when the customer has no
// orders.
func CustomerDetail(snap *dataset.Snapshot, customerID string) (*CustomerDetailView, error) {
	id := dataset.NormalizeKey(customerID)

	orders := dedupOrders(snap, restrictOrders(snap.Orders, map[string]struct{}{id: {}}))
	if len(orders) == 0 {
		return nil, &NotFoundError{CustomerID: id}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.Before(orders[j].OrderDate)
	})

	v := &CustomerDetailView{
		OrderHistory: orders,
		TotalOrders:  len(orders),
	}
	if c, ok := snap.Customer(id); ok {
		v.Customer = c
	}
	for _, o := range orders {
		v.TotalSpent += o.Price
	}
	last := orders[len(orders)-1].OrderDate
	v.LastOrderDate = &last

	return v, nil
}

func categories(items []ItemMetrics) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range items {
		if m.ItemCategory == "" {
			continue
		}
		if _, ok := seen[m.ItemCategory]; ok {
			continue
		}
		seen[m.ItemCategory] = struct{}{}
		out = append(out, m.ItemCategory)
	}
	sort.Strings(out)
	return out
}
