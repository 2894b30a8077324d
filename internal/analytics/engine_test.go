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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// table turns a header row plus data rows into a raw table.
func table(name string, rows ...[]string) *schema.RawTable {
	return &schema.RawTable{Name: name, Columns: rows[0], Rows: rows[1:]}
}

func build(t *testing.T, customers, orders, items *schema.RawTable) *dataset.Snapshot {
	t.Helper()
	snap, err := dataset.Build(map[schema.Kind]*schema.RawTable{
		schema.Customers: customers,
		schema.Orders:    orders,
		schema.Items:     items,
	})
	require.NoError(t, err)
	return snap
}

var orderHeader = []string{"customer_id", "order_date", "order_no", "item_code", "order_quantity", "order_price"}

// exampleSnapshot is two customers, one order for item A and the given stock.
func exampleSnapshot(t *testing.T, stock string) *dataset.Snapshot {
	return build(t,
		table("customers",
			[]string{"customer_id", "age", "sex"},
			[]string{"1", "30", "M"},
			[]string{"2", "45", "F"},
		),
		table("orders", orderHeader,
			[]string{"1", "2024-01-01", "O1", "A", "2", "100"},
		),
		table("items",
			[]string{"item", "stock"},
			[]string{"A", stock},
		),
	)
}

func findItem(t *testing.T, items []ItemMetrics, code string) ItemMetrics {
	t.Helper()
	for _, m := range items {
		if m.ItemCode == code {
			return m
		}
	}
	t.Fatalf("item %s not found", code)
	return ItemMetrics{}
}

func TestDashboardExample(t *testing.T) {
	snap := exampleSnapshot(t, "1")

	d := Dashboard(snap, DashboardParams{}, DefaultOptions())
	assert.Equal(t, 2, d.TotalCustomers)
	assert.Equal(t, 100.0, d.TotalSales)
	assert.Equal(t, 50.0, d.AvgSales)
	assert.Empty(t, d.LowStockRisk)

	s := Stock(snap, StockParams{}, DefaultOptions())
	a := findItem(t, s.ItemAnalysis, "A")
	assert.Equal(t, 2.0, a.TotalOrdered)
	require.NotNil(t, a.CurrentStock)
	assert.Equal(t, 1.0, *a.CurrentStock)
	require.NotNil(t, a.StockRatio)
	assert.Equal(t, 0.5, *a.StockRatio)
	assert.Empty(t, s.LowStockRisk)
}

func TestZeroStockIsAtRisk(t *testing.T) {
	snap := exampleSnapshot(t, "0")

	s := Stock(snap, StockParams{}, DefaultOptions())
	require.Len(t, s.LowStockRisk, 1)
	assert.Equal(t, "A", s.LowStockRisk[0].ItemCode)
	assert.Equal(t, 0.0, s.LowStockRisk[0].Ratio())
}

func TestZeroOrderCustomer(t *testing.T) {
	snap := exampleSnapshot(t, "1")

	d := Dashboard(snap, DashboardParams{}, DefaultOptions())
	require.Len(t, d.TopBySpend, 2)

	var idle CustomerMetrics
	for _, m := range d.TopBySpend {
		if m.ID == "2" {
			idle = m
		}
	}
	assert.Equal(t, "2", idle.ID)
	assert.Equal(t, 0, idle.PurchaseCount)
	assert.Equal(t, 0.0, idle.TotalSpent)
	assert.Nil(t, idle.LastOrderDate)
}

func TestSafeDivision(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders", orderHeader,
			[]string{"1", "2024-01-01", "O1", "A", "3", "10"},
		),
		table("items",
			[]string{"item_code", "current_stock"},
			[]string{"A", "100"},
			[]string{"B", "0"},
			[]string{"C", "25"},
		),
	)

	s := Stock(snap, StockParams{}, DefaultOptions())
	for _, m := range s.ItemAnalysis {
		if m.TotalOrdered == 0 {
			require.NotNil(t, m.StockRatio, m.ItemCode)
			assert.Equal(t, 0.0, *m.StockRatio, m.ItemCode)
		}
	}
	for _, m := range s.LowStockRisk {
		assert.Greater(t, m.TotalOrdered, 0.0)
	}
	assert.Equal(t, []string{"A", "B", "C"}, codes(s.ItemAnalysis))
	assert.Empty(t, s.LowStockRisk, "B has stock 0 but no orders")
}

func TestDuplicateCatalogRows(t *testing.T) {
	customers := table("customers", []string{"customer_id"}, []string{"1"})
	orders := table("orders", orderHeader,
		[]string{"1", "2024-01-01", "O1", "A", "4", "10"},
		[]string{"1", "2024-01-02", "O2", "A", "6", "10"},
	)

	once := build(t, customers, orders, table("items",
		[]string{"item_code", "current_stock"},
		[]string{"A", "1"},
	))
	twice := build(t, customers, orders, table("items",
		[]string{"item_code", "current_stock"},
		[]string{"A", "1"},
		[]string{"A", "3"},
	))

	a1 := findItem(t, Stock(once, StockParams{}, DefaultOptions()).ItemAnalysis, "A")
	a2 := findItem(t, Stock(twice, StockParams{}, DefaultOptions()).ItemAnalysis, "A")
	assert.Equal(t, a1.TotalOrdered, a2.TotalOrdered)
	assert.Equal(t, 10.0, a2.TotalOrdered)
	require.NotNil(t, a2.CurrentStock)
	assert.Equal(t, 3.0, *a2.CurrentStock, "stock resolves to the max")
}

func TestDuplicateOrderLines(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders", orderHeader,
			[]string{"1", "2024-01-01", "O1", "A", "2", "100"},
			[]string{"1", "2024-01-01", "O1", "A", "2", "100"},
			[]string{"1", "2024-01-01", "O1", "B", "1", "50"},
		),
		table("items", []string{"item_code", "current_stock"}, []string{"A", "5"}, []string{"B", "5"}),
	)

	d := Dashboard(snap, DashboardParams{}, DefaultOptions())
	assert.Equal(t, 150.0, d.TotalSales)
	assert.Equal(t, 2, d.TopByFrequency[0].PurchaseCount)

	a := findItem(t, Stock(snap, StockParams{}, DefaultOptions()).ItemAnalysis, "A")
	assert.Equal(t, 2.0, a.TotalOrdered)
}

func TestNoOrderNumberKeepsEveryLine(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders",
			[]string{"customer_id", "order_date", "item_code", "order_quantity", "order_price"},
			[]string{"1", "2024-01-01", "A", "2", "100"},
			[]string{"1", "2024-01-01", "A", "2", "100"},
		),
		table("items", []string{"item_code", "current_stock"}, []string{"A", "5"}),
	)

	a := findItem(t, Stock(snap, StockParams{}, DefaultOptions()).ItemAnalysis, "A")
	assert.Equal(t, 4.0, a.TotalOrdered)
}

func TestUnknownStockRatio(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders", orderHeader,
			[]string{"1", "2024-01-01", "O1", "A", "2", "100"},
			[]string{"1", "2024-01-01", "O1", "Z", "2", "100"},
		),
		table("items", []string{"item_code", "current_stock"}, []string{"A", ""}),
	)

	s := Stock(snap, StockParams{}, DefaultOptions())
	a := findItem(t, s.ItemAnalysis, "A")
	assert.Nil(t, a.CurrentStock)
	assert.Nil(t, a.StockRatio)

	z := findItem(t, s.ItemAnalysis, "Z")
	assert.Equal(t, 2.0, z.TotalOrdered, "unmatched orders are still counted")
	assert.Nil(t, z.StockRatio)
	assert.Empty(t, s.LowStockRisk)

	limit := 100.0
	f := Stock(snap, StockParams{MaxStockRatio: &limit}, DefaultOptions())
	assert.Empty(t, f.ItemAnalysis)
}

func TestLowStockRanking(t *testing.T) {
	items := [][]string{{"item_code", "current_stock"}}
	orders := [][]string{orderHeader}
	// ratios 0.09, 0.08, ..., 0.02, 0.01
	for i := 1; i <= 9; i++ {
		code := string(rune('A' + i - 1))
		items = append(items, []string{code, itoa(10 - i)})
		orders = append(orders, []string{"1", "2024-01-01", "O" + code, code, "100", "1"})
	}
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders", orders...),
		table("items", items...),
	)

	s := Stock(snap, StockParams{}, DefaultOptions())
	require.Len(t, s.LowStockRisk, 5)
	assert.Equal(t, []string{"I", "H", "G", "F", "E"}, codes(s.LowStockRisk))

	s = Stock(snap, StockParams{}, Options{LowStockThreshold: 0.05, LowStockLimit: 2})
	assert.Equal(t, []string{"I", "H"}, codes(s.LowStockRisk))
}

func TestStockRatioBoundaryInclusive(t *testing.T) {
	snap := exampleSnapshot(t, "1")

	fifty := 50.0
	s := Stock(snap, StockParams{MinStockRatio: &fifty}, DefaultOptions())
	assert.Equal(t, []string{"A"}, codes(s.ItemAnalysis))

	s = Stock(snap, StockParams{MaxStockRatio: &fifty}, DefaultOptions())
	assert.Equal(t, []string{"A"}, codes(s.ItemAnalysis))

	above := 50.01
	s = Stock(snap, StockParams{MinStockRatio: &above}, DefaultOptions())
	assert.Empty(t, s.ItemAnalysis)
	assert.Len(t, s.LowStockRisk, 0)
}

func TestItemFilters(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders",
			[]string{"customerid", "orderdate", "orderno", "orderitem", "orderitemcate", "ordernum", "orderprice"},
			[]string{"1", "2024-01-01", "1", "AB-100", "food", "5", "10"},
			[]string{"1", "2024-01-01", "1", "ab-200", "drink", "20", "10"},
			[]string{"1", "2024-01-01", "1", "CD-300", "food", "50", "10"},
		),
		table("items",
			[]string{"item", "itemcate", "itemname", "stock"},
			[]string{"AB-100", "food", "Green Tea Bun", "1"},
			[]string{"ab-200", "drink", "Green Tea", "100"},
			[]string{"CD-300", "food", "Rice Ball", "10"},
		),
	)

	tests := []struct {
		name   string
		params StockParams
		want   []string
	}{
		{"none", StockParams{}, []string{"AB-100", "CD-300", "ab-200"}},
		{"code substring", StockParams{ItemCode: "Ab"}, []string{"AB-100", "ab-200"}},
		{"name substring", StockParams{ItemName: "green tea"}, []string{"AB-100", "ab-200"}},
		{"category", StockParams{ItemCategory: "food"}, []string{"AB-100", "CD-300"}},
		{"min ordered", StockParams{MinOrdered: intp(20)}, []string{"CD-300", "ab-200"}},
		{"max ordered", StockParams{MaxOrdered: intp(20)}, []string{"AB-100", "ab-200"}},
		{"combined", StockParams{ItemCategory: "food", MaxOrdered: intp(5)}, []string{"AB-100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stock(snap, tt.params, DefaultOptions())
			assert.Equal(t, tt.want, codes(s.ItemAnalysis))
			assert.Equal(t, []string{"drink", "food"}, s.Categories)
			assert.Empty(t, s.Notes)
		})
	}

	base := Stock(snap, StockParams{}, DefaultOptions())
	filtered := Stock(snap, StockParams{ItemCode: "zzz"}, DefaultOptions())
	assert.Equal(t, base.LowStockRisk, filtered.LowStockRisk, "search never narrows the risk ranking")
}

func TestCategoryJoin(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders",
			[]string{"customer_id", "order_date", "order_no", "item_code", "item_category", "order_quantity", "order_price"},
			[]string{"1", "2024-01-01", "1", "A", "x", "10", "1"},
			[]string{"1", "2024-01-02", "2", "A", "y", "10", "1"},
		),
		table("items",
			[]string{"item_code", "item_category", "current_stock"},
			[]string{"A", "x", "0"},
			[]string{"A", "y", "50"},
		),
	)

	s := Stock(snap, StockParams{}, DefaultOptions())
	require.Len(t, s.ItemAnalysis, 2)
	assert.Equal(t, "x", s.ItemAnalysis[0].ItemCategory)
	assert.Equal(t, 0.0, s.ItemAnalysis[0].Ratio())
	assert.Equal(t, 5.0, s.ItemAnalysis[1].Ratio())
	require.Len(t, s.LowStockRisk, 1)
	assert.Equal(t, "x", s.LowStockRisk[0].ItemCategory)
}

func TestCategoryFromOrdersOnly(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders",
			[]string{"customerid", "orderdate", "orderno", "orderitem", "orderitemcate", "ordernum", "orderprice"},
			[]string{"1", "2024-01-01", "1", "A", "food", "2", "10"},
		),
		table("items",
			[]string{"item", "stock"},
			[]string{"A", "1"},
			[]string{"B", "5"},
		),
	)

	s := Stock(snap, StockParams{}, DefaultOptions())
	assert.Equal(t, "food", findItem(t, s.ItemAnalysis, "A").ItemCategory)
	assert.Equal(t, "", findItem(t, s.ItemAnalysis, "B").ItemCategory)
	assert.Equal(t, []string{"food"}, s.Categories)

	s = Stock(snap, StockParams{ItemCategory: "food"}, DefaultOptions())
	require.Len(t, s.ItemAnalysis, 1)
	assert.Equal(t, "A", s.ItemAnalysis[0].ItemCode)
	assert.Equal(t, 2.0, s.ItemAnalysis[0].TotalOrdered)
}

func TestCatalogNamesFoldCase(t *testing.T) {
	snap := build(t,
		table("customers", []string{"customer_id"}, []string{"1"}),
		table("orders", orderHeader,
			[]string{"1", "2024-01-01", "O1", "A", "2", "10"},
		),
		table("items",
			[]string{"item_code", "item_name", "current_stock"},
			[]string{"A", "apple", "1"},
			[]string{"A", "Apple ", "9"},
		),
	)

	s := Stock(snap, StockParams{}, DefaultOptions())
	require.Len(t, s.ItemAnalysis, 1)
	a := s.ItemAnalysis[0]
	assert.Equal(t, "apple", a.ItemName, "first spelling is kept")
	assert.Equal(t, 2.0, a.TotalOrdered)
	require.NotNil(t, a.CurrentStock)
	assert.Equal(t, 9.0, *a.CurrentStock)
	assert.Equal(t, 4.5, a.Ratio())
}

func TestMissingOptionalItemColumns(t *testing.T) {
	snap := exampleSnapshot(t, "1")

	s := Stock(snap, StockParams{ItemName: "tea"}, DefaultOptions())
	assert.Empty(t, s.ItemAnalysis)
	assert.Contains(t, noteFields(s.Notes), schema.ColItemName)
	assert.Contains(t, noteFields(s.Notes), schema.ColItemCategory)
	assert.NotNil(t, s.LowStockRisk)

	s = Stock(snap, StockParams{}, DefaultOptions())
	assert.Len(t, s.ItemAnalysis, 1, "unqueried clauses are skipped")
	assert.Empty(t, s.Categories)
}

func codes(items []ItemMetrics) []string {
	out := []string{}
	for _, m := range items {
		out = append(out, m.ItemCode)
	}
	return out
}

func noteFields(notes []Note) []string {
	var out []string
	for _, n := range notes {
		out = append(out, n.Field)
	}
	return out
}

func intp(v int) *int { return &v }

func itoa(v int) string {
	return string(rune('0' + v))
}

func TestCustomerDetail(t *testing.T) {
	snap := build(t,
		table("customers",
			[]string{"customer_id", "name"},
			[]string{"1", "Sato"},
		),
		table("orders", orderHeader,
			[]string{"1", "2024-03-01", "O3", "A", "1", "30"},
			[]string{"1", "2024-01-01", "O1", "A", "1", "10"},
			[]string{"1", "2024-02-01", "O2", "A", "1", "20"},
			[]string{"1", "2024-02-01", "O2", "A", "1", "20"},
			[]string{"9", "2024-02-01", "O9", "A", "1", "99"},
		),
		table("items", []string{"item_code", "current_stock"}, []string{"A", "1"}),
	)

	v, err := CustomerDetail(snap, "1.0")
	require.NoError(t, err)
	require.NotNil(t, v.Customer)
	assert.Equal(t, "Sato", v.Customer.Name)
	assert.Equal(t, 3, v.TotalOrders)
	assert.Equal(t, 60.0, v.TotalSpent)
	require.Len(t, v.OrderHistory, 3)
	assert.Equal(t, "O1", v.OrderHistory[0].OrderNo)
	assert.Equal(t, "O3", v.OrderHistory[2].OrderNo)
	assert.True(t, v.LastOrderDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	v, err = CustomerDetail(snap, "9")
	require.NoError(t, err)
	assert.Nil(t, v.Customer, "orders without a master record still have history")

	_, err = CustomerDetail(snap, "42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "42", nf.CustomerID)
}
