//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		kind   Kind
		column string
		want   string
	}{
		{Orders, "OrderItem", ColItemCode},
		{Items, "item", ColItemCode},
		{Orders, "orderitemcate", ColItemCategory},
		{Orders, "CustomerID", ColCustomerID},
		{Orders, "OrderDate", ColOrderDate},
		{Orders, "OrderNo", ColOrderNo},
		{Orders, "OrderNum", ColOrderQuantity},
		{Orders, "OrderPrice", ColOrderPrice},
		{Items, "Stock", ColCurrentStock},
		{Items, "ItemName", ColItemName},
		{Customers, "\ufeffCustomerID", ColCustomerID},
		{Customers, " Customer ID ", ColCustomerID},
		{Customers, "Gender", ColSex},
		{Customers, "Area", ColArea},
		{Customers, "Nickname", "nickname"},
		// order-only synonyms do not leak into other tables
		{Items, "price", "price"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.column, func(t *testing.T) {
			got := Canonical(tt.kind, tt.column)
			if got != tt.want {
				t.Errorf("Canonical(%s, %q) = %q, expected %q", tt.kind, tt.column, got, tt.want)
			}
		})
	}
}

func TestNormalizeOrders(t *testing.T) {
	raw := &RawTable{
		Name:    "order.csv",
		Columns: []string{"CustomerID", "OrderDate", "OrderNo", "OrderItem", "OrderNum", "OrderPrice"},
		Rows: [][]string{
			{"1", "2024-01-01", "A1", "X", "2", "100"},
			{"2", "2024-01-02", "A2"}, // ragged
		},
	}

	tbl, err := Normalize(Orders, raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := []string{ColCustomerID, ColOrderDate, ColOrderNo, ColItemCode, ColOrderQuantity, ColOrderPrice}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Expected columns %v, got %v", want, tbl.Columns)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", tbl.Len())
	}
	if got := tbl.Value(0, ColItemCode); got != "X" {
		t.Errorf("Expected item_code X, got %q", got)
	}
	if got := tbl.Value(1, ColOrderPrice); got != "" {
		t.Errorf("Expected padded empty cell, got %q", got)
	}
	if tbl.Has(ColItemCategory) {
		t.Error("item_category should be absent")
	}
	if tbl.Value(0, ColItemCategory) != "" {
		t.Error("Value of an absent column should be empty")
	}
}

func TestNormalizeMissingRequired(t *testing.T) {
	raw := &RawTable{
		Name:    "order.csv",
		Columns: []string{"customerid", "orderitem"},
	}

	_, err := Normalize(Orders, raw)
	if err == nil {
		t.Fatal("Expected schema error, got nil")
	}
	if !errors.Is(err, ErrSchema) {
		t.Errorf("Expected errors.Is(err, ErrSchema), got %v", err)
	}

	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *SchemaError, got %T", err)
	}
	want := []string{ColOrderDate, ColOrderPrice, ColOrderQuantity}
	if !reflect.DeepEqual(se.Missing, want) {
		t.Errorf("Expected missing %v, got %v", want, se.Missing)
	}
}

func TestNormalizeOptionalColumnsAbsent(t *testing.T) {
	raw := &RawTable{Columns: []string{"item", "stock"}, Rows: [][]string{{"A", "1"}}}

	tbl, err := Normalize(Items, raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for _, col := range []string{ColItemName, ColItemCategory} {
		if tbl.Has(col) {
			t.Errorf("%s should be absent", col)
		}
	}
}

func TestNormalizeDuplicateColumns(t *testing.T) {
	raw := &RawTable{
		Columns: []string{"item", "ItemCode", "stock"},
		Rows:    [][]string{{"A", "B", "3"}},
	}

	tbl, err := Normalize(Items, raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := tbl.Value(0, ColItemCode); got != "A" {
		t.Errorf("First duplicate should win, got %q", got)
	}
	if !reflect.DeepEqual(tbl.Dropped, []string{"ItemCode"}) {
		t.Errorf("Expected ItemCode dropped, got %v", tbl.Dropped)
	}
}

func TestNormalizeNil(t *testing.T) {
	_, err := Normalize(Customers, nil)
	if !errors.Is(err, ErrSchema) {
		t.Errorf("Expected schema error for nil table, got %v", err)
	}
}
