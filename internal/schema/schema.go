//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema canonicalizes the column layout of raw customer, order and
// item/stock tables into the stable internal schema used by the analytics
// engine.
package schema

// Kind identifies one of the three input datasets.
type Kind string

const (
	// Customers is the customer master table.
	Customers Kind = "customers"

	// Orders is the order line table.
	Orders Kind = "orders"

	// Items is the item catalog with stock snapshots.
	Items Kind = "items"
)

// Kinds returns the dataset kinds in load order.
func Kinds() []Kind {
	return []Kind{Customers, Orders, Items}
}

// Canonical column names.
const (
	ColCustomerID    = "customer_id"
	ColName          = "name"
	ColAge           = "age"
	ColSex           = "sex"
	ColArea          = "area"
	ColOrderDate     = "order_date"
	ColOrderNo       = "order_no"
	ColItemCode      = "item_code"
	ColItemCategory  = "item_category"
	ColItemName      = "item_name"
	ColOrderQuantity = "order_quantity"
	ColOrderPrice    = "order_price"
	ColCurrentStock  = "current_stock"
)

// RawTable is a decoded tabular input as supplied by a loader: a header row
// and string cells. Rows may be ragged.
type RawTable struct {
	// Name identifies the origin (file, sheet or table name).
	Name string

	// Columns holds the header cells as found in the source.
	Columns []string

	// Rows holds the data cells.
	Rows [][]string
}

// Table is a normalized table whose columns carry canonical names.
// A Table is read-only after Normalize returns it.
type Table struct {
	// Kind is the dataset this table was normalized as.
	Kind Kind

	// Name is the origin of the raw table.
	Name string

	// Columns holds canonical column names in source order.
	Columns []string

	// Dropped lists source columns ignored because an earlier column
	// already mapped to the same canonical name.
	Dropped []string

	// Rows holds cells projected onto Columns.
	Rows [][]string

	index map[string]int
}

// Has reports whether the table carries the canonical column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Index returns the position of a canonical column, or -1.
func (t *Table) Index(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell for the given row and canonical column, or an
// empty string when the column is absent.
func (t *Table) Value(row int, column string) string {
	i, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}
