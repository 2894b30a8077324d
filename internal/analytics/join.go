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

// orderKey is the composite dedup key of an order line. When the orders
// table has no order_no column, row keeps every line distinct.
type orderKey struct {
	date int64
	no   string
	code string
	row  int
}

// restrictOrders keeps the orders placed by the given customers.
func restrictOrders(orders []dataset.Order, ids map[string]struct{}) []dataset.Order {
	out := make([]dataset.Order, 0, len(orders))
	for _, o := range orders {
		if _, ok := ids[o.CustomerID]; ok {
			out = append(out, o)
		}
	}
	return out
}

// dedupOrders keeps the first line of every (order_date, order_no,
// item_code) triple.
func dedupOrders(snap *dataset.Snapshot, orders []dataset.Order) []dataset.Order {
	byNumber := snap.Has(schema.Orders, schema.ColOrderNo)

	seen := make(map[orderKey]struct{}, len(orders))
	out := make([]dataset.Order, 0, len(orders))
	for _, o := range orders {
		k := orderKey{date: o.OrderDate.UnixNano(), no: o.OrderNo, code: o.ItemCode}
		if !byNumber {
			k.row = o.Row
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}

// itemKey identifies an item group. Category and Name are only populated
// when the catalog carries those columns.
type itemKey struct {
	Code     string
	Category string
	Name     string
}

// fold returns the lookup form of a key. Names that differ only in case or
// surrounding space name the same item.
func (k itemKey) fold() itemKey {
	k.Name = strings.ToLower(strings.TrimSpace(k.Name))
	return k
}

// catalog groups item rows and resolves order lines onto those groups.
// It is built per call and never shared.
type catalog struct {
	keys  []itemKey
	stock []*float64

	// joinCategory is set when orders and catalog both carry a category;
	// order lines then match on code and category.
	joinCategory bool

	// adoptCategory is set when only the orders carry a category. A group
	// then takes the category of the first order line that joins it.
	adoptCategory bool

	byKey     map[itemKey]int
	byCode    map[string]int
	byCodeCat map[[2]string]int
}

func newCatalog(snap *dataset.Snapshot) *catalog {
	withCategory := snap.Has(schema.Items, schema.ColItemCategory)
	withName := snap.Has(schema.Items, schema.ColItemName)

	orderCategory := snap.Has(schema.Orders, schema.ColItemCategory)
	c := &catalog{
		joinCategory:  withCategory && orderCategory,
		adoptCategory: !withCategory && orderCategory,
		byKey:         make(map[itemKey]int, len(snap.Items)),
		byCode:        make(map[string]int, len(snap.Items)),
		byCodeCat:     make(map[[2]string]int),
	}

	for _, it := range snap.Items {
		k := itemKey{Code: it.Code}
		if withCategory {
			k.Category = it.Category
		}
		if withName {
			k.Name = it.Name
		}

		g, ok := c.byKey[k.fold()]
		if !ok {
			g = c.add(k, nil)
		}
		c.stock[g] = maxStock(c.stock[g], it.Stock)
	}
	return c
}

// add appends a group and registers it as the first match for its code
// when no earlier group claimed it.
func (c *catalog) add(k itemKey, stock *float64) int {
	g := len(c.keys)
	c.keys = append(c.keys, k)
	c.stock = append(c.stock, stock)
	c.byKey[k.fold()] = g
	if _, ok := c.byCode[k.Code]; !ok {
		c.byCode[k.Code] = g
	}
	cc := [2]string{k.Code, k.Category}
	if _, ok := c.byCodeCat[cc]; !ok {
		c.byCodeCat[cc] = g
	}
	return g
}

// resolve returns the group an order line joins. Lines without a catalog
// match get a group of their own with unknown stock, so they are still
// counted.
func (c *catalog) resolve(o dataset.Order) int {
	if c.joinCategory {
		if g, ok := c.byCodeCat[[2]string{o.ItemCode, o.ItemCategory}]; ok {
			return g
		}
	} else if g, ok := c.byCode[o.ItemCode]; ok {
		if c.adoptCategory && c.keys[g].Category == "" {
			c.keys[g].Category = o.ItemCategory
		}
		return g
	}

	k := itemKey{Code: o.ItemCode, Category: o.ItemCategory}
	if g, ok := c.byKey[k.fold()]; ok {
		return g
	}
	return c.add(k, nil)
}

// maxStock returns the larger of two nullable stock values.
func maxStock(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	}
	return a
}
