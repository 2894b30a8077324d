//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dataset decodes normalized tables into typed, immutable snapshots
// and keeps the current snapshot behind a re-loadable store.
package dataset

import "time"

// Customer is one row of the customer master.
type Customer struct {
	ID   string `json:"customer_id"`
	Name string `json:"name,omitempty"`
	Age  *int   `json:"age,omitempty"`
	Sex  string `json:"sex,omitempty"`
	Area string `json:"area,omitempty"`

	// Extra holds passthrough display columns keyed by canonical name.
	Extra map[string]string `json:"extra,omitempty"`
}

// Order is one order line.
type Order struct {
	// Row is the position of the line in its source table.
	Row int `json:"-"`

	CustomerID   string    `json:"customer_id"`
	OrderDate    time.Time `json:"order_date"`
	OrderNo      string    `json:"order_no,omitempty"`
	ItemCode     string    `json:"item_code"`
	ItemCategory string    `json:"item_category,omitempty"`
	Quantity     float64   `json:"order_quantity"`
	Price        float64   `json:"order_price"`
}

// Item is one row of the item catalog. Stock is nil when the cell is empty.
type Item struct {
	Code     string   `json:"item_code"`
	Category string   `json:"item_category,omitempty"`
	Name     string   `json:"item_name,omitempty"`
	Stock    *float64 `json:"current_stock"`
}
