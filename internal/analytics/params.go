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
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DashboardParams are the customer-level filter clauses. Empty strings and
// nil bounds leave a clause unconstrained.
type DashboardParams struct {
	Gender string `json:"gender,omitempty"`
	MinAge *int   `json:"min_age,omitempty"`
	MaxAge *int   `json:"max_age,omitempty"`
	Area   string `json:"area,omitempty"`
}

// StockParams are the item-level filter clauses. Stock ratio bounds are
// percentages.
type StockParams struct {
	ItemCode      string   `json:"item_code,omitempty"`
	ItemName      string   `json:"item_name,omitempty"`
	ItemCategory  string   `json:"item_category,omitempty"`
	MinStockRatio *float64 `json:"min_stock_ratio,omitempty"`
	MaxStockRatio *float64 `json:"max_stock_ratio,omitempty"`
	MinOrdered    *int     `json:"min_ordered,omitempty"`
	MaxOrdered    *int     `json:"max_ordered,omitempty"`
}

var errNotFinite = errors.New("not a finite number")

// paramReader pulls values out of a query, remembering every value that
// had to be ignored.
type paramReader struct {
	q    url.Values
	errs []error
}

// str returns the first non-blank value of any of the names.
func (r *paramReader) str(names ...string) (string, string) {
	for _, n := range names {
		if v := strings.TrimSpace(r.q.Get(n)); v != "" {
			return n, v
		}
	}
	return names[0], ""
}

func (r *paramReader) intParam(names ...string) *int {
	name, raw := r.str(names...)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, &MalformedInputError{Param: name, Value: raw, Err: err})
		return nil
	}
	return &v
}

func (r *paramReader) floatParam(names ...string) *float64 {
	name, raw := r.str(names...)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errNotFinite
	}
	if err != nil {
		r.errs = append(r.errs, &MalformedInputError{Param: name, Value: raw, Err: err})
		return nil
	}
	return &v
}

// ParseDashboardParams reads gender, min_age, max_age and area. Values that
// do not parse are dropped and returned as *MalformedInputError.
func ParseDashboardParams(q url.Values) (DashboardParams, []error) {
	r := &paramReader{q: q}
	var p DashboardParams
	_, p.Gender = r.str("gender", "sex")
	p.MinAge = r.intParam("min_age")
	p.MaxAge = r.intParam("max_age")
	_, p.Area = r.str("area")
	return p, r.errs
}

// ParseStockParams reads the item search clauses. The original compact
// spellings (itemcode, itemname) are accepted as aliases.
func ParseStockParams(q url.Values) (StockParams, []error) {
	r := &paramReader{q: q}
	var p StockParams
	_, p.ItemCode = r.str("item_code", "itemcode")
	_, p.ItemName = r.str("item_name", "itemname")
	_, p.ItemCategory = r.str("item_category", "itemcate", "category")
	p.MinStockRatio = r.floatParam("min_stock_ratio")
	p.MaxStockRatio = r.floatParam("max_stock_ratio")
	p.MinOrdered = r.intParam("min_ordered")
	p.MaxOrdered = r.intParam("max_ordered")
	return p, r.errs
}
