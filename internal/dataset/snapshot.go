//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// Snapshot is an immutable, fully decoded copy of the three datasets.
// Nothing mutates a Snapshot after Decode returns it, so it may be shared
// freely between concurrent readers.
type Snapshot struct {
	Customers []Customer
	Orders    []Order
	Items     []Item

	// Source names the loader that produced the snapshot.
	Source string

	// LoadedAt is when the snapshot was built.
	LoadedAt time.Time

	// Warnings lists rows that were skipped or cells that were ignored.
	Warnings []string

	columns  map[schema.Kind]map[string]bool
	customer map[string]int
}

// Has reports whether the table of the given kind carried the column.
func (s *Snapshot) Has(kind schema.Kind, column string) bool {
	return s.columns[kind][column]
}

// Customer looks a customer up by normalized ID.
func (s *Snapshot) Customer(id string) (*Customer, bool) {
	i, ok := s.customer[NormalizeKey(id)]
	if !ok {
		return nil, false
	}
	return &s.Customers[i], true
}

// Stats returns row counts per dataset.
func (s *Snapshot) Stats() map[schema.Kind]int {
	return map[schema.Kind]int{
		schema.Customers: len(s.Customers),
		schema.Orders:    len(s.Orders),
		schema.Items:     len(s.Items),
	}
}

// Build normalizes and decodes a set of raw tables. A missing required
// column fails the whole build before anything is decoded.
func Build(raw map[schema.Kind]*schema.RawTable) (*Snapshot, error) {
	tables := make(map[schema.Kind]*schema.Table, len(raw))
	var errs []error
	for _, kind := range schema.Kinds() {
		t, err := schema.Normalize(kind, raw[kind])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tables[kind] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return Decode(tables)
}

// Decode converts normalized tables into a Snapshot.
func Decode(tables map[schema.Kind]*schema.Table) (*Snapshot, error) {
	s := &Snapshot{
		LoadedAt: time.Now().UTC(),
		columns:  make(map[schema.Kind]map[string]bool, 3),
	}

	for _, kind := range schema.Kinds() {
		t, ok := tables[kind]
		if !ok {
			return nil, &schema.SchemaError{Kind: kind, Missing: schema.Required(kind)}
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			cols[c] = true
		}
		s.columns[kind] = cols
	}

	if err := s.decodeCustomers(tables[schema.Customers]); err != nil {
		return nil, err
	}
	if err := s.decodeOrders(tables[schema.Orders]); err != nil {
		return nil, err
	}
	if err := s.decodeItems(tables[schema.Items]); err != nil {
		return nil, err
	}
	return s, nil
}

// Columns consumed into typed Customer fields; everything else is passthrough.
var customerFields = map[string]bool{
	schema.ColCustomerID: true,
	schema.ColName:       true,
	schema.ColAge:        true,
	schema.ColSex:        true,
	schema.ColArea:       true,
}

func (s *Snapshot) decodeCustomers(t *schema.Table) error {
	s.Customers = make([]Customer, 0, t.Len())
	s.customer = make(map[string]int, t.Len())

	for r := range t.Rows {
		id := NormalizeKey(t.Value(r, schema.ColCustomerID))
		if id == "" {
			s.warnf("%s row %d: empty customer_id, row skipped", t.Name, r+1)
			continue
		}
		if _, dup := s.customer[id]; dup {
			s.warnf("%s row %d: duplicate customer_id %s, row skipped", t.Name, r+1, id)
			continue
		}

		c := Customer{
			ID:   id,
			Name: trim(t.Value(r, schema.ColName)),
			Sex:  NormalizeKey(t.Value(r, schema.ColSex)),
			Area: trim(t.Value(r, schema.ColArea)),
		}

		if raw := t.Value(r, schema.ColAge); raw != "" {
			v, ok, err := ParseNumber(raw)
			switch {
			case err != nil:
				s.warnf("%s row %d: ignoring non-numeric age %q", t.Name, r+1, raw)
			case ok:
				age := int(math.Floor(v))
				c.Age = &age
			}
		}

		for i, col := range t.Columns {
			if customerFields[col] || t.Rows[r][i] == "" {
				continue
			}
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}
			c.Extra[col] = t.Rows[r][i]
		}

		s.customer[id] = len(s.Customers)
		s.Customers = append(s.Customers, c)
	}
	return nil
}

func (s *Snapshot) decodeOrders(t *schema.Table) error {
	s.Orders = make([]Order, 0, t.Len())

	for r := range t.Rows {
		o := Order{
			Row:          r,
			CustomerID:   NormalizeKey(t.Value(r, schema.ColCustomerID)),
			OrderNo:      trim(t.Value(r, schema.ColOrderNo)),
			ItemCode:     trim(t.Value(r, schema.ColItemCode)),
			ItemCategory: trim(t.Value(r, schema.ColItemCategory)),
		}

		raw := t.Value(r, schema.ColOrderDate)
		d, ok := ParseDate(raw)
		if !ok {
			return &DecodeError{Table: t.Name, Row: r + 1, Column: schema.ColOrderDate, Value: raw}
		}
		o.OrderDate = d

		var err error
		if o.Quantity, err = s.number(t, r, schema.ColOrderQuantity); err != nil {
			return err
		}
		if o.Price, err = s.number(t, r, schema.ColOrderPrice); err != nil {
			return err
		}

		s.Orders = append(s.Orders, o)
	}
	return nil
}

func (s *Snapshot) decodeItems(t *schema.Table) error {
	s.Items = make([]Item, 0, t.Len())

	for r := range t.Rows {
		it := Item{
			Code:     trim(t.Value(r, schema.ColItemCode)),
			Category: trim(t.Value(r, schema.ColItemCategory)),
			Name:     trim(t.Value(r, schema.ColItemName)),
		}
		if it.Code == "" {
			s.warnf("%s row %d: empty item_code, row skipped", t.Name, r+1)
			continue
		}

		raw := t.Value(r, schema.ColCurrentStock)
		v, ok, err := ParseNumber(raw)
		if err != nil {
			return &DecodeError{Table: t.Name, Row: r + 1, Column: schema.ColCurrentStock, Value: raw, Err: err}
		}
		if ok {
			it.Stock = &v
		}

		s.Items = append(s.Items, it)
	}
	return nil
}

// number decodes a numeric order cell; empty cells count as zero.
func (s *Snapshot) number(t *schema.Table, r int, col string) (float64, error) {
	raw := t.Value(r, col)
	v, _, err := ParseNumber(raw)
	if err != nil {
		return 0, &DecodeError{Table: t.Name, Row: r + 1, Column: col, Value: raw, Err: err}
	}
	return v, nil
}

func (s *Snapshot) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}
