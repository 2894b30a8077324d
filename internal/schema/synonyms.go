//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package schema

import "strings"

// Synonyms shared by every dataset. Keys are folded column names (see fold).
var commonSynonyms = map[string]string{
	"customerid":    ColCustomerID,
	"custid":        ColCustomerID,
	"cust_id":       ColCustomerID,
	"item":          ColItemCode,
	"itemcode":      ColItemCode,
	"orderitem":     ColItemCode,
	"itemname":      ColItemName,
	"orderitemname": ColItemName,
	"itemcate":      ColItemCategory,
	"itemcategory":  ColItemCategory,
	"orderitemcate": ColItemCategory,
	"category":      ColItemCategory,
}

// Synonyms that only make sense for one dataset.
var kindSynonyms = map[Kind]map[string]string{
	Customers: {
		"gender":       ColSex,
		"prefecture":   ColArea,
		"region":       ColArea,
		"customername": ColName,
		"custname":     ColName,
	},
	Orders: {
		"orderdate":    ColOrderDate,
		"date":         ColOrderDate,
		"orderno":      ColOrderNo,
		"ordernumber":  ColOrderNo,
		"order_number": ColOrderNo,
		"ordernum":     ColOrderQuantity,
		"orderqty":     ColOrderQuantity,
		"quantity":     ColOrderQuantity,
		"qty":          ColOrderQuantity,
		"orderprice":   ColOrderPrice,
		"price":        ColOrderPrice,
	},
	Items: {
		"stock":          ColCurrentStock,
		"stockqty":       ColCurrentStock,
		"stock_qty":      ColCurrentStock,
		"currentstock":   ColCurrentStock,
		"on_hand":        ColCurrentStock,
		"quantityonhand": ColCurrentStock,
	},
}

var requiredColumns = map[Kind][]string{
	Customers: {ColCustomerID},
	Orders:    {ColCustomerID, ColOrderDate, ColOrderPrice, ColItemCode, ColOrderQuantity},
	Items:     {ColItemCode},
}

// Required returns the canonical columns a table of the given kind must carry.
func Required(kind Kind) []string {
	return append([]string(nil), requiredColumns[kind]...)
}

// Canonical maps a source column name to its canonical name for the kind.
// Unknown columns are returned folded but otherwise unchanged.
func Canonical(kind Kind, column string) string {
	name := fold(column)
	if c, ok := kindSynonyms[kind][name]; ok {
		return c
	}
	if c, ok := commonSynonyms[name]; ok {
		return c
	}
	return name
}

// fold lower-cases a header, strips a UTF-8 byte order mark and turns inner
// blanks and hyphens into underscores.
func fold(column string) string {
	s := strings.TrimPrefix(column, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t':
			return '_'
		}
		return r
	}, s)
}
