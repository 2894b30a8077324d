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
	"strconv"
)

// AreaSummary aggregates customers of one area.
type AreaSummary struct {
	Area                string  `json:"area"`
	CustomerCount       int     `json:"customer_count"`
	TotalSales          float64 `json:"total_sales"`
	AvgSalesPerCustomer float64 `json:"avg_sales_per_customer"`
}

// AgeGenderSummary aggregates customers of one decade and sex.
type AgeGenderSummary struct {
	AgeGroup      int     `json:"age_group"`
	Sex           string  `json:"sex"`
	TotalSales    float64 `json:"total_sales"`
	CustomerCount int     `json:"customer_count"`
}

// areaSummary groups customers by canonical area. Prefectures come first
// in their fixed order; any other area follows, sorted by name. Customers
// without an area are left out.
func areaSummary(metrics []CustomerMetrics) []AreaSummary {
	index := make(map[string]int)
	out := []AreaSummary{}
	for _, m := range metrics {
		area := CanonicalArea(m.Area)
		if area == "" {
			continue
		}
		i, ok := index[area]
		if !ok {
			i = len(out)
			index[area] = i
			out = append(out, AreaSummary{Area: area})
		}
		out[i].CustomerCount++
		out[i].TotalSales += m.TotalSpent
	}

	for i := range out {
		out[i].AvgSalesPerCustomer = safeDiv(out[i].TotalSales, float64(out[i].CustomerCount))
	}

	sort.Slice(out, func(i, j int) bool {
		ri, iok := RegionRank(out[i].Area)
		rj, jok := RegionRank(out[j].Area)
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return out[i].Area < out[j].Area
	})
	return out
}

type ageSex struct {
	age int
	sex string
}

// ageGenderSummary buckets customers into decades by sex. Customers with
// no age or no sex are left out.
func ageGenderSummary(metrics []CustomerMetrics) []AgeGenderSummary {
	index := make(map[ageSex]int)
	out := []AgeGenderSummary{}
	for _, m := range metrics {
		if m.Age == nil || m.Sex == "" {
			continue
		}
		k := ageSex{age: ageGroup(*m.Age), sex: m.Sex}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, AgeGenderSummary{AgeGroup: k.age, Sex: k.sex})
		}
		out[i].CustomerCount++
		out[i].TotalSales += m.TotalSpent
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AgeGroup != out[j].AgeGroup {
			return out[i].AgeGroup < out[j].AgeGroup
		}
		return lessSex(out[i].Sex, out[j].Sex)
	})
	return out
}

// ageGroup floors an age to its decade; -5 falls in -10.
func ageGroup(age int) int {
	g := age / 10 * 10
	if age < 0 && age%10 != 0 {
		g -= 10
	}
	return g
}

// lessSex orders numeric codes numerically and everything else by text.
func lessSex(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case (aerr == nil) != (berr == nil):
		return aerr == nil
	}
	return a < b
}
