package analytics

import "sort"

// topBy returns the first n customers after a stable descending sort on
// the given key. Ties keep their input order.
func topBy(metrics []CustomerMetrics, n int, key func(CustomerMetrics) float64) []CustomerMetrics {
	ranked := append([]CustomerMetrics(nil), metrics...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return key(ranked[i]) > key(ranked[j])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func byPurchaseCount(m CustomerMetrics) float64 { return float64(m.PurchaseCount) }

func byTotalSpent(m CustomerMetrics) float64 { return m.TotalSpent }

// lowStockRisk selects items that have demand and a known stock ratio
// below the threshold, most at risk first.
func lowStockRisk(items []ItemMetrics, opts Options) []ItemMetrics {
	var risk []ItemMetrics
	for _, m := range items {
		if m.TotalOrdered > 0 && m.StockRatio != nil && *m.StockRatio < opts.LowStockThreshold {
			risk = append(risk, m)
		}
	}
	sort.SliceStable(risk, func(i, j int) bool {
		return *risk[i].StockRatio < *risk[j].StockRatio
	})
	if len(risk) > opts.LowStockLimit {
		risk = risk[:opts.LowStockLimit]
	}
	if risk == nil {
		risk = []ItemMetrics{}
	}
	return risk
}
