//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// Column headers written by the generator, in the spelling of the
// original exports.
var (
	CustomerColumns = []string{"customerid", "name", "sex", "age", "area"}
	OrderColumns    = []string{"customerid", "orderdate", "orderno", "orderitem", "orderitemcate", "ordernum", "orderprice"}
	ItemColumns     = []string{"item", "itemcate", "itemname", "stock"}
)

// Config controls the size and shape of a generated dataset.
type Config struct {
	Customers int
	Items     int
	Orders    int
	Seed      uint64
	Profile   string
	Start     time.Time
	End       time.Time

	// LowStockRate is the share of items stocked at or near zero.
	LowStockRate float64

	// DuplicateRate is the share of item rows and order lines written
	// twice, so that max-stock and dedup rules have work to do.
	DuplicateRate float64
}

// DefaultConfig returns a small dataset spanning one year.
func DefaultConfig() Config {
	return Config{
		Customers:     500,
		Items:         120,
		Orders:        5000,
		Profile:       "weekend-peak",
		Start:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		LowStockRate:  0.1,
		DuplicateRate: 0.02,
	}
}

func (c Config) validate() error {
	if c.Customers < 1 || c.Items < 1 {
		return errors.New("at least one customer and one item are required")
	}
	if c.Orders < 0 {
		return errors.New("order count cannot be negative")
	}
	if c.End.Before(c.Start) {
		return errors.New("end date is before start date")
	}
	return nil
}

type catalogItem struct {
	code, category, name string
	price                float64
}

// Generate builds the three raw tables.
func Generate(ctx context.Context, cfg Config) (map[schema.Kind]*schema.RawTable, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	profile, err := GetProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}

	f := NewFaker()
	if cfg.Seed != 0 {
		f = NewFakerWithSeed(cfg.Seed)
	}

	regions := analytics.Regions()
	customers := &schema.RawTable{Name: "customers", Columns: CustomerColumns}
	for i := 1; i <= cfg.Customers; i++ {
		area := Choose(f, regions).Name
		if f.Chance(0.02) {
			area = ""
		}
		customers.Rows = append(customers.Rows, []string{
			strconv.Itoa(i),
			f.Name(),
			strconv.Itoa(f.Int(1, 2)),
			strconv.Itoa(f.Int(18, 85)),
			area,
		})
	}

	items := &schema.RawTable{Name: "itemstock", Columns: ItemColumns}
	catalog := make([]catalogItem, cfg.Items)
	for i := range catalog {
		it := catalogItem{
			code:     fmt.Sprintf("IT%05d", i+1),
			category: f.ProductCategory(),
			name:     f.ProductName(),
			price:    f.Price(100, 20000),
		}
		catalog[i] = it

		stock := f.Int(20, 500)
		if f.Chance(cfg.LowStockRate) {
			stock = f.Int(0, 3)
		}
		items.Rows = append(items.Rows, []string{it.code, it.category, it.name, strconv.Itoa(stock)})
		if f.Chance(cfg.DuplicateRate) {
			// a second stock snapshot for the same item
			items.Rows = append(items.Rows, []string{it.code, it.category, it.name, strconv.Itoa(f.Int(0, stock))})
		}
	}

	days, weights := calendar(profile, cfg.Start, cfg.End)
	orders := &schema.RawTable{Name: "orders", Columns: OrderColumns}
	progress := NewProgressReporter("orders", int64(cfg.Orders), 10000)

	orderNo := 0
	for lines := 0; lines < cfg.Orders; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		orderNo++
		customer := strconv.Itoa(f.Int(1, cfg.Customers))
		day := ChooseWeighted(f, days, weights).Format("2006-01-02")

		for n := f.Int(1, 3); n > 0 && lines < cfg.Orders; n-- {
			it := Choose(f, catalog)
			qty := f.Int(1, 5)
			row := []string{
				customer,
				day,
				strconv.Itoa(orderNo),
				it.code,
				it.category,
				strconv.Itoa(qty),
				strconv.FormatFloat(it.price*float64(qty), 'f', 0, 64),
			}
			orders.Rows = append(orders.Rows, row)
			lines++
			progress.Update(1)

			if f.Chance(cfg.DuplicateRate) {
				orders.Rows = append(orders.Rows, append([]string(nil), row...))
			}
		}
	}
	progress.Done()

	logging.Info().
		Int("customers", len(customers.Rows)).
		Int("items", len(items.Rows)).
		Int("orders", len(orders.Rows)).
		Str("profile", profile.Name()).
		Msg("Generated dataset")

	return map[schema.Kind]*schema.RawTable{
		schema.Customers: customers,
		schema.Orders:    orders,
		schema.Items:     items,
	}, nil
}

// calendar lists every day in [start, end] with its demand weight.
func calendar(p Profile, start, end time.Time) ([]time.Time, []float64) {
	var days []time.Time
	var weights []float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
		weights = append(weights, p.DemandLevel(d))
	}
	return days, weights
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = 1
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Debug().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}
