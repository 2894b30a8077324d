package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
)

var (
	reportOutput string

	dashGender string
	dashMinAge string
	dashMaxAge string
	dashArea   string
	dashTop    int

	stockItemCode     string
	stockItemName     string
	stockItemCategory string
	stockMinRatio     string
	stockMaxRatio     string
	stockMinOrdered   string
	stockMaxOrdered   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the sales and customer summary",
	Long: `Print totals, the top customers by purchase count and by spend, the
per-prefecture and age/gender breakdowns and the low-stock items ordered by
the selected customers.

Example:
  pgedge-retailstats dashboard --path ./data --gender F --min-age 30`,
	RunE: runDashboard,
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Print per-item order totals and stock ratios",
	Long: `Print the low-stock risk list and the per-item analysis. Stock ratio
bounds are percentages.

Example:
  pgedge-retailstats stock --item-category Books --max-stock-ratio 20`,
	RunE: runStock,
}

var customerCmd = &cobra.Command{
	Use:   "customer <id>",
	Short: "Print one customer's order history",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomer,
}

func init() {
	for _, cmd := range []*cobra.Command{dashboardCmd, stockCmd, customerCmd} {
		cmd.Flags().StringVarP(&reportOutput, "output", "o", "table",
			"output format: table or json")
	}

	dashboardCmd.Flags().StringVar(&dashGender, "gender", "", "customer sex")
	dashboardCmd.Flags().StringVar(&dashMinAge, "min-age", "", "minimum age (inclusive)")
	dashboardCmd.Flags().StringVar(&dashMaxAge, "max-age", "", "maximum age (inclusive)")
	dashboardCmd.Flags().StringVar(&dashArea, "area", "", "prefecture")
	dashboardCmd.Flags().IntVar(&dashTop, "top", 0, "number of customers in each ranking")

	stockCmd.Flags().StringVar(&stockItemCode, "item-code", "", "item code substring")
	stockCmd.Flags().StringVar(&stockItemName, "item-name", "", "item name substring")
	stockCmd.Flags().StringVar(&stockItemCategory, "item-category", "", "item category")
	stockCmd.Flags().StringVar(&stockMinRatio, "min-stock-ratio", "", "minimum stock ratio in percent")
	stockCmd.Flags().StringVar(&stockMaxRatio, "max-stock-ratio", "", "maximum stock ratio in percent")
	stockCmd.Flags().StringVar(&stockMinOrdered, "min-ordered", "", "minimum total ordered")
	stockCmd.Flags().StringVar(&stockMaxOrdered, "max-ordered", "", "maximum total ordered")
}

// loadSnapshot opens the configured source and reads one snapshot.
func loadSnapshot(ctx context.Context) (*dataset.Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := source.New(cfg.Source.Type, cfg.SourceOptions())
	if err != nil {
		return nil, err
	}
	defer func() { _ = source.Close(src) }()

	store := dataset.NewStore(src.Name(), source.Loader(src))
	return store.Reload(ctx)
}

// query collects the non-empty flag values the way the HTTP API receives
// them, so both share one parser.
func query(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return q
}

func logIgnored(errs []error) {
	for _, err := range errs {
		logging.Warn().Err(err).Msg("Ignoring filter")
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if dashTop > 0 {
		cfg.Analytics.TopN = dashTop
	}
	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	params, errs := analytics.ParseDashboardParams(query(
		"gender", dashGender,
		"min_age", dashMinAge,
		"max_age", dashMaxAge,
		"area", dashArea,
	))
	logIgnored(errs)

	d := analytics.Dashboard(snap, params, cfg.AnalyticsOptions())
	if reportOutput == "json" {
		return printJSON(cmd.OutOrStdout(), d)
	}
	return printDashboard(cmd.OutOrStdout(), d)
}

func runStock(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	params, errs := analytics.ParseStockParams(query(
		"item_code", stockItemCode,
		"item_name", stockItemName,
		"item_category", stockItemCategory,
		"min_stock_ratio", stockMinRatio,
		"max_stock_ratio", stockMaxRatio,
		"min_ordered", stockMinOrdered,
		"max_ordered", stockMaxOrdered,
	))
	logIgnored(errs)

	v := analytics.Stock(snap, params, cfg.AnalyticsOptions())
	if reportOutput == "json" {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return printStock(cmd.OutOrStdout(), v)
}

func runCustomer(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	v, err := analytics.CustomerDetail(snap, args[0])
	if errors.Is(err, analytics.ErrNotFound) {
		cmd.Println(err.Error())
		return nil
	}
	if err != nil {
		return err
	}
	if reportOutput == "json" {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return printCustomer(cmd.OutOrStdout(), v)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDashboard(out io.Writer, d *analytics.DashboardSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Customers:\t%d\n", d.TotalCustomers)
	fmt.Fprintf(w, "Total sales:\t%s\n", money(d.TotalSales))
	fmt.Fprintf(w, "Average sales:\t%s\n", money(d.AvgSales))

	printRanking(w, "Top customers by purchase count", d.TopByFrequency)
	printRanking(w, "Top customers by spend", d.TopBySpend)

	if len(d.AreaSummary) > 0 {
		fmt.Fprintln(w, "\nArea\tCustomers\tSales")
		for _, a := range d.AreaSummary {
			fmt.Fprintf(w, "%s\t%d\t%s\n", a.Area, a.CustomerCount, money(a.TotalSales))
		}
	}
	if len(d.AgeGenderSummary) > 0 {
		fmt.Fprintln(w, "\nAge group\tSex\tCustomers\tSales")
		for _, s := range d.AgeGenderSummary {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", s.AgeGroup, s.Sex, s.CustomerCount, money(s.TotalSales))
		}
	}
	printItems(w, "Low stock risk", d.LowStockRisk)
	printNotes(w, d.Notes)

	return w.Flush()
}

func printStock(out io.Writer, v *analytics.StockView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	printItems(w, "Low stock risk", v.LowStockRisk)
	printItems(w, "Item analysis", v.ItemAnalysis)
	if len(v.Categories) > 0 {
		fmt.Fprintln(w, "\nCategories")
		for _, c := range v.Categories {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	printNotes(w, v.Notes)

	return w.Flush()
}

func printCustomer(out io.Writer, v *analytics.CustomerDetailView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if c := v.Customer; c != nil {
		fmt.Fprintf(w, "Customer:\t%s %s\n", c.ID, c.Name)
		if c.Age != nil {
			fmt.Fprintf(w, "Age:\t%d\n", *c.Age)
		}
		fmt.Fprintf(w, "Sex:\t%s\n", c.Sex)
		fmt.Fprintf(w, "Area:\t%s\n", c.Area)
	}
	fmt.Fprintf(w, "Orders:\t%d\n", v.TotalOrders)
	fmt.Fprintf(w, "Total spent:\t%s\n", money(v.TotalSpent))
	if v.LastOrderDate != nil {
		fmt.Fprintf(w, "Last order:\t%s\n", v.LastOrderDate.Format("2006-01-02"))
	}

	fmt.Fprintln(w, "\nDate\tOrder\tItem\tQuantity\tPrice")
	for _, o := range v.OrderHistory {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.OrderDate.Format("2006-01-02"), o.OrderNo, o.ItemCode,
			strconv.FormatFloat(o.Quantity, 'f', -1, 64), money(o.Price))
	}

	return w.Flush()
}

func printRanking(w io.Writer, title string, ranking []analytics.CustomerMetrics) {
	if len(ranking) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, "Customer\tName\tPurchases\tSpent")
	for _, m := range ranking {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.ID, m.Name, m.PurchaseCount, money(m.TotalSpent))
	}
}

func printItems(w io.Writer, title string, items []analytics.ItemMetrics) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, "Item\tCategory\tName\tOrdered\tStock\tRatio")
	for _, m := range items {
		stock, ratio := "-", "-"
		if m.CurrentStock != nil {
			stock = strconv.FormatFloat(*m.CurrentStock, 'f', -1, 64)
		}
		if m.StockRatio != nil {
			ratio = strconv.FormatFloat(*m.StockRatio*100, 'f', 1, 64) + "%"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ItemCode, m.ItemCategory, m.ItemName,
			strconv.FormatFloat(m.TotalOrdered, 'f', -1, 64), stock, ratio)
	}
}

func printNotes(w io.Writer, notes []analytics.Note) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, n := range notes {
		fmt.Fprintf(w, "note: %s: %s\n", n.Field, n.Message)
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
