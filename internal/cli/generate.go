package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailstats/internal/datagen"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
)

var (
	genCustomers int
	genItems     int
	genOrders    int
	genSeed      uint64
	genFormat    string
	genProfile   string
	genStart     string
	genEnd       string
	genOutput    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic retail dataset",
	Long: `Generate customers, an item catalog and orders and write them as CSV
files (cust.csv, order.csv, itemstock.csv) or as one Excel workbook. Order
dates follow the selected demand profile; see 'pgedge-retailstats profiles'.

Example:
  pgedge-retailstats generate --customers 1000 --orders 20000 --output ./data
  pgedge-retailstats generate --format xlsx --output ./retail.xlsx --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genCustomers, "customers", 0,
		"number of customers")
	generateCmd.Flags().IntVar(&genItems, "items", 0,
		"number of catalog items")
	generateCmd.Flags().IntVar(&genOrders, "orders", 0,
		"number of order lines")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0,
		"random seed (0 = random)")
	generateCmd.Flags().StringVar(&genFormat, "format", "",
		"output format: csv or xlsx")
	generateCmd.Flags().StringVar(&genProfile, "profile", "",
		"demand profile: steady, weekend-peak, year-end")
	generateCmd.Flags().StringVar(&genStart, "start-date", "",
		"first order date (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&genEnd, "end-date", "",
		"last order date (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&genOutput, "output", "",
		"output directory (csv) or workbook path (xlsx)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if genCustomers > 0 {
		cfg.Generate.Customers = genCustomers
	}
	if genItems > 0 {
		cfg.Generate.Items = genItems
	}
	if genOrders > 0 {
		cfg.Generate.Orders = genOrders
	}
	if genSeed > 0 {
		cfg.Generate.Seed = genSeed
	}
	if genFormat != "" {
		cfg.Generate.Format = genFormat
	}
	if genProfile != "" {
		cfg.Generate.Profile = genProfile
	}
	if genStart != "" {
		cfg.Generate.StartDate = genStart
	}
	if genEnd != "" {
		cfg.Generate.EndDate = genEnd
	}
	if genOutput != "" {
		cfg.Generate.Output = genOutput
	}

	// Validate configuration
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}
	genCfg, err := cfg.GeneratorConfig()
	if err != nil {
		return err
	}

	logging.Info().
		Int("customers", genCfg.Customers).
		Int("items", genCfg.Items).
		Int("orders", genCfg.Orders).
		Str("profile", genCfg.Profile).
		Msg("Generating dataset")

	tables, err := datagen.Generate(context.Background(), genCfg)
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	switch cfg.Generate.Format {
	case "xlsx":
		err = datagen.WriteXLSX(cfg.Generate.Output, tables)
	default:
		err = datagen.WriteCSV(cfg.Generate.Output, tables)
	}
	if err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	logging.Info().
		Str("format", cfg.Generate.Format).
		Str("output", cfg.Generate.Output).
		Msg("Dataset written")
	return nil
}
