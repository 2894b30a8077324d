//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-retailstats.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/config"
	"github.com/pgEdge/pgedge-retailstats/internal/datagen"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
	"github.com/pgEdge/pgedge-retailstats/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	sourceType string
	sourcePath string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-retailstats",
		Short: "Sales, customer and stock analytics over retail datasets",
		Long: `pgedge-retailstats reads three retail datasets (customers, orders and
item stock) from CSV files, an Excel workbook or a database, and computes
sales summaries, customer rankings, regional and age/gender breakdowns and
low-stock risk.

Column names are matched loosely, so exports using the usual Japanese or
English header spellings can be read without renaming anything.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-retailstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourceType, "source", "",
		"data source type (csv, xlsx, sqlite, mysql, postgres)")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "path", "",
		"data directory, workbook or database file")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"database connection string (mysql, postgres)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(profilesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if sourceType != "" {
		cfg.Source.Type = sourceType
	}
	if sourcePath != "" {
		cfg.Source.Path = sourcePath
	}
	if connection != "" {
		cfg.Source.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the prefectures in area summary order",
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range analytics.Regions() {
			cmd.Printf("  %2d  %-6s %s\n", r.Code, r.Name, r.Romaji)
		}
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available data source types",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available data sources:")
		cmd.Println()
		for _, name := range source.List() {
			cmd.Printf("  %s\n", name)
		}
		cmd.Println()
		cmd.Println("Default dataset names:")
		cmd.Println("  csv      - cust.csv, order.csv, itemstock.csv in --path")
		cmd.Println("  xlsx     - sheets customers, orders, itemstock in --path")
		cmd.Println("  database - tables customers, orders, itemstock")
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List demand profiles for synthetic data",
	Long: `List the demand profiles the generate command can spread order dates
with.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available demand profiles:")
		cmd.Println()
		for _, name := range datagen.Profiles() {
			p, err := datagen.GetProfile(name)
			if err != nil {
				continue
			}
			cmd.Printf("  %-13s - %s\n", name, p.Description())
		}
	},
}
