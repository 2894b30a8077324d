//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-retailstats.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-retailstats/internal/analytics"
	"github.com/pgEdge/pgedge-retailstats/internal/datagen"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
)

// Config holds all configuration for pgedge-retailstats.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Source selects where the datasets are read from.
	Source SourceConfig `mapstructure:"source"`

	// Analytics tunes the rankings.
	Analytics AnalyticsConfig `mapstructure:"analytics"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// SourceConfig selects and locates the datasets.
type SourceConfig struct {
	// Type is one of csv, xlsx, sqlite, mysql, postgres.
	Type string `mapstructure:"type"`

	// Path is the data directory (csv), workbook (xlsx) or database
	// file (sqlite).
	Path string `mapstructure:"path"`

	// Connection is the connection string for mysql and postgres.
	Connection string `mapstructure:"connection"`

	// Customers, Orders and Items override the file, sheet or table
	// name of each dataset.
	Customers string `mapstructure:"customers"`
	Orders    string `mapstructure:"orders"`
	Items     string `mapstructure:"items"`
}

// AnalyticsConfig tunes the rankings.
type AnalyticsConfig struct {
	TopN              int     `mapstructure:"top_n"`
	LowStockThreshold float64 `mapstructure:"low_stock_threshold"`
	LowStockLimit     int     `mapstructure:"low_stock_limit"`
}

// ServeConfig holds configuration for the HTTP API.
type ServeConfig struct {
	// Listen is the address to listen on.
	Listen string `mapstructure:"listen"`

	// ReloadInterval is how often to reload the datasets (in seconds,
	// 0 = only on request).
	ReloadInterval int `mapstructure:"reload_interval"`
}

// GenerateConfig holds configuration for synthetic data generation.
type GenerateConfig struct {
	Customers int    `mapstructure:"customers"`
	Items     int    `mapstructure:"items"`
	Orders    int    `mapstructure:"orders"`
	Seed      uint64 `mapstructure:"seed"`

	// Format is csv or xlsx.
	Format string `mapstructure:"format"`

	// Profile is the demand profile orders are spread with.
	Profile string `mapstructure:"profile"`

	// StartDate and EndDate bound order dates (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`

	// Output is the target directory (csv) or workbook (xlsx).
	Output string `mapstructure:"output"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	gen := datagen.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Source: SourceConfig{
			Type: "csv",
			Path: "data",
		},
		Analytics: AnalyticsConfig{
			TopN:              analytics.DefaultTopN,
			LowStockThreshold: analytics.DefaultLowStockThreshold,
			LowStockLimit:     analytics.DefaultLowStockLimit,
		},
		Serve: ServeConfig{
			Listen:         ":8080",
			ReloadInterval: 0,
		},
		Generate: GenerateConfig{
			Customers: gen.Customers,
			Items:     gen.Items,
			Orders:    gen.Orders,
			Format:    "csv",
			Profile:   gen.Profile,
			StartDate: gen.Start.Format(time.DateOnly),
			EndDate:   gen.End.Format(time.DateOnly),
			Output:    "data",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-retailstats.yaml
// 3. ~/.config/pgedge-retailstats/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-retailstats")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-retailstats"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that a usable source is configured.
func (c *Config) Validate() error {
	return c.ValidateSource()
}

// ValidateSource checks the source section.
func (c *Config) ValidateSource() error {
	switch c.Source.Type {
	case "csv", "xlsx", "sqlite":
		if c.Source.Path == "" {
			return fmt.Errorf("source path is required for %s sources", c.Source.Type)
		}
	case "mysql", "postgres":
		if c.Source.Connection == "" {
			return fmt.Errorf("connection string is required for %s sources", c.Source.Type)
		}
	case "":
		return fmt.Errorf("source type is required")
	default:
		return fmt.Errorf("unknown source type: %s", c.Source.Type)
	}
	return c.ValidateAnalytics()
}

// ValidateAnalytics checks the ranking parameters.
func (c *Config) ValidateAnalytics() error {
	if c.Analytics.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1")
	}
	if c.Analytics.LowStockThreshold <= 0 {
		return fmt.Errorf("low_stock_threshold must be positive")
	}
	if c.Analytics.LowStockLimit < 1 {
		return fmt.Errorf("low_stock_limit must be at least 1")
	}
	return nil
}

// ValidateServe checks configuration required for serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Serve.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Serve.ReloadInterval < 0 {
		return fmt.Errorf("reload_interval must be non-negative")
	}
	return nil
}

// ValidateGenerate checks configuration required for generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Format != "csv" && c.Generate.Format != "xlsx" {
		return fmt.Errorf("format must be 'csv' or 'xlsx'")
	}
	if c.Generate.Output == "" {
		return fmt.Errorf("output path is required")
	}
	_, err := c.GeneratorConfig()
	return err
}

// SourceOptions returns the options for source.New.
func (c *Config) SourceOptions() source.Options {
	names := make(map[schema.Kind]string)
	for kind, name := range map[schema.Kind]string{
		schema.Customers: c.Source.Customers,
		schema.Orders:    c.Source.Orders,
		schema.Items:     c.Source.Items,
	} {
		if name != "" {
			names[kind] = name
		}
	}
	return source.Options{
		Path:       c.Source.Path,
		Connection: c.Source.Connection,
		Names:      names,
	}
}

// AnalyticsOptions returns the ranking options.
func (c *Config) AnalyticsOptions() analytics.Options {
	return analytics.Options{
		TopN:              c.Analytics.TopN,
		LowStockThreshold: c.Analytics.LowStockThreshold,
		LowStockLimit:     c.Analytics.LowStockLimit,
	}
}

// GeneratorConfig converts the generate section into a generator config.
func (c *Config) GeneratorConfig() (datagen.Config, error) {
	gen := datagen.DefaultConfig()
	gen.Customers = c.Generate.Customers
	gen.Items = c.Generate.Items
	gen.Orders = c.Generate.Orders
	gen.Seed = c.Generate.Seed
	gen.Profile = c.Generate.Profile

	var err error
	if gen.Start, err = time.Parse(time.DateOnly, c.Generate.StartDate); err != nil {
		return gen, fmt.Errorf("invalid start_date: %w", err)
	}
	if gen.End, err = time.Parse(time.DateOnly, c.Generate.EndDate); err != nil {
		return gen, fmt.Errorf("invalid end_date: %w", err)
	}
	if gen.Customers < 1 || gen.Items < 1 {
		return gen, fmt.Errorf("customers and items must be at least 1")
	}
	if gen.Orders < 0 {
		return gen, fmt.Errorf("orders must be non-negative")
	}
	if gen.End.Before(gen.Start) {
		return gen, fmt.Errorf("end_date must not be before start_date")
	}
	if _, err := datagen.GetProfile(gen.Profile); err != nil {
		return gen, err
	}
	return gen, nil
}
