package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailstats/internal/db"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
)

var (
	importTarget       string
	importDropExisting bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the datasets into PostgreSQL tables",
	Long: `Read the configured datasets, map their columns to the canonical
names and copy them into the customers, orders and itemstock tables of a
PostgreSQL database. The result can then be read back with --source postgres.

Example:
  pgedge-retailstats import --path ./data --target "postgres://..."`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importTarget, "target", "",
		"PostgreSQL connection string to import into")
	importCmd.Flags().BoolVar(&importDropExisting, "drop-existing", false,
		"replace a previous import")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importTarget == "" {
		return fmt.Errorf("--target connection string is required")
	}
	if err := cfg.ValidateSource(); err != nil {
		return err
	}

	ctx := context.Background()

	src, err := source.New(cfg.Source.Type, cfg.SourceOptions())
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(src) }()

	raw, err := source.LoadAll(ctx, src)
	if err != nil {
		return err
	}

	// Normalize everything before touching the target database.
	tables := make(map[schema.Kind]*schema.Table, len(raw))
	for _, kind := range schema.Kinds() {
		t, err := schema.Normalize(kind, raw[kind])
		if err != nil {
			return err
		}
		tables[kind] = t
	}

	pool, err := db.Connect(ctx, importTarget)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check metadata: %w", err)
	}
	if exists {
		previous, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			return fmt.Errorf("failed to read metadata: %w", err)
		}
		if !importDropExisting {
			return fmt.Errorf(
				"database already holds an import from '%s' (%s); "+
					"use --drop-existing to replace it",
				previous["source"], previous["imported_at"])
		}
		logging.Warn().
			Str("previous_source", previous["source"]).
			Msg("Dropping existing tables")
		if err := db.DropTables(ctx, pool); err != nil {
			return err
		}
	}

	counts := make(map[schema.Kind]int64, len(tables))
	for _, kind := range schema.Kinds() {
		n, err := db.ImportTable(ctx, pool, db.TableNames[kind], tables[kind])
		if err != nil {
			return err
		}
		counts[kind] = n
	}

	if err := db.SaveMetadata(ctx, pool, src.Name(), counts); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("source", src.Name()).
		Int64("customers", counts[schema.Customers]).
		Int64("orders", counts[schema.Orders]).
		Int64("items", counts[schema.Items]).
		Msg("Import complete")
	return nil
}
