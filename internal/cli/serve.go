package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/logging"
	"github.com/pgEdge/pgedge-retailstats/internal/server"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
)

var (
	serveListen         string
	serveReloadInterval int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard, stock and customer views over HTTP",
	Long: `Load the datasets and serve the analytics views as JSON. The datasets
are read once at startup and again on POST /api/reload or, when
--reload-interval is set, periodically. A failed reload keeps serving the
previous data.

Endpoints:
  GET  /api/dashboard       ?gender= &min_age= &max_age= &area=
  GET  /api/stock           ?item_code= &item_name= &item_category=
                            &min_stock_ratio= &max_stock_ratio=
                            &min_ordered= &max_ordered=
  GET  /api/customers/{id}
  GET  /api/regions
  POST /api/reload
  GET  /healthz
  GET  /metrics

Example:
  pgedge-retailstats serve --source xlsx --path ./retail.xlsx --listen :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"address to listen on (default: :8080)")
	serveCmd.Flags().IntVar(&serveReloadInterval, "reload-interval", 0,
		"reload the datasets every N seconds (0 = only on request)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveListen != "" {
		cfg.Serve.Listen = serveListen
	}
	if serveReloadInterval > 0 {
		cfg.Serve.ReloadInterval = serveReloadInterval
	}

	// Validate configuration
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	src, err := source.New(cfg.Source.Type, cfg.SourceOptions())
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(src) }()

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	store := dataset.NewStore(src.Name(), source.Loader(src))
	srv := server.New(server.Config{
		Listen:         cfg.Serve.Listen,
		ReloadInterval: time.Duration(cfg.Serve.ReloadInterval) * time.Second,
		Options:        cfg.AnalyticsOptions(),
	}, store)

	// The first load must succeed; later failures keep the old snapshot.
	if _, err := srv.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}

	return srv.Run(ctx)
}
