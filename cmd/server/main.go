/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the site analytics server: configuration,
  SQLite store, HTTP router, graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment, flag overrides)
  2. Initialize SQLite store
  3. Create API handler and router
  4. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database
  -plan    Optional JSON site-plan file; its contract period, work items
           and snapshots are loaded into the store before serving

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), close the database, exit.

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/site-analytics/api"
	"github.com/warp/site-analytics/config"
	"github.com/warp/site-analytics/factory"
	"github.com/warp/site-analytics/store"
	"github.com/warp/site-analytics/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	planPath := flag.String("plan", "", "JSON site-plan file to load on startup")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	st, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "path", *dbPath)
		os.Exit(1)
	}
	defer st.Close()

	if *planPath != "" {
		if err := loadPlan(context.Background(), st, *planPath); err != nil {
			logger.Error("failed to load site plan", "error", err, "path", *planPath)
			os.Exit(1)
		}
		logger.Info("site plan loaded", "path", *planPath)
	}

	handler := api.NewHandler(st, cfg.WeekStart)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		LogLevel:       cfg.LogLevel,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", *port, "db", *dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// loadPlan seeds the store from a JSON site-plan file.
func loadPlan(ctx context.Context, st store.SiteStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	plan, err := factory.ParsePlan(data)
	if err != nil {
		return err
	}

	if plan.Contract != nil {
		if err := st.SetContractPeriod(ctx, *plan.Contract); err != nil {
			return err
		}
	}
	for _, item := range plan.WorkItems {
		history := item.History
		item.History = nil
		if err := st.SaveWorkItem(ctx, item); err != nil {
			return err
		}
		for _, snap := range history {
			if err := st.AppendSnapshot(ctx, item.ID, snap); err != nil {
				return err
			}
		}
	}
	return nil
}
