// Package main is the entry point for the stockplaned daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockplane/internal/config"
	"stockplane/internal/daemon"
	"stockplane/internal/engine"
	"stockplane/internal/fetch"
	"stockplane/internal/importer"
	"stockplane/internal/logger"
	"stockplane/internal/metrics"
	"stockplane/internal/observability"
	"stockplane/internal/remote"
	"stockplane/internal/sites"
	"stockplane/internal/store"
	"stockplane/internal/store/file"
	"stockplane/internal/store/postgres"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	provider, err := sites.Load(cfg.SitesFile)
	if err != nil {
		log.Fatalf("Failed to load sites: %v", err)
	}

	// Pick the metrics store: Postgres when configured, the JSON file
	// store otherwise.
	ctx := context.Background()
	var kv store.KV
	var ready func(context.Context) error
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer pg.Close()

		if *migrateFlag {
			log.Println("Running database migrations...")
			if err := postgres.Migrate(pg.DB()); err != nil {
				log.Fatalf("Migration failed: %v", err)
			}
			log.Println("Migrations completed successfully")
		}
		kv = pg
		ready = func(ctx context.Context) error { return pg.DB().PingContext(ctx) }
	} else {
		fs, err := file.Open(cfg.MetricsFile)
		if err != nil {
			log.Fatalf("Failed to open metrics file: %v", err)
		}
		kv = fs
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "stockplaned", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	appLog := logger.New()
	client := remote.New(appLog, remote.WithRateLimit(cfg.RemoteRate))
	recorder := metrics.NewRecorder(kv, appLog)
	eng := engine.New(
		provider,
		importer.NewRunner(client, appLog),
		fetch.NewSelector(client, recorder, appLog),
		recorder,
		appLog,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := daemon.New(addr, eng, cfg, metricsHandler, ready)

	go func() {
		log.Printf("stockplaned starting on %s (sites: %v)", addr, provider.Names())
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down daemon...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited properly")
}
