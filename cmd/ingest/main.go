// Package main loads FPL API dumps for one season into raw storage.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/config"
	"fpl-points-lab/internal/ingestion"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/storage"
	"fpl-points-lab/internal/storage/memory"
	"fpl-points-lab/internal/storage/migrations"
	pgstore "fpl-points-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	season := flag.String("season", "", "Season to ingest, e.g. 2024-25 (default: config, then current season)")
	dataDir := flag.String("data-dir", "", "Directory with FPL JSON dumps (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	workers := flag.Int("workers", 8, "Concurrent element-summary readers")
	dryRun := flag.Bool("dry-run", false, "Transform into memory stores without writing to PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	if *season != "" {
		cfg.General.Season = *season
	}
	if *dataDir != "" {
		cfg.General.DataDir = *dataDir
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if cfg.General.Season == "" {
		cfg.General.Season = ingestion.SeasonForDate(time.Now().UTC())
	}

	logger := logging.New(cfg.General.LogLevel, cfg.General.LogFormat)
	log := logger.WithFields(logrus.Fields{
		"component": "ingest",
		"season":    cfg.General.Season,
		"data_dir":  cfg.General.DataDir,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Warn("Received signal, cancelling ingestion")
		cancel()
	}()

	var stores *storage.RawStores
	switch {
	case *dryRun:
		log.Info("Dry run: using in-memory stores")
		stores = memory.NewRawStores()
	case cfg.Storage.PostgresDSN == "":
		log.Fatal("PostgreSQL DSN required (set -postgres-dsn, FPL_POSTGRES_DSN, or use -dry-run)")
	default:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.WithError(err).Fatal("Failed to apply PostgreSQL migrations")
		}
		stores = pool.RawStores()
	}

	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		Source: ingestion.NewDumpSource(cfg.General.DataDir, ingestion.WithWorkers(*workers)),
		Stores: stores,
		Logger: log,
	})

	start := time.Now()
	counts, err := mgr.Ingest(ctx, cfg.General.Season)
	if err != nil {
		log.WithError(err).Fatal("Ingestion failed")
	}

	log.WithFields(logrus.Fields{
		"fixtures":    counts.Fixtures,
		"match_stats": counts.MatchStats,
		"team_stats":  counts.TeamStats,
		"duration":    time.Since(start).Round(time.Millisecond).String(),
		"dry_run":     *dryRun,
	}).Info("Ingestion complete")
}
