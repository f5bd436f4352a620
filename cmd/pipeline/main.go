// Package main runs the season pipeline once.
// Executes: raw load → panel build → audit → walk-forward backtest → reporting
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/config"
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/orchestrator"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	season := flag.String("season", "", "Season to run, e.g. 2024-25 (overrides config)")
	source := flag.String("source", string(orchestrator.SourcePostgres), "Raw data source: postgres, dumps, or demo")
	outputDir := flag.String("output-dir", "", "Root of versioned output directories (overrides config)")
	windows := flag.String("windows", "", "Comma-separated rolling window sizes (overrides config)")
	models := flag.String("models", "", "Comma-separated models: form, two_stage (overrides config)")
	startCutoff := flag.Int("start-cutoff", 0, "First cutoff gameweek (overrides config)")
	availabilityGuard := flag.Bool("availability-guard", false, "Reject availability snapshots taken after the gameweek deadline")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *season, *outputDir, *windows, *models, *startCutoff)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.General.Season == "" {
		if orchestrator.Source(*source) != orchestrator.SourceDemo {
			logrus.Fatal("Season required (set -season or general.season)")
		}
		cfg.General.Season = "demo"
	}

	logger := logging.New(cfg.General.LogLevel, cfg.General.LogFormat)
	log := logger.WithFields(logrus.Fields{
		"component": "pipeline",
		"season":    cfg.General.Season,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Warn("Received signal, cancelling pipeline")
		cancel()
	}()

	backends, err := orchestrator.OpenBackends(ctx, cfg, orchestrator.Source(*source), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer backends.Close()

	orch, err := orchestrator.New(orchestrator.Options{
		RawStores:         backends.Raw,
		SplitStore:        backends.Splits,
		PanelStore:        backends.Panel,
		RunStore:          backends.Runs,
		Windows:           cfg.Panel.Windows,
		Models:            cfg.Backtest.Models,
		StartCutoff:       cfg.Backtest.StartCutoff,
		Workers:           cfg.Backtest.Workers,
		AvailabilityGuard: *availabilityGuard,
		OutputDir:         cfg.General.OutputDir,
		Command:           strings.Join(os.Args, " "),
		Logger:            logger,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create orchestrator")
	}

	result, err := orch.Run(ctx, cfg.General.Season)
	if err != nil {
		var schemaErr *domain.SchemaError
		var leakErr *domain.LeakageError
		switch {
		case errors.As(err, &schemaErr):
			log.WithError(err).Error("Schema error: raw tables do not join")
		case errors.As(err, &leakErr):
			log.WithError(err).Error("Leakage guard tripped")
		}
		backends.Close()
		log.WithError(err).Fatal("Pipeline failed")
	}

	if result.Skipped {
		log.WithField("output_dir", result.OutputDir).Info("Output version already exists, nothing to do")
		return
	}

	fmt.Printf("Pipeline completed: run %s\n", result.RunID)
	fmt.Printf("  Panel rows: %d (missing %d)\n", result.PanelRows, result.Missing)
	fmt.Printf("  Splits: %d\n", result.Splits)
	for _, agg := range result.Aggregates {
		fmt.Printf("  %-10s MAE %.3f  RMSE %.3f\n", agg.Model, agg.MAE, agg.RMSE)
	}
	fmt.Printf("  Output: %s\n", result.OutputDir)
}

// loadConfig applies flag overrides on top of file and environment values,
// then re-validates.
func loadConfig(path, season, outputDir, windows, models string, startCutoff int) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if season != "" {
		cfg.General.Season = season
	}
	if outputDir != "" {
		cfg.General.OutputDir = outputDir
	}
	if windows != "" {
		sizes, err := config.ParseWindows(windows)
		if err != nil {
			return nil, err
		}
		cfg.Panel.Windows = sizes
	}
	if models != "" {
		cfg.Backtest.Models = splitList(models)
	}
	if startCutoff > 0 {
		cfg.Backtest.StartCutoff = startCutoff
	}
	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
