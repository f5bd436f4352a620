// Package main provides the long-running service:
// - Pipeline (scheduled): panel build → backtest → versioned report
// - HTTP: /health, /status, /runs and Prometheus /metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/config"
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/ingestion"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/observability"
	"fpl-points-lab/internal/orchestrator"
	"fpl-points-lab/internal/storage"
)

// Runner executes one pipeline run for a season.
type Runner interface {
	Run(ctx context.Context, season string) (*orchestrator.RunResult, error)
}

// Server schedules pipeline runs and reports their state over HTTP.
type Server struct {
	season   string
	interval time.Duration
	runner   Runner
	runs     storage.RunStore
	logger   logrus.FieldLogger
	now      func() time.Time

	mu         sync.Mutex
	started    time.Time
	running    bool
	lastRunAt  time.Time
	lastRunID  string
	lastStatus domain.RunStatus
	lastError  string
	runCount   int
	failCount  int
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	Status     string           `json:"status"`
	Season     string           `json:"season"`
	Uptime     string           `json:"uptime"`
	Running    bool             `json:"running"`
	LastRunAt  *time.Time       `json:"last_run_at,omitempty"`
	LastRunID  string           `json:"last_run_id,omitempty"`
	LastStatus domain.RunStatus `json:"last_status,omitempty"`
	LastError  string           `json:"last_error,omitempty"`
	Runs       int              `json:"runs"`
	Failures   int              `json:"failures"`
	Interval   string           `json:"interval"`
}

// RunSummary is one /runs entry.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	Status     domain.RunStatus `json:"status"`
	Models     []string         `json:"models"`
	PanelRows  int              `json:"panel_rows"`
	Splits     int              `json:"splits"`
	OutputDir  string           `json:"output_dir"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	source := flag.String("source", string(orchestrator.SourcePostgres), "Raw data source: postgres, dumps, or demo")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	interval := flag.Duration("interval", 0, "Pipeline run interval (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *interval > 0 {
		cfg.Server.Interval = config.Duration{Duration: *interval}
	}
	if cfg.General.Season == "" {
		cfg.General.Season = ingestion.SeasonForDate(time.Now().UTC())
	}

	logger := logging.New(cfg.General.LogLevel, cfg.General.LogFormat)
	log := logger.WithField("component", "server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backends, err := orchestrator.OpenBackends(ctx, cfg, orchestrator.Source(*source), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer backends.Close()

	orch, err := orchestrator.New(orchestrator.Options{
		RawStores:   backends.Raw,
		SplitStore:  backends.Splits,
		PanelStore:  backends.Panel,
		RunStore:    backends.Runs,
		Windows:     cfg.Panel.Windows,
		Models:      cfg.Backtest.Models,
		StartCutoff: cfg.Backtest.StartCutoff,
		Workers:     cfg.Backtest.Workers,
		OutputDir:   cfg.General.OutputDir,
		Command:     strings.Join(os.Args, " "),
		Logger:      logger,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create orchestrator")
	}

	server := NewServer(cfg.General.Season, cfg.Server.Interval.Duration, orch, backends.Runs, log)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
			cancel()
		}
	}()

	// Channel to signal completion
	done := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("Received signal, initiating graceful shutdown")
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Warn("Received second signal, forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	server.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown error")
	}
	close(done)

	log.Info("Shutdown complete")
}

// NewServer creates a server that runs the pipeline for season every interval.
func NewServer(season string, interval time.Duration, runner Runner, runs storage.RunStore, logger logrus.FieldLogger) *Server {
	return &Server{
		season:   season,
		interval: interval,
		runner:   runner,
		runs:     runs,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the pipeline immediately and then on every tick until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.mu.Lock()
	s.started = s.now()
	s.mu.Unlock()

	s.runPipeline(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

// runPipeline runs once unless a run is already in progress.
func (s *Server) runPipeline(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Previous pipeline run still in progress, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	result, err := s.runner.Run(ctx, s.season)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRunAt = s.now()
	s.runCount++

	if err != nil {
		s.failCount++
		s.lastStatus = domain.RunStatusFailed
		s.lastError = err.Error()
		s.logger.WithError(err).Error("Scheduled pipeline run failed")
		return
	}

	s.lastRunID = result.RunID
	s.lastStatus = domain.RunStatusSucceeded
	s.lastError = ""
	s.logger.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"skipped": result.Skipped,
	}).Info("Scheduled pipeline run finished")
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/runs", s.handleRuns)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:     "running",
		Season:     s.season,
		Running:    s.running,
		LastRunID:  s.lastRunID,
		LastStatus: s.lastStatus,
		LastError:  s.lastError,
		Runs:       s.runCount,
		Failures:   s.failCount,
		Interval:   s.interval.String(),
	}
	if !s.started.IsZero() {
		resp.Uptime = s.now().Sub(s.started).Round(time.Second).String()
	}
	if !s.lastRunAt.IsZero() {
		at := s.lastRunAt
		resp.LastRunAt = &at
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	if season == "" {
		season = s.season
	}

	manifests, err := s.runs.ListBySeason(r.Context(), season)
	if err != nil {
		s.logger.WithError(err).Error("List runs failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
		return
	}

	out := make([]RunSummary, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, RunSummary{
			RunID:      m.RunID,
			Status:     m.Status,
			Models:     m.Models,
			PanelRows:  m.PanelRows,
			Splits:     m.Splits,
			OutputDir:  m.OutputDir,
			StartedAt:  time.UnixMilli(m.StartedAtMs).UTC(),
			FinishedAt: time.UnixMilli(m.FinishedAtMs).UTC(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
