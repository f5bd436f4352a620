// Package orchestrator provides end-to-end pipeline orchestration.
// It coordinates: raw load → panel build → audit → walk-forward backtest → reporting
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/backtest"
	"fpl-points-lab/internal/decision"
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/features"
	"fpl-points-lab/internal/idhash"
	"fpl-points-lab/internal/metrics"
	"fpl-points-lab/internal/model"
	"fpl-points-lab/internal/observability"
	"fpl-points-lab/internal/panel"
	"fpl-points-lab/internal/pipeline"
	"fpl-points-lab/internal/reporting"
	"fpl-points-lab/internal/split"
	"fpl-points-lab/internal/storage"
	"fpl-points-lab/internal/verification"
)

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RawStores  *storage.RawStores
	SplitStore storage.SplitMetricsStore

	// Optional stores
	PanelStore storage.PanelStore // versioned panel rows, e.g. ClickHouse
	RunStore   storage.RunStore   // run registry, e.g. SQLite

	// Run parameters
	Windows           []int
	Models            []string
	StartCutoff       int
	Workers           int
	AvailabilityGuard bool
	Thresholds        *pipeline.SufficiencyThresholds // nil uses pipeline.DefaultThresholds

	OutputDir string
	Command   string // recorded in the report for reproducibility

	Logger logrus.FieldLogger
	Clock  func() time.Time
}

// Orchestrator coordinates one season's pipeline run.
type Orchestrator struct {
	rawStores  *storage.RawStores
	splitStore storage.SplitMetricsStore
	panelStore storage.PanelStore
	runStore   storage.RunStore

	panels    *pipeline.PanelPipeline
	build     func(*storage.SeasonRaw) (*panel.Panel, error)
	factories []model.Factory
	models    []string
	opts      Options
	writer    *pipeline.OutputWriter
	logger    logrus.FieldLogger
	now       func() time.Time
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RunID      string
	Season     string
	OutputDir  string
	PanelRows  int
	Splits     int
	Missing    int
	Skipped    bool // output version already existed
	Aggregates []*domain.SeasonMetrics
	Gate       []*decision.DecisionResult
	Manifest   *domain.RunManifest
}

// New creates a new Orchestrator. Returns *domain.ConfigError for invalid
// windows, unknown models or a missing store.
func New(opts Options) (*Orchestrator, error) {
	if opts.RawStores == nil || opts.SplitStore == nil {
		return nil, &domain.ConfigError{Field: "stores", Detail: "raw stores and split store are required"}
	}
	if opts.StartCutoff < 1 {
		return nil, &domain.ConfigError{Field: "backtest.start_cutoff", Detail: "must be >= 1"}
	}
	if len(opts.Models) == 0 {
		return nil, &domain.ConfigError{Field: "backtest.models", Detail: "at least one model required"}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.Thresholds == nil {
		t := pipeline.DefaultThresholds(opts.StartCutoff)
		opts.Thresholds = &t
	}

	var featureOpts []features.Option
	if opts.AvailabilityGuard {
		featureOpts = append(featureOpts, features.WithAvailabilityGuard())
	}
	panels, err := pipeline.NewPanelPipeline(opts.Windows, opts.Logger, featureOpts...)
	if err != nil {
		return nil, err
	}

	factories := make([]model.Factory, 0, len(opts.Models))
	for _, name := range opts.Models {
		f, err := model.New(name, panels.Windows())
		if err != nil {
			return nil, err
		}
		factories = append(factories, f)
	}

	return &Orchestrator{
		rawStores:  opts.RawStores,
		splitStore: opts.SplitStore,
		panelStore: opts.PanelStore,
		runStore:   opts.RunStore,
		panels:     panels,
		build:      panels.Build,
		factories:  factories,
		models:     append([]string(nil), opts.Models...),
		opts:       opts,
		writer:     pipeline.NewOutputWriter(opts.OutputDir),
		logger:     opts.Logger.WithField("component", "orchestrator"),
		now:        opts.Clock,
	}, nil
}

// ConfigHash hashes every parameter that changes run output.
func (o *Orchestrator) ConfigHash() string {
	windows := make([]string, len(o.panels.Windows()))
	for i, w := range o.panels.Windows() {
		windows[i] = strconv.Itoa(w)
	}
	return idhash.HashParts(
		"windows="+strings.Join(windows, ","),
		"start_cutoff="+strconv.Itoa(o.opts.StartCutoff),
		"availability_guard="+strconv.FormatBool(o.opts.AvailabilityGuard),
		"generator="+pipeline.GeneratorVersion,
	)
}

// Run executes the full pipeline for a season.
// Phases:
//  1. Load raw tables and build the panel (features, then targets)
//  2. Audit the panel and verify the rebuild is deterministic
//  3. Walk-forward backtest of every model
//  4. Aggregate, report and write the versioned output directory
//
// Schema and leakage errors abort the run. An existing output version is
// not recomputed; its manifest is returned with Skipped set.
func (o *Orchestrator) Run(ctx context.Context, season string) (*RunResult, error) {
	start := o.now()
	log := o.logger.WithField("season", season)

	// Phase 1: Panel
	log.WithField("phase", "panel").Info("building panel")
	raw, err := o.rawStores.LoadSeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load raw) failed: %w", err)
	}
	buildStart := time.Now()
	p, err := o.build(raw)
	if err != nil {
		recordGuardFailure(err)
		return nil, fmt.Errorf("phase 1 (build panel) failed: %w", err)
	}
	observability.RecordPanelBuild(time.Since(buildStart).Seconds())
	for _, r := range p.Rows {
		observability.RecordPanelRow(strings.ToLower(string(r.Status)))
	}
	observability.RecordMissingData(len(p.Missing))

	windows := o.panels.Windows()
	fingerprint := panel.Fingerprint(p.Rows, windows)
	runID := idhash.ComputeRunID(season, fingerprint, o.models, o.ConfigHash())
	log = log.WithField("run_id", runID)
	log.WithFields(logrus.Fields{
		"rows":        len(p.Rows),
		"missing":     len(p.Missing),
		"fingerprint": idhash.ShortID(fingerprint, 12),
	}).Info("panel built")

	if o.writer.Exists(season, runID) {
		manifest, err := pipeline.ReadManifest(o.writer.RunDir(season, runID))
		if err != nil {
			return nil, fmt.Errorf("read existing manifest: %w", err)
		}
		observability.RecordRunSkipped()
		log.Info("output version exists, skipping")
		return &RunResult{
			RunID:     runID,
			Season:    season,
			OutputDir: manifest.OutputDir,
			PanelRows: manifest.PanelRows,
			Splits:    manifest.Splits,
			Missing:   len(p.Missing),
			Skipped:   true,
			Manifest:  manifest,
		}, nil
	}

	manifest := &domain.RunManifest{
		RunID:            runID,
		Season:           season,
		PanelFingerprint: fingerprint,
		Models:           append([]string(nil), o.models...),
		ConfigHash:       o.ConfigHash(),
		PanelRows:        len(p.Rows),
		StartedAtMs:      start.UnixMilli(),
	}

	result, err := o.evaluate(ctx, log, raw, p, manifest)
	if err != nil {
		o.recordFailure(log, manifest, err)
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, log logrus.FieldLogger, raw *storage.SeasonRaw, p *panel.Panel, manifest *domain.RunManifest) (*RunResult, error) {
	windows := o.panels.Windows()

	// Phase 2: Audit
	log.WithField("phase", "audit").Info("auditing panel")
	audit := verification.AuditPanel(p.Rows)
	observability.RecordAuditViolations(len(audit.Violations))
	if !audit.OK() {
		recordGuardFailure(audit.Err())
		return nil, fmt.Errorf("phase 2 (audit) failed: %w", audit.Err())
	}
	idem, err := verification.VerifyIdempotent(func() (*panel.Panel, error) {
		return o.build(raw)
	}, windows)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (rebuild) failed: %w", err)
	}
	if err := idem.Err(); err != nil {
		recordGuardFailure(err)
		return nil, fmt.Errorf("phase 2 (rebuild) failed: %w", err)
	}
	if idem.First != manifest.PanelFingerprint {
		err := fmt.Errorf("%w: run panel %s, rebuild %s", verification.ErrNotIdempotent, manifest.PanelFingerprint, idem.First)
		recordGuardFailure(err)
		return nil, fmt.Errorf("phase 2 (rebuild) failed: %w", err)
	}
	violations, err := o.persistPanel(ctx, log, manifest.PanelFingerprint, p.Rows)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (persist panel) failed: %w", err)
	}

	// Phase 3: Backtest
	log.WithField("phase", "backtest").Info("running walk-forward backtest")
	splits, err := split.NewSplitter(p.Rows).WalkForward(manifest.Season, o.opts.StartCutoff)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (split) failed: %w", err)
	}
	sufficiency := pipeline.NewSufficiencyChecker(*o.opts.Thresholds).Check(p, splits)
	if !sufficiency.AllPass {
		log.Warn("data sufficiency checks failed")
	}
	results, err := backtest.NewRunner(o.opts.Workers, o.logger).Run(ctx, manifest.RunID, splits, o.factories)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (backtest) failed: %w", err)
	}
	for _, s := range results.Splits {
		observability.RecordSplitEvaluated(s.Model)
	}
	manifest.Splits = len(splits)

	// Phase 4: Aggregate and report
	log.WithField("phase", "report").Info("aggregating and writing outputs")
	aggregates, err := o.storeAndAggregate(ctx, log, manifest.RunID, results.Splits)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (aggregate) failed: %w", err)
	}
	observability.RecordAggregates(len(aggregates))

	report, err := reporting.NewGenerator(o.splitStore).WithClock(o.now).
		Generate(ctx, manifest.RunID, manifest.Season, manifest.PanelFingerprint, windows, p.Rows)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (report) failed: %w", err)
	}
	report.DataQuality = dataQuality(sufficiency)
	report.Audit = reporting.AuditSection{
		RowsAudited:      audit.Rows,
		Violations:       violations,
		IdempotenceMatch: idem.Match(),
	}
	report.Reproducibility = reporting.ReproducibilityMetadata{
		GeneratorVersion: pipeline.GeneratorVersion,
		ConfigHash:       manifest.ConfigHash,
		CommitHash:       pipeline.GitCommitHash(),
		Command:          o.opts.Command,
	}
	observability.RecordReportGenerated()

	gate := decision.EvaluateReport(report)
	for _, g := range gate {
		log.WithFields(logrus.Fields{
			"model":    g.Model,
			"baseline": g.Baseline,
			"decision": g.Decision,
		}).Info("model gate evaluated")
	}

	manifest.Status = domain.RunStatusSucceeded
	manifest.FinishedAtMs = o.now().UnixMilli()
	dir, err := o.writer.Write(&pipeline.RunOutput{
		Manifest:    manifest,
		Report:      report,
		Rows:        p.Rows,
		Windows:     windows,
		Predictions: results.Predictions,
		Gate:        gate,
	})
	if err != nil {
		return nil, fmt.Errorf("phase 4 (write outputs) failed: %w", err)
	}
	manifest.OutputDir = dir

	if o.runStore != nil {
		if err := o.runStore.Insert(ctx, manifest); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("phase 4 (register run) failed: %w", err)
		}
	}

	elapsed := o.now().Sub(time.UnixMilli(manifest.StartedAtMs))
	observability.RecordPipelineRun("orchestrator", "success", elapsed.Seconds())
	observability.MarkPipelineSuccess(o.now().Unix())
	log.WithFields(logrus.Fields{
		"splits":     len(splits),
		"output_dir": dir,
		"duration":   elapsed,
	}).Info("pipeline completed")

	return &RunResult{
		RunID:      manifest.RunID,
		Season:     manifest.Season,
		OutputDir:  dir,
		PanelRows:  len(p.Rows),
		Splits:     len(splits),
		Missing:    len(p.Missing),
		Aggregates: aggregates,
		Gate:       gate,
		Manifest:   manifest,
	}, nil
}

// persistPanel writes the panel version once. When the version is already
// stored, the stored rows are compared against the fresh build and every
// divergence is returned as an audit finding.
func (o *Orchestrator) persistPanel(ctx context.Context, log logrus.FieldLogger, version string, rows []*domain.PanelRow) ([]string, error) {
	if o.panelStore == nil {
		return nil, nil
	}
	exists, err := o.panelStore.HasVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, o.panelStore.InsertBulk(ctx, version, rows)
	}

	divergences, err := verification.NewStoredVerifier(o.panelStore).VerifyVersion(ctx, version, rows)
	if err != nil {
		return nil, err
	}
	findings := make([]string, 0, len(divergences))
	for _, d := range divergences {
		findings = append(findings, fmt.Sprintf("stored %s p%d gw%d %s: %v != %v",
			d.Key.Season, d.Key.PlayerID, d.Key.Gameweek, d.Field, d.Expected, d.Actual))
	}
	if len(findings) > 0 {
		log.WithField("divergences", len(findings)).Warn("stored panel differs from rebuild")
	}
	return findings, nil
}

// storeAndAggregate persists split results. A rerun of a failed run finds its
// deterministic splits already stored and aggregates those instead.
func (o *Orchestrator) storeAndAggregate(ctx context.Context, log logrus.FieldLogger, runID string, splits []*domain.SplitMetrics) ([]*domain.SeasonMetrics, error) {
	agg := metrics.NewAggregator(o.splitStore)
	aggregates, err := agg.StoreAndAggregate(ctx, splits)
	if errors.Is(err, storage.ErrDuplicateKey) {
		log.Info("split metrics already stored, reusing")
		return agg.LoadAggregates(ctx, runID)
	}
	return aggregates, err
}

// recordFailure logs and counts a failed run. Failed runs are not registered:
// the registry only holds versions whose output directory exists.
func (o *Orchestrator) recordFailure(log logrus.FieldLogger, manifest *domain.RunManifest, runErr error) {
	elapsed := o.now().Sub(time.UnixMilli(manifest.StartedAtMs))
	observability.RecordPipelineRun("orchestrator", "error", elapsed.Seconds())
	log.WithError(runErr).Error("pipeline failed")
}

func dataQuality(s *pipeline.SufficiencyResult) reporting.DataQualitySection {
	section := reporting.DataQualitySection{
		IntegrityErrors: s.Errors,
		AllChecksPassed: s.AllPass,
	}
	for _, c := range s.Checks {
		section.SufficiencyChecks = append(section.SufficiencyChecks, reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		})
	}
	return section
}

func recordGuardFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrLeakage):
		observability.RecordGuardFailure("leakage")
	case errors.Is(err, domain.ErrSchema):
		observability.RecordGuardFailure("schema")
	case errors.Is(err, verification.ErrNotIdempotent):
		observability.RecordGuardFailure("idempotence")
	}
}
