package reporting

import "time"

// Report represents one pipeline run's report.
type Report struct {
	// Metadata
	GeneratedAt      time.Time
	RunID            string
	Season           string
	PanelFingerprint string
	Windows          []int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks, missing data)
	DataQuality DataQualitySection

	// Leakage audit and rebuild determinism
	Audit AuditSection

	// Season aggregates, sorted by model
	ModelMetrics []ModelMetricRow

	// Walk-forward splits, sorted by (model, cutoff)
	SplitMetrics []SplitMetricRow

	Reproducibility ReproducibilityMetadata
}

// DataQualitySection contains data sufficiency checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// AuditSection summarises panel verification.
type AuditSection struct {
	RowsAudited      int
	Violations       []string
	IdempotenceMatch bool
}

// DataSummary describes the panel.
type DataSummary struct {
	Players        int
	Rows           int
	PlayedRows     int
	BlankRows      int
	DoubleRows     int
	MissingRows    int
	RowsWithTarget int
	FirstGameweek  int
	LastGameweek   int
}

// ModelMetricRow represents one model's season aggregate.
type ModelMetricRow struct {
	Model              string
	Splits             int
	TestRows           int
	MAE                float64
	RMSE               float64
	Spearman           *float64
	MinutesMAE         *float64
	MinutesCalibration *float64
}

// SplitMetricRow represents one model's result on one split.
type SplitMetricRow struct {
	Model              string
	Cutoff             int
	TestGameweek       int
	TrainRows          int
	TestRows           int
	MAE                float64
	RMSE               float64
	Spearman           *float64
	MinutesMAE         *float64
	MinutesCalibration *float64
}

// ReproducibilityMetadata records how to regenerate the run.
type ReproducibilityMetadata struct {
	GeneratorVersion string
	ConfigHash       string
	CommitHash       string
	Command          string
}
