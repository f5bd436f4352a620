package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"fpl-points-lab/internal/decision"
	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/reporting"
)

// GeneratorVersion is recorded in reports and manifests.
const GeneratorVersion = "1.0.0"

// Output file names inside a run directory.
const (
	FileSplitMetrics = "split_metrics.csv"
	FilePredictions  = "predictions.csv"
	FileReport       = "REPORT.md"
	FileManifest     = "manifest.json"
	FileModelGate    = "MODEL_GATE.md"
)

// ErrRunExists is returned when a run's output directory already exists.
var ErrRunExists = errors.New("run output already exists")

// PanelFileName returns the panel CSV name for a season.
func PanelFileName(season string) string {
	return fmt.Sprintf("panel_%s.csv", season)
}

// RunOutput is everything written for one run.
type RunOutput struct {
	Manifest    *domain.RunManifest
	Report      *reporting.Report
	Rows        []*domain.PanelRow
	Windows     []int
	Predictions []*domain.Prediction
	Gate        []*decision.DecisionResult
}

// OutputWriter writes versioned run directories <root>/<season>/<run_id>/.
// An existing run directory is never overwritten.
type OutputWriter struct {
	root string
}

// NewOutputWriter creates a writer rooted at root.
func NewOutputWriter(root string) *OutputWriter {
	return &OutputWriter{root: root}
}

// RunDir returns the directory for a run.
func (w *OutputWriter) RunDir(season, runID string) string {
	return filepath.Join(w.root, season, runID)
}

// Exists reports whether a run directory is already present.
func (w *OutputWriter) Exists(season, runID string) bool {
	_, err := os.Stat(w.RunDir(season, runID))
	return err == nil
}

// Write renders every output file into a staging directory and renames it
// into place. Returns ErrRunExists if the run directory exists.
func (w *OutputWriter) Write(out *RunOutput) (string, error) {
	m := out.Manifest
	dir := w.RunDir(m.Season, m.RunID)
	if w.Exists(m.Season, m.RunID) {
		return dir, ErrRunExists
	}

	seasonDir := filepath.Join(w.root, m.Season)
	if err := os.MkdirAll(seasonDir, 0755); err != nil {
		return "", err
	}
	staging, err := os.MkdirTemp(seasonDir, ".staging-"+m.RunID+"-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(staging)

	m.OutputDir = dir
	manifest, err := json.MarshalIndent(newManifestFile(m), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	files := map[string]string{
		PanelFileName(m.Season): reporting.RenderPanelCSV(out.Rows, out.Windows),
		FileSplitMetrics:        reporting.RenderSplitMetricsCSV(out.Report.SplitMetrics),
		FilePredictions:         reporting.RenderPredictionsCSV(out.Predictions),
		FileReport:              reporting.RenderMarkdown(out.Report),
		FileManifest:            string(manifest) + "\n",
		FileModelGate:           decision.RenderMarkdown(m.RunID, out.Gate),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(staging, name), []byte(content), 0644); err != nil {
			return "", err
		}
	}

	if err := os.Rename(staging, dir); err != nil {
		if w.Exists(m.Season, m.RunID) {
			return dir, ErrRunExists
		}
		return "", err
	}
	return dir, nil
}

// manifestFile is the JSON form of domain.RunManifest.
type manifestFile struct {
	RunID            string   `json:"run_id"`
	Season           string   `json:"season"`
	PanelFingerprint string   `json:"panel_fingerprint"`
	Models           []string `json:"models"`
	ConfigHash       string   `json:"config_hash"`
	PanelRows        int      `json:"panel_rows"`
	Splits           int      `json:"splits"`
	OutputDir        string   `json:"output_dir"`
	Status           string   `json:"status"`
	Error            string   `json:"error,omitempty"`
	StartedAtMs      int64    `json:"started_at_ms"`
	FinishedAtMs     int64    `json:"finished_at_ms"`
	GeneratorVersion string   `json:"generator_version"`
}

func newManifestFile(m *domain.RunManifest) manifestFile {
	return manifestFile{
		RunID:            m.RunID,
		Season:           m.Season,
		PanelFingerprint: m.PanelFingerprint,
		Models:           m.Models,
		ConfigHash:       m.ConfigHash,
		PanelRows:        m.PanelRows,
		Splits:           m.Splits,
		OutputDir:        m.OutputDir,
		Status:           string(m.Status),
		Error:            m.Error,
		StartedAtMs:      m.StartedAtMs,
		FinishedAtMs:     m.FinishedAtMs,
		GeneratorVersion: GeneratorVersion,
	}
}

// ReadManifest loads manifest.json from a run directory.
func ReadManifest(dir string) (*domain.RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileManifest))
	if err != nil {
		return nil, err
	}
	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &domain.RunManifest{
		RunID:            f.RunID,
		Season:           f.Season,
		PanelFingerprint: f.PanelFingerprint,
		Models:           f.Models,
		ConfigHash:       f.ConfigHash,
		PanelRows:        f.PanelRows,
		Splits:           f.Splits,
		OutputDir:        f.OutputDir,
		Status:           domain.RunStatus(f.Status),
		Error:            f.Error,
		StartedAtMs:      f.StartedAtMs,
		FinishedAtMs:     f.FinishedAtMs,
	}, nil
}

// GitCommitHash returns current git commit hash or "unknown" if not in git repo.
func GitCommitHash() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out.String())
}
