package domain

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// RunManifest describes one versioned pipeline output.
// Corresponds to runs table in the SQLite run registry.
type RunManifest struct {
	RunID            string // deterministic, see idhash.ComputeRunID
	Season           string
	PanelFingerprint string // hash of the built panel
	Models           []string
	ConfigHash       string
	PanelRows        int
	Splits           int
	OutputDir        string
	Status           RunStatus
	Error            string
	StartedAtMs      int64
	FinishedAtMs     int64
}
