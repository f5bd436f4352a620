package storage

import (
	"context"

	"fpl-points-lab/internal/domain"
)

// MatchStatStore provides access to player_match_stats_raw storage.
type MatchStatStore interface {
	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate
	// (player_id, season, gameweek, match_id).
	InsertBulk(ctx context.Context, rows []*domain.MatchStatRaw) error

	// GetBySeason retrieves all rows of a season, ordered by (player_id, gameweek, kickoff, match_id) ASC.
	GetBySeason(ctx context.Context, season string) ([]*domain.MatchStatRaw, error)

	// GetByPlayer retrieves one player's rows in a season, ordered by (gameweek, kickoff, match_id) ASC.
	GetByPlayer(ctx context.Context, season string, playerID int) ([]*domain.MatchStatRaw, error)
}

// TeamMatchStatStore provides access to team_match_stats storage.
type TeamMatchStatStore interface {
	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, rows []*domain.TeamMatchStat) error

	// GetBySeason retrieves all rows of a season, ordered by (team_id, gameweek, match_id) ASC.
	GetBySeason(ctx context.Context, season string) ([]*domain.TeamMatchStat, error)
}

// FixtureStore provides access to fixtures storage.
type FixtureStore interface {
	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, fixtures []*domain.Fixture) error

	// GetBySeason retrieves all fixtures of a season, ordered by (team_id, gameweek, kickoff, match_id) ASC.
	GetBySeason(ctx context.Context, season string) ([]*domain.Fixture, error)

	// ListSeasons returns all seasons with at least one fixture, ascending.
	ListSeasons(ctx context.Context) ([]string, error)
}

// AvailabilityStore provides access to player_availability storage.
type AvailabilityStore interface {
	// InsertBulk adds multiple snapshots atomically. Fails entire batch on duplicate
	// (player_id, season, gameweek).
	InsertBulk(ctx context.Context, rows []*domain.PlayerAvailability) error

	// GetBySeason retrieves all snapshots of a season, ordered by (player_id, gameweek) ASC.
	GetBySeason(ctx context.Context, season string) ([]*domain.PlayerAvailability, error)
}

// CorrectionStore provides access to stat_corrections storage. Append-only.
type CorrectionStore interface {
	// Insert adds a correction. Returns ErrDuplicateKey if correction_id exists.
	Insert(ctx context.Context, c *domain.StatCorrection) error

	// GetBySeason retrieves all corrections of a season, ordered by (recorded_at, correction_id) ASC.
	GetBySeason(ctx context.Context, season string) ([]*domain.StatCorrection, error)
}

// PanelStore provides access to panel_rows storage.
// Rows are versioned by the panel fingerprint; a version is written once.
type PanelStore interface {
	// InsertBulk adds rows for a panel version. Fails entire batch on duplicate
	// (version, player_id, season, gameweek).
	InsertBulk(ctx context.Context, version string, rows []*domain.PanelRow) error

	// GetBySeason retrieves a version's rows for a season, ordered by (player_id, gameweek) ASC.
	GetBySeason(ctx context.Context, version, season string) ([]*domain.PanelRow, error)

	// GetByGameweekRange retrieves a version's rows for gameweeks within [from, to] (inclusive).
	GetByGameweekRange(ctx context.Context, version, season string, from, to int) ([]*domain.PanelRow, error)

	// HasVersion reports whether any row exists for the version.
	HasVersion(ctx context.Context, version string) (bool, error)
}

// SplitMetricsStore provides access to split_metrics storage.
type SplitMetricsStore interface {
	// InsertBulk adds multiple split results. Fails entire batch on duplicate
	// (run_id, model, cutoff).
	InsertBulk(ctx context.Context, metrics []*domain.SplitMetrics) error

	// GetByRun retrieves all split results of a run, ordered by (model, cutoff) ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.SplitMetrics, error)
}

// RunStore provides access to the run registry.
type RunStore interface {
	// Insert records a run manifest. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, m *domain.RunManifest) error

	// GetByID retrieves a manifest. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunManifest, error)

	// ListBySeason retrieves manifests of a season, newest first.
	ListBySeason(ctx context.Context, season string) ([]*domain.RunManifest, error)
}
