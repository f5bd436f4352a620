package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// RunStore implements storage.RunStore using SQLite.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `run_id, season, panel_fingerprint, models, config_hash, panel_rows, splits,
	output_dir, status, error, started_at_ms, finished_at_ms`

// Insert records a run manifest. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, m *domain.RunManifest) error {
	if m == nil || m.RunID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Season, m.PanelFingerprint, strings.Join(m.Models, ","), m.ConfigHash, m.PanelRows, m.Splits,
		m.OutputDir, string(m.Status), m.Error, m.StartedAtMs, m.FinishedAtMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a manifest. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunManifest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	m, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return m, nil
}

// ListBySeason retrieves manifests of a season, newest first.
func (s *RunStore) ListBySeason(ctx context.Context, season string) ([]*domain.RunManifest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+`
		FROM runs WHERE season = ?
		ORDER BY started_at_ms DESC, run_id ASC`, season)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunManifest
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunManifest, error) {
	var m domain.RunManifest
	var models, status string

	err := row.Scan(
		&m.RunID, &m.Season, &m.PanelFingerprint, &models, &m.ConfigHash, &m.PanelRows, &m.Splits,
		&m.OutputDir, &status, &m.Error, &m.StartedAtMs, &m.FinishedAtMs,
	)
	if err != nil {
		return nil, err
	}

	if models != "" {
		m.Models = strings.Split(models, ",")
	}
	m.Status = domain.RunStatus(status)
	return &m, nil
}
