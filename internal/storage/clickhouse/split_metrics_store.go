package clickhouse

import (
	"context"
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// SplitMetricsStore implements storage.SplitMetricsStore using ClickHouse.
type SplitMetricsStore struct {
	conn *Conn
}

// NewSplitMetricsStore creates a new SplitMetricsStore.
func NewSplitMetricsStore(conn *Conn) *SplitMetricsStore {
	return &SplitMetricsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SplitMetricsStore = (*SplitMetricsStore)(nil)

// InsertBulk adds multiple split results atomically. Fails entire batch on any duplicate.
func (s *SplitMetricsStore) InsertBulk(ctx context.Context, metrics []*domain.SplitMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		runID  string
		model  string
		cutoff int
	}
	seen := make(map[key]struct{})
	for _, m := range metrics {
		if m == nil || m.RunID == "" || m.Model == "" {
			return storage.ErrInvalidInput
		}
		k := key{m.RunID, m.Model, m.Cutoff}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, m := range metrics {
		exists, err := s.exists(ctx, m.RunID, m.Model, m.Cutoff)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO split_metrics (
			run_id, season, model, cutoff, test_gameweek, train_rows, test_rows,
			mae, rmse, spearman, minutes_mae, minutes_calibration
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, m := range metrics {
		err = batch.Append(
			m.RunID, m.Season, m.Model, int64(m.Cutoff), int64(m.TestGameweek), int64(m.TrainRows), int64(m.TestRows),
			m.MAE, m.RMSE, m.Spearman, m.MinutesMAE, m.MinutesCalibration,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all split results of a run, ordered by (model, cutoff) ASC.
func (s *SplitMetricsStore) GetByRun(ctx context.Context, runID string) ([]*domain.SplitMetrics, error) {
	query := `
		SELECT
			run_id, season, model, cutoff, test_gameweek, train_rows, test_rows,
			mae, rmse, spearman, minutes_mae, minutes_calibration
		FROM split_metrics
		WHERE run_id = ?
		ORDER BY model ASC, cutoff ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query split metrics by run: %w", err)
	}
	defer rows.Close()

	var result []*domain.SplitMetrics
	for rows.Next() {
		var m domain.SplitMetrics
		var cutoff, testGW, trainRows, testRows int64

		err := rows.Scan(
			&m.RunID, &m.Season, &m.Model, &cutoff, &testGW, &trainRows, &testRows,
			&m.MAE, &m.RMSE, &m.Spearman, &m.MinutesMAE, &m.MinutesCalibration,
		)
		if err != nil {
			return nil, fmt.Errorf("scan split metrics row: %w", err)
		}
		m.Cutoff = int(cutoff)
		m.TestGameweek = int(testGW)
		m.TrainRows = int(trainRows)
		m.TestRows = int(testRows)

		result = append(result, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate split metrics rows: %w", err)
	}

	return result, nil
}

// exists checks if a split result with the given key exists.
func (s *SplitMetricsStore) exists(ctx context.Context, runID, model string, cutoff int) (bool, error) {
	query := `
		SELECT count(*) FROM split_metrics
		WHERE run_id = ? AND model = ? AND cutoff = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, model, int64(cutoff)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
