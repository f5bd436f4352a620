package postgres

import (
	"context"
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// CorrectionStore implements storage.CorrectionStore using PostgreSQL.
type CorrectionStore struct {
	pool *Pool
}

// NewCorrectionStore creates a new CorrectionStore.
func NewCorrectionStore(pool *Pool) *CorrectionStore {
	return &CorrectionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CorrectionStore = (*CorrectionStore)(nil)

// Insert adds a correction. Returns ErrDuplicateKey if correction_id exists.
func (s *CorrectionStore) Insert(ctx context.Context, c *domain.StatCorrection) error {
	if !domain.CorrectableFields[c.Field] {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO stat_corrections (
			correction_id, player_id, season, gameweek, match_id, field, old_value, new_value, reason, recorded_at_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		c.CorrectionID, c.PlayerID, c.Season, c.Gameweek, c.MatchID,
		c.Field, c.OldValue, c.NewValue, c.Reason, c.RecordedAtMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert correction: %w", err)
	}
	return nil
}

// GetBySeason retrieves all corrections of a season, ordered by (recorded_at, correction_id) ASC.
func (s *CorrectionStore) GetBySeason(ctx context.Context, season string) ([]*domain.StatCorrection, error) {
	query := `
		SELECT correction_id, player_id, season, gameweek, match_id, field, old_value, new_value, reason, recorded_at_ms
		FROM stat_corrections
		WHERE season = $1
		ORDER BY recorded_at_ms ASC, correction_id ASC
	`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("get corrections by season: %w", err)
	}
	defer rows.Close()

	var result []*domain.StatCorrection
	for rows.Next() {
		var c domain.StatCorrection
		err := rows.Scan(
			&c.CorrectionID, &c.PlayerID, &c.Season, &c.Gameweek, &c.MatchID,
			&c.Field, &c.OldValue, &c.NewValue, &c.Reason, &c.RecordedAtMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan correction row: %w", err)
		}
		result = append(result, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correction rows: %w", err)
	}

	return result, nil
}
