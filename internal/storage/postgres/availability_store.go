package postgres

import (
	"context"
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// AvailabilityStore implements storage.AvailabilityStore using PostgreSQL.
type AvailabilityStore struct {
	pool *Pool
}

// NewAvailabilityStore creates a new AvailabilityStore.
func NewAvailabilityStore(pool *Pool) *AvailabilityStore {
	return &AvailabilityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AvailabilityStore = (*AvailabilityStore)(nil)

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *AvailabilityStore) InsertBulk(ctx context.Context, rows []*domain.PlayerAvailability) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO player_availability (
			player_id, season, gameweek, status, chance_of_playing, news, snapshot_at_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, r := range rows {
		_, err := tx.Exec(ctx, query,
			r.PlayerID, r.Season, r.Gameweek, string(r.Status), r.ChanceOfPlaying, r.News, r.SnapshotAtMs,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert availability in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySeason retrieves all snapshots of a season, ordered by (player_id, gameweek) ASC.
func (s *AvailabilityStore) GetBySeason(ctx context.Context, season string) ([]*domain.PlayerAvailability, error) {
	query := `
		SELECT player_id, season, gameweek, status, chance_of_playing, news, snapshot_at_ms
		FROM player_availability
		WHERE season = $1
		ORDER BY player_id ASC, gameweek ASC
	`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("get availability by season: %w", err)
	}
	defer rows.Close()

	var result []*domain.PlayerAvailability
	for rows.Next() {
		var r domain.PlayerAvailability
		var status string

		if err := rows.Scan(&r.PlayerID, &r.Season, &r.Gameweek, &status, &r.ChanceOfPlaying, &r.News, &r.SnapshotAtMs); err != nil {
			return nil, fmt.Errorf("scan availability row: %w", err)
		}
		r.Status = domain.AvailabilityStatus(status)

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability rows: %w", err)
	}

	return result, nil
}
