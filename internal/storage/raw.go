package storage

import (
	"context"
	"fmt"

	"fpl-points-lab/internal/domain"
)

// RawStores groups the raw-table stores of one backend.
type RawStores struct {
	MatchStats   MatchStatStore
	TeamStats    TeamMatchStatStore
	Fixtures     FixtureStore
	Availability AvailabilityStore
	Corrections  CorrectionStore
}

// SeasonRaw holds all raw inputs of one season.
type SeasonRaw struct {
	Season       string
	MatchStats   []*domain.MatchStatRaw
	TeamStats    []*domain.TeamMatchStat
	Fixtures     []*domain.Fixture
	Availability []*domain.PlayerAvailability
	Corrections  []*domain.StatCorrection
}

// LoadSeason reads every raw table for a season.
// Availability and Corrections stores are optional.
func (r *RawStores) LoadSeason(ctx context.Context, season string) (*SeasonRaw, error) {
	raw := &SeasonRaw{Season: season}

	var err error
	if raw.MatchStats, err = r.MatchStats.GetBySeason(ctx, season); err != nil {
		return nil, fmt.Errorf("load match stats: %w", err)
	}
	if raw.TeamStats, err = r.TeamStats.GetBySeason(ctx, season); err != nil {
		return nil, fmt.Errorf("load team stats: %w", err)
	}
	if raw.Fixtures, err = r.Fixtures.GetBySeason(ctx, season); err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	if r.Availability != nil {
		if raw.Availability, err = r.Availability.GetBySeason(ctx, season); err != nil {
			return nil, fmt.Errorf("load availability: %w", err)
		}
	}
	if r.Corrections != nil {
		if raw.Corrections, err = r.Corrections.GetBySeason(ctx, season); err != nil {
			return nil, fmt.Errorf("load corrections: %w", err)
		}
	}

	return raw, nil
}
