package stub

import (
	"context"
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

// StubSeasonSource returns a fixed in-memory season for testing.
// Rows can be intentionally unordered to test sorting.
// Implements ingestion.SeasonSource interface.
type StubSeasonSource struct {
	raw *storage.SeasonRaw
}

// NewStubSeasonSource creates a new stub source serving raw.
func NewStubSeasonSource(raw *storage.SeasonRaw) *StubSeasonSource {
	return &StubSeasonSource{raw: raw}
}

// Load returns copies of the stored rows. Returns an error for any other season.
func (s *StubSeasonSource) Load(_ context.Context, season string) (*storage.SeasonRaw, error) {
	if s.raw == nil || s.raw.Season != season {
		return nil, fmt.Errorf("stub: no data for season %q", season)
	}

	out := &storage.SeasonRaw{Season: season}
	for _, m := range s.raw.MatchStats {
		c := *m
		out.MatchStats = append(out.MatchStats, &c)
	}
	for _, t := range s.raw.TeamStats {
		c := *t
		out.TeamStats = append(out.TeamStats, &c)
	}
	for _, f := range s.raw.Fixtures {
		c := *f
		out.Fixtures = append(out.Fixtures, &c)
	}
	for _, a := range s.raw.Availability {
		c := *a
		out.Availability = append(out.Availability, &c)
	}
	out.Corrections = append([]*domain.StatCorrection(nil), s.raw.Corrections...)
	return out, nil
}
