package memory

import "fpl-points-lab/internal/storage"

// NewRawStores returns empty in-memory stores for every raw table.
func NewRawStores() *storage.RawStores {
	return &storage.RawStores{
		MatchStats:   NewMatchStatStore(),
		TeamStats:    NewTeamMatchStatStore(),
		Fixtures:     NewFixtureStore(),
		Availability: NewAvailabilityStore(),
		Corrections:  NewCorrectionStore(),
	}
}
