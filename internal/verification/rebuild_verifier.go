package verification

import (
	"context"
	"errors"
	"fmt"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/panel"
	"fpl-points-lab/internal/storage"
)

var (
	// ErrVersionNotFound is returned when a panel version has no stored rows.
	ErrVersionNotFound = errors.New("panel version not found")

	// ErrNotIdempotent is returned when two builds of the same raw input differ.
	ErrNotIdempotent = errors.New("panel rebuild is not idempotent")
)

// FieldDivergence represents a mismatch between stored and rebuilt values.
type FieldDivergence struct {
	Key      domain.PanelKey
	Field    string
	Expected interface{} // stored value
	Actual   interface{} // rebuilt value
}

// IdempotenceResult compares two independent builds of the same raw input.
type IdempotenceResult struct {
	First  string
	Second string
}

// Match reports whether both builds produced the same fingerprint.
func (r *IdempotenceResult) Match() bool {
	return r.First == r.Second
}

// Err returns ErrNotIdempotent with both fingerprints on mismatch, or nil.
func (r *IdempotenceResult) Err() error {
	if r.Match() {
		return nil
	}
	return fmt.Errorf("%w: first %s, second %s", ErrNotIdempotent, r.First, r.Second)
}

// BuildFunc builds a full panel from the same raw input on every call.
type BuildFunc func() (*panel.Panel, error)

// VerifyIdempotent builds the panel twice and compares fingerprints.
func VerifyIdempotent(build BuildFunc, windows []int) (*IdempotenceResult, error) {
	first, err := build()
	if err != nil {
		return nil, fmt.Errorf("first build: %w", err)
	}
	second, err := build()
	if err != nil {
		return nil, fmt.Errorf("second build: %w", err)
	}
	return &IdempotenceResult{
		First:  panel.Fingerprint(first.Rows, windows),
		Second: panel.Fingerprint(second.Rows, windows),
	}, nil
}

// StoredVerifier compares persisted panel rows against a fresh build.
type StoredVerifier struct {
	store storage.PanelStore
}

// NewStoredVerifier creates a verifier reading from store.
func NewStoredVerifier(store storage.PanelStore) *StoredVerifier {
	return &StoredVerifier{store: store}
}

// VerifyVersion loads a version's rows for rebuilt's season and compares
// them field by field. Returns ErrVersionNotFound if nothing is stored.
func (v *StoredVerifier) VerifyVersion(ctx context.Context, version string, rebuilt []*domain.PanelRow) ([]FieldDivergence, error) {
	if len(rebuilt) == 0 {
		return nil, nil
	}
	stored, err := v.store.GetBySeason(ctx, version, rebuilt[0].Season)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, ErrVersionNotFound
	}

	byKey := make(map[domain.PanelKey]*domain.PanelRow, len(stored))
	for _, r := range stored {
		byKey[r.Key()] = r
	}

	var divergences []FieldDivergence
	for _, r := range rebuilt {
		s, ok := byKey[r.Key()]
		if !ok {
			divergences = append(divergences, FieldDivergence{Key: r.Key(), Field: "Row", Expected: nil, Actual: r.Key()})
			continue
		}
		delete(byKey, r.Key())
		divergences = append(divergences, ComparePanelRows(s, r)...)
	}
	for key := range byKey {
		divergences = append(divergences, FieldDivergence{Key: key, Field: "Row", Expected: key, Actual: nil})
	}
	return divergences, nil
}

// ComparePanelRows compares two rows with the same key and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func ComparePanelRows(stored, rebuilt *domain.PanelRow) []FieldDivergence {
	var divergences []FieldDivergence
	key := rebuilt.Key()
	diff := func(field string, expected, actual interface{}) {
		divergences = append(divergences, FieldDivergence{Key: key, Field: field, Expected: expected, Actual: actual})
	}

	if stored.Position != rebuilt.Position {
		diff("Position", stored.Position, rebuilt.Position)
	}
	if stored.TeamID != rebuilt.TeamID {
		diff("TeamID", stored.TeamID, rebuilt.TeamID)
	}
	if !floatEquals(stored.Price, rebuilt.Price) {
		diff("Price", stored.Price, rebuilt.Price)
	}
	if stored.Status != rebuilt.Status {
		diff("Status", stored.Status, rebuilt.Status)
	}
	if stored.FixtureCount != rebuilt.FixtureCount {
		diff("FixtureCount", stored.FixtureCount, rebuilt.FixtureCount)
	}
	if !floatPtrEquals(stored.FixtureDifficulty, rebuilt.FixtureDifficulty) {
		diff("FixtureDifficulty", stored.FixtureDifficulty, rebuilt.FixtureDifficulty)
	}
	if !floatPtrEquals(stored.DaysRest, rebuilt.DaysRest) {
		diff("DaysRest", stored.DaysRest, rebuilt.DaysRest)
	}
	if stored.ObservedMinutes != rebuilt.ObservedMinutes {
		diff("ObservedMinutes", stored.ObservedMinutes, rebuilt.ObservedMinutes)
	}
	if stored.ObservedPoints != rebuilt.ObservedPoints {
		diff("ObservedPoints", stored.ObservedPoints, rebuilt.ObservedPoints)
	}

	if len(stored.Windows) != len(rebuilt.Windows) {
		diff("Windows", len(stored.Windows), len(rebuilt.Windows))
	} else {
		for i := range stored.Windows {
			sw, rw := stored.Windows[i], rebuilt.Windows[i]
			prefix := fmt.Sprintf("Windows[%d].", rw.Size)
			if sw.Player.SampleSize != rw.Player.SampleSize {
				diff(prefix+"Player.SampleSize", sw.Player.SampleSize, rw.Player.SampleSize)
			}
			if !floatPtrEquals(sw.Player.Points, rw.Player.Points) {
				diff(prefix+"Player.Points", sw.Player.Points, rw.Player.Points)
			}
			if !floatPtrEquals(sw.Player.Minutes, rw.Player.Minutes) {
				diff(prefix+"Player.Minutes", sw.Player.Minutes, rw.Player.Minutes)
			}
			if !floatPtrEquals(sw.Team.GoalsScored, rw.Team.GoalsScored) {
				diff(prefix+"Team.GoalsScored", sw.Team.GoalsScored, rw.Team.GoalsScored)
			}
			if !floatPtrEquals(sw.Opponent.GoalsConceded, rw.Opponent.GoalsConceded) {
				diff(prefix+"Opponent.GoalsConceded", sw.Opponent.GoalsConceded, rw.Opponent.GoalsConceded)
			}
		}
	}

	switch {
	case stored.Target == nil && rebuilt.Target == nil:
	case stored.Target == nil || rebuilt.Target == nil:
		diff("Target", stored.Target, rebuilt.Target)
	case *stored.Target != *rebuilt.Target:
		diff("Target", *stored.Target, *rebuilt.Target)
	}

	return divergences
}
