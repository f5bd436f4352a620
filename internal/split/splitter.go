// Package split partitions a panel into time-ordered train/test views.
package split

import (
	"fmt"

	"fpl-points-lab/internal/domain"
)

// Split is one expanding-window partition: train gameweeks 1..Cutoff, test
// gameweek Cutoff+1.
type Split struct {
	Season       string
	Cutoff       int
	TestGameweek int
	Train        []*domain.PanelRow
	Test         []*domain.PanelRow
}

// Trainable returns train rows whose target is defined and falls at or
// before the cutoff. Rows labelled with the test gameweek are purged.
func (s *Split) Trainable() []*domain.PanelRow {
	var out []*domain.PanelRow
	for _, r := range s.Train {
		if r.Target != nil && r.Target.Gameweek <= s.Cutoff {
			out = append(out, r)
		}
	}
	return out
}

// Evaluable returns test rows with a defined target.
func (s *Split) Evaluable() []*domain.PanelRow {
	var out []*domain.PanelRow
	for _, r := range s.Test {
		if r.Target != nil {
			out = append(out, r)
		}
	}
	return out
}

// Splitter indexes panel rows by season.
type Splitter struct {
	bySeason map[string][]*domain.PanelRow
	last     map[string]int
}

// NewSplitter creates a splitter over rows. Rows keep their input order
// within each split.
func NewSplitter(rows []*domain.PanelRow) *Splitter {
	s := &Splitter{
		bySeason: make(map[string][]*domain.PanelRow),
		last:     make(map[string]int),
	}
	for _, r := range rows {
		s.bySeason[r.Season] = append(s.bySeason[r.Season], r)
		if r.Gameweek > s.last[r.Season] {
			s.last[r.Season] = r.Gameweek
		}
	}
	return s
}

// LastGameweek returns the highest gameweek of a season, 0 if unknown.
func (s *Splitter) LastGameweek(season string) int {
	return s.last[season]
}

// Split returns train rows with gameweek <= k and test rows with gameweek k+1.
// Returns *domain.ConfigError if k is outside [1, last_gameweek-1].
func (s *Splitter) Split(season string, k int) (*Split, error) {
	last := s.last[season]
	if last == 0 {
		return nil, &domain.ConfigError{Field: "season", Detail: fmt.Sprintf("no panel rows for season %q", season)}
	}
	if k < 1 || k > last-1 {
		return nil, &domain.ConfigError{Field: "cutoff", Detail: fmt.Sprintf("cutoff %d outside [1, %d]", k, last-1)}
	}

	sp := &Split{Season: season, Cutoff: k, TestGameweek: k + 1}
	for _, r := range s.bySeason[season] {
		switch {
		case r.Gameweek <= k:
			sp.Train = append(sp.Train, r)
		case r.Gameweek == k+1:
			sp.Test = append(sp.Test, r)
		}
	}
	return sp, nil
}

// WalkForward returns the splits for k = start..last_gameweek-1 in order.
// Returns *domain.ConfigError if start is outside [1, last_gameweek-1].
func (s *Splitter) WalkForward(season string, start int) ([]*Split, error) {
	last := s.last[season]
	if last == 0 {
		return nil, &domain.ConfigError{Field: "season", Detail: fmt.Sprintf("no panel rows for season %q", season)}
	}
	if start < 1 || start > last-1 {
		return nil, &domain.ConfigError{Field: "start_cutoff", Detail: fmt.Sprintf("start %d outside [1, %d]", start, last-1)}
	}

	splits := make([]*Split, 0, last-start)
	for k := start; k < last; k++ {
		sp, err := s.Split(season, k)
		if err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, nil
}
