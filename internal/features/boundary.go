package features

import "fpl-points-lab/internal/domain"

// windowRange returns the inclusive gameweek bounds of a window of size n
// ending just before gameweek t. from may be < 1 early in the season.
func windowRange(t, n int) (from, to int) {
	return t - n, t - 1
}

// checkBefore asserts every contributing gameweek is strictly before the
// row's gameweek.
func checkBefore(key domain.PanelKey, component string, gameweeks []int) error {
	for _, gw := range gameweeks {
		if gw >= key.Gameweek {
			return &domain.LeakageError{
				Key:             key,
				Component:       component,
				OffendingGW:     gw,
				AllowedBeforeGW: key.Gameweek,
			}
		}
	}
	return nil
}
