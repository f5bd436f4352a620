package domain

import (
	"errors"
	"fmt"
)

// Pipeline error classes. Match with errors.Is; extract details with errors.As.
var (
	// ErrSchema: a required key could not be resolved. Fatal to the run.
	ErrSchema = errors.New("schema error")

	// ErrLeakage: a feature or target referenced out-of-window data. Fatal to the run.
	ErrLeakage = errors.New("leakage error")

	// ErrConfig: invalid pipeline or split parameters.
	ErrConfig = errors.New("config error")

	// ErrMissingData: expected raw rows are absent. Recovered with null features.
	ErrMissingData = errors.New("missing data")
)

// SchemaError reports an unresolvable join or key.
type SchemaError struct {
	Key    PanelKey
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: player=%d season=%s gameweek=%d: %s",
		e.Key.PlayerID, e.Key.Season, e.Key.Gameweek, e.Detail)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// LeakageError reports a computation for a row that touched data from the
// row's own gameweek or later.
type LeakageError struct {
	Key             PanelKey
	Component       string // e.g. "player_form", "team_form", "target"
	OffendingGW     int    // gameweek of the offending input
	AllowedBeforeGW int    // inputs must have gameweek < AllowedBeforeGW
}

func (e *LeakageError) Error() string {
	return fmt.Sprintf("leakage error: player=%d season=%s gameweek=%d: %s used gameweek %d (allowed < %d)",
		e.Key.PlayerID, e.Key.Season, e.Key.Gameweek, e.Component, e.OffendingGW, e.AllowedBeforeGW)
}

// Is reports whether target is ErrLeakage.
func (e *LeakageError) Is(target error) bool { return target == ErrLeakage }

// ConfigError reports invalid parameters.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Detail)
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// MissingDataError reports a known player/gameweek without raw rows.
type MissingDataError struct {
	Key    PanelKey
	Detail string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: player=%d season=%s gameweek=%d: %s",
		e.Key.PlayerID, e.Key.Season, e.Key.Gameweek, e.Detail)
}

// Is reports whether target is ErrMissingData.
func (e *MissingDataError) Is(target error) bool { return target == ErrMissingData }
