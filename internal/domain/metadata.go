package domain

// AvailabilityStatus is the FPL player status code.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "a"
	StatusDoubtful    AvailabilityStatus = "d"
	StatusInjured     AvailabilityStatus = "i"
	StatusSuspended   AvailabilityStatus = "s"
	StatusUnavailable AvailabilityStatus = "u"
	StatusNotInSquad  AvailabilityStatus = "n"
)

// PlayerAvailability is a pre-deadline availability snapshot.
// Corresponds to player_availability table in PostgreSQL.
type PlayerAvailability struct {
	PlayerID        int
	Season          string
	Gameweek        int // gameweek the snapshot applies to
	Status          AvailabilityStatus
	ChanceOfPlaying *int  // percent, NULL when FPL reports none
	News            string
	SnapshotAtMs    int64 // when the snapshot was taken, Unix ms
}

// StatCorrection records an explicit correction to a MatchStatRaw field.
// Raw rows are never updated in place; corrections are overlaid at panel build.
// Corresponds to stat_corrections table in PostgreSQL.
type StatCorrection struct {
	CorrectionID string // deterministic hash, see idhash.ComputeCorrectionID
	PlayerID     int
	Season       string
	Gameweek     int
	MatchID      int
	Field        string // correctable field, see CorrectableFields
	OldValue     float64
	NewValue     float64
	Reason       string
	RecordedAtMs int64
}

// Correctable MatchStatRaw fields.
const (
	FieldMinutes     = "minutes"
	FieldTotalPoints = "total_points"
	FieldGoalsScored = "goals_scored"
	FieldAssists     = "assists"
	FieldBonus       = "bonus"
	FieldBPS         = "bps"
	FieldXG          = "xg"
	FieldXA          = "xa"
	FieldShots       = "shots"
	FieldKeyPasses   = "key_passes"
	FieldRedCards    = "red_cards"
)

// CorrectableFields lists the fields a StatCorrection may target.
var CorrectableFields = map[string]bool{
	FieldMinutes:     true,
	FieldTotalPoints: true,
	FieldGoalsScored: true,
	FieldAssists:     true,
	FieldBonus:       true,
	FieldBPS:         true,
	FieldXG:          true,
	FieldXA:          true,
	FieldShots:       true,
	FieldKeyPasses:   true,
	FieldRedCards:    true,
}
