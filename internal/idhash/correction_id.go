package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// ComputeCorrectionID computes a deterministic correction_id using SHA256.
// Formula: SHA256(player_id|season|gameweek|match_id|field|new_value|recorded_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeCorrectionID(
	playerID int,
	season string,
	gameweek int,
	matchID int,
	field string,
	newValue float64,
	recordedAtMs int64,
) string {
	data := fmt.Sprintf("%d|%s|%d|%d|%s|%s|%d",
		playerID,
		season,
		gameweek,
		matchID,
		field,
		strconv.FormatFloat(newValue, 'g', -1, 64),
		recordedAtMs,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
