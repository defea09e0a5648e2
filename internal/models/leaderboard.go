package models

import (
	"time"
)

// LeaderboardEntry is one player's recorded result for a case.
// Keyed by (CaseID, PlayerID); a later guess overwrites the earlier entry.
type LeaderboardEntry struct {
	CaseID     string `json:"case_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	Score       int  `json:"score"`
	Correct     bool `json:"correct"`
	SecondsLeft int  `json:"seconds_left"`
	IPLeft      int  `json:"ip_left"`

	// Rationale is the optional free-text justification submitted with the guess
	Rationale string `json:"rationale,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}
