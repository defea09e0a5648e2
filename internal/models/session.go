package models

import (
	"time"
)

// SessionStatus represents the current state of a play session
type SessionStatus string

const (
	// SessionStatusActive indicates the countdown is running and tools may be used
	SessionStatusActive SessionStatus = "active"

	// SessionStatusExpired indicates the timer ran out before a guess was made
	SessionStatusExpired SessionStatus = "expired"

	// SessionStatusFinished indicates a guess was submitted
	SessionStatusFinished SessionStatus = "finished"
)

// Action is one entry in a session's append-only tool log
type Action struct {
	// Type is the tool invocation kind, e.g. "tool_signature"
	Type string `json:"type"`

	// CandidateIndex is the candidate the tool was aimed at, -1 if not applicable
	CandidateIndex int `json:"candidate_index"`

	Timestamp time.Time `json:"ts"`
}

// Session represents one player's attempt at a case
type Session struct {
	// ID is the opaque unique token for this session
	ID string `json:"session_id"`

	// CaseID is the case this session is pinned to
	CaseID string `json:"case_id"`

	// PlayerID and PlayerName come from forwarded identity headers
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	// IPRemaining is the Investigation Point budget left; it only ever decreases
	IPRemaining int `json:"ip_remaining"`

	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Status SessionStatus `json:"status"`

	// Actions is the audit trail of tool invocations
	Actions []*Action `json:"actions"`
}

// Expired reports whether the session's countdown has run out at the given time
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
