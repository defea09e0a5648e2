package httpapi

import (
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StartSessionResponse is the response for POST /cases/today/start
type StartSessionResponse struct {
	SessionID   string             `json:"session_id"`
	Resumed     bool               `json:"resumed"`
	IPRemaining int                `json:"ip_remaining"`
	StartedAt   time.Time          `json:"started_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
	Case        *models.CasePublic `json:"case"`
}

// InvokeToolRequest is the request body for POST /cases/{caseID}/tools/{tool}
type InvokeToolRequest struct {
	SessionID string `json:"session_id"`

	// CandidateIndex selects the candidate for the signature tool
	CandidateIndex *int `json:"candidate_index,omitempty"`
}

// InvokeToolResponse carries the tool's findings
type InvokeToolResponse struct {
	Tool        string `json:"tool"`
	IPRemaining int    `json:"ip_remaining"`
	CropRef     string `json:"crop_ref,omitempty"`
	Hint        string `json:"hint"`
}

// SubmitGuessRequest is the request body for POST /cases/{caseID}/guess
type SubmitGuessRequest struct {
	SessionID      string `json:"session_id"`
	CandidateIndex *int   `json:"candidate_index"`
	Rationale      string `json:"rationale,omitempty"`
}

// RevealResponse discloses the solution after a scored guess
type RevealResponse struct {
	AnswerIndex    int      `json:"answer_index"`
	Explanation    string   `json:"explanation"`
	FlagsSignature []string `json:"flags_signature"`
	FlagsMetadata  []string `json:"flags_metadata"`
	FlagsFinancial []string `json:"flags_financial"`
}

// SubmitGuessResponse reports the guess outcome
type SubmitGuessResponse struct {
	Correct     bool            `json:"correct"`
	Score       int             `json:"score"`
	SecondsLeft int             `json:"seconds_left"`
	IPRemaining int             `json:"ip_remaining"`
	Reveal      *RevealResponse `json:"reveal"`
}

// LeaderboardEntryResponse is one row of the ranked view
type LeaderboardEntryResponse struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Score       int       `json:"score"`
	Correct     bool      `json:"correct"`
	SecondsLeft int       `json:"seconds_left"`
	IPLeft      int       `json:"ip_left"`
	Rationale   string    `json:"rationale,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// StandingResponse is the requester's own score and 1-based rank
type StandingResponse struct {
	Score int `json:"score"`
	Rank  int `json:"rank"`
}

// LeaderboardResponse is the response for the leaderboard endpoints
type LeaderboardResponse struct {
	CaseID string                      `json:"case_id"`
	Top    []*LeaderboardEntryResponse `json:"top"`
	Me     *StandingResponse           `json:"me,omitempty"`
}
