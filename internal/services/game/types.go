package game

import (
	"github.com/KirkDiggler/hiddenstroke/internal/catalog"
	"github.com/KirkDiggler/hiddenstroke/internal/common/clock"
	"github.com/KirkDiggler/hiddenstroke/internal/common/uuid"
	"github.com/KirkDiggler/hiddenstroke/internal/models"
	leaderboardRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/leaderboard"
	sessionRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/session"
)

const defaultLeaderboardLimit = 50

// Config holds the dependencies for the game service.
type Config struct {
	Catalog         *catalog.Catalog
	SessionRepo     sessionRepo.Repository
	LeaderboardRepo leaderboardRepo.Repository
	Clock           clock.Clock
	UUIDGenerator   uuid.UUID

	// DisableFinancialTool switches off the financial forensics tool.
	// The zero value keeps it available.
	DisableFinancialTool bool

	// LeaderboardLimit caps GetLeaderboard results. Zero means the default.
	LeaderboardLimit int
}

// StartSessionInput identifies the player starting today's case.
type StartSessionInput struct {
	PlayerID   string
	PlayerName string
}

// StartSessionOutput carries the session and the player-safe case view.
type StartSessionOutput struct {
	Session *models.Session
	Case    *models.CasePublic

	// Resumed is true when an existing active session was returned
	// instead of a fresh one.
	Resumed bool
}

// InvokeToolInput requests one tool run within a session.
type InvokeToolInput struct {
	CaseID    string
	SessionID string
	Tool      models.ToolKind

	// CandidateIndex selects the candidate for the signature tool.
	// Metadata and financial tools ignore it.
	CandidateIndex int
}

// InvokeToolOutput carries the tool's findings and the new point balance.
type InvokeToolOutput struct {
	Tool        models.ToolKind
	IPRemaining int

	// CropRef references the magnified signature crop. Signature tool only.
	CropRef string

	// Hint is one advisory sentence: the case's first authored flag for the
	// tool, or a generic advisory when the case carries none. The remaining
	// flags stay private until the post-guess reveal.
	Hint string
}

// SubmitGuessInput carries the player's final answer.
type SubmitGuessInput struct {
	CaseID         string
	SessionID      string
	CandidateIndex int
	Rationale      string
}

// Reveal discloses the solution after a guess is scored.
type Reveal struct {
	AnswerIndex    int
	Explanation    string
	FlagsSignature []string
	FlagsMetadata  []string
	FlagsFinancial []string
}

// SubmitGuessOutput reports the outcome of the final guess.
type SubmitGuessOutput struct {
	Correct     bool
	Score       int
	SecondsLeft int
	IPRemaining int
	Reveal      *Reveal
}

// GetLeaderboardInput selects a case board. An empty CaseID means today's case.
type GetLeaderboardInput struct {
	CaseID string

	// PlayerID, when set, resolves the requester's own standing.
	PlayerID string
}

// PlayerStanding is the requester's own score and 1-based rank.
type PlayerStanding struct {
	Score int
	Rank  int
}

// GetLeaderboardOutput carries the top entries for the case.
type GetLeaderboardOutput struct {
	CaseID string
	Top    []*models.LeaderboardEntry

	// Me is nil when the requester has no recorded entry.
	Me *PlayerStanding
}
