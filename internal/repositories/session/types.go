package session

import (
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
)

// SaveSessionInput contains parameters for persisting a session
type SaveSessionInput struct {
	// Session is the session to persist
	Session *models.Session
}

// GetSessionInput contains parameters for retrieving a session
type GetSessionInput struct {
	// SessionID is the unique identifier for the session
	SessionID string

	// Now is the caller's clock reading, used for lazy expiry
	Now time.Time
}

// GetActiveSessionInput contains parameters for finding a player's active session
type GetActiveSessionInput struct {
	// PlayerID is the forwarded player identity
	PlayerID string

	// CaseID is the case the session must be pinned to
	CaseID string

	// Now is the caller's clock reading, used for lazy expiry
	Now time.Time
}

// SpendIPInput contains parameters for deducting Investigation Points
type SpendIPInput struct {
	// SessionID is the unique identifier for the session
	SessionID string

	// Cost is the number of points to deduct
	Cost int

	// Action is the audit record appended on success
	Action *models.Action

	// Now is the caller's clock reading, used for the expiry check
	Now time.Time
}

// SpendIPOutput contains the result of a successful spend
type SpendIPOutput struct {
	// IPRemaining is the balance after the deduction
	IPRemaining int
}

// FinishSessionInput contains parameters for finishing a session
type FinishSessionInput struct {
	// SessionID is the unique identifier for the session
	SessionID string

	// Now is the caller's clock reading, used for the expiry check
	Now time.Time
}

// FinishSessionOutput contains the result of finishing a session
type FinishSessionOutput struct {
	// Session is the finished session snapshot
	Session *models.Session
}
