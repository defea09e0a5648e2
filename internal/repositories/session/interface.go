package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/hiddenstroke/internal/repositories/session Repository

import (
	"context"
	"errors"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session's countdown has run out
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionFinished is returned when a guess was already submitted
	ErrSessionFinished = errors.New("session already finished")

	// ErrInsufficientIP is returned when a spend exceeds the remaining budget
	ErrInsufficientIP = errors.New("insufficient investigation points")
)

// Repository owns all session state. Reads apply lazy expiry: an active
// session past its deadline transitions to expired before it is returned.
// SpendIP and FinishSession are atomic; concurrent calls against the same
// session can never double-spend or double-finish.
type Repository interface {
	// SaveSession persists a session
	SaveSession(ctx context.Context, input *SaveSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// GetActiveSession retrieves the active session for a (player, case) pair
	GetActiveSession(ctx context.Context, input *GetActiveSessionInput) (*models.Session, error)

	// SpendIP atomically deducts Investigation Points and appends the action
	SpendIP(ctx context.Context, input *SpendIPInput) (*SpendIPOutput, error)

	// FinishSession atomically transitions an active session to finished
	FinishSession(ctx context.Context, input *FinishSessionInput) (*FinishSessionOutput, error)
}
