package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
)

// memoryRepository implements the Repository interface with an in-process map.
// A single mutex guards both maps: reads can mutate state through lazy expiry,
// so there is no read-only path to optimize.
type memoryRepository struct {
	mu sync.Mutex

	// sessions is keyed by session ID
	sessions map[string]*models.Session

	// active indexes the active session per (player, case) pair
	active map[string]string
}

// NewMemory creates a new in-memory session repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		sessions: make(map[string]*models.Session),
		active:   make(map[string]string),
	}
}

func activeKey(playerID, caseID string) string {
	return fmt.Sprintf("%s:%s", playerID, caseID)
}

// copySession returns a snapshot so callers cannot mutate stored state
func copySession(s *models.Session) *models.Session {
	out := *s
	out.Actions = make([]*models.Action, len(s.Actions))
	for i, a := range s.Actions {
		action := *a
		out.Actions[i] = &action
	}
	return &out
}

// SaveSession persists a session
func (r *memoryRepository) SaveSession(ctx context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}
	if input.Session.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copySession(input.Session)
	r.sessions[stored.ID] = stored

	key := activeKey(stored.PlayerID, stored.CaseID)
	if stored.Status == models.SessionStatusActive {
		r.active[key] = stored.ID
	} else if r.active[key] == stored.ID {
		delete(r.active, key)
	}

	return nil
}

// expireLocked applies the lazy expiry transition. Caller holds the lock.
func (r *memoryRepository) expireLocked(s *models.Session, input *GetSessionInput) {
	if s.Status == models.SessionStatusActive && s.Expired(input.Now) {
		s.Status = models.SessionStatusExpired
		delete(r.active, activeKey(s.PlayerID, s.CaseID))
	}
}

// GetSession retrieves a session by ID, applying lazy expiry
func (r *memoryRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[input.SessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	r.expireLocked(s, input)

	return copySession(s), nil
}

// GetActiveSession retrieves the active session for a (player, case) pair
func (r *memoryRepository) GetActiveSession(ctx context.Context, input *GetActiveSessionInput) (*models.Session, error) {
	if input == nil || input.PlayerID == "" || input.CaseID == "" {
		return nil, errors.New("input, player ID and case ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.active[activeKey(input.PlayerID, input.CaseID)]
	if !ok {
		return nil, ErrSessionNotFound
	}

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	r.expireLocked(s, &GetSessionInput{SessionID: sessionID, Now: input.Now})
	if s.Status != models.SessionStatusActive {
		return nil, ErrSessionNotFound
	}

	return copySession(s), nil
}

// SpendIP atomically deducts Investigation Points and appends the action
func (r *memoryRepository) SpendIP(ctx context.Context, input *SpendIPInput) (*SpendIPOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}
	if input.Cost < 0 {
		return nil, errors.New("cost cannot be negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[input.SessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := r.checkActiveLocked(s, input.Now); err != nil {
		return nil, err
	}

	if s.IPRemaining < input.Cost {
		return nil, ErrInsufficientIP
	}

	s.IPRemaining -= input.Cost
	if input.Action != nil {
		action := *input.Action
		s.Actions = append(s.Actions, &action)
	}

	return &SpendIPOutput{IPRemaining: s.IPRemaining}, nil
}

// FinishSession atomically transitions an active session to finished
func (r *memoryRepository) FinishSession(ctx context.Context, input *FinishSessionInput) (*FinishSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[input.SessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := r.checkActiveLocked(s, input.Now); err != nil {
		return nil, err
	}

	s.Status = models.SessionStatusFinished
	delete(r.active, activeKey(s.PlayerID, s.CaseID))

	return &FinishSessionOutput{Session: copySession(s)}, nil
}

// checkActiveLocked validates that a session can still be mutated, applying
// the expiry transition when the clock has run out. Caller holds the lock.
func (r *memoryRepository) checkActiveLocked(s *models.Session, now time.Time) error {
	switch s.Status {
	case models.SessionStatusFinished:
		return ErrSessionFinished
	case models.SessionStatusExpired:
		return ErrSessionExpired
	}

	if s.Expired(now) {
		s.Status = models.SessionStatusExpired
		delete(r.active, activeKey(s.PlayerID, s.CaseID))
		return ErrSessionExpired
	}

	return nil
}
