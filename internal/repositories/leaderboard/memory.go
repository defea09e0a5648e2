package leaderboard

import (
	"context"
	"errors"
	"sync"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
)

// memoryRepository implements the Repository interface with an in-process map
type memoryRepository struct {
	mu sync.RWMutex

	// entries is keyed by case ID, then player ID
	entries map[string]map[string]*models.LeaderboardEntry
}

// NewMemory creates a new in-memory leaderboard repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		entries: make(map[string]map[string]*models.LeaderboardEntry),
	}
}

// UpsertEntry records a play, replacing any earlier entry for the pair
func (r *memoryRepository) UpsertEntry(ctx context.Context, input *UpsertEntryInput) error {
	if input == nil || input.Entry == nil {
		return errors.New("input and entry cannot be nil")
	}
	if input.Entry.CaseID == "" || input.Entry.PlayerID == "" {
		return errors.New("case ID and player ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	board, ok := r.entries[input.Entry.CaseID]
	if !ok {
		board = make(map[string]*models.LeaderboardEntry)
		r.entries[input.Entry.CaseID] = board
	}

	entry := *input.Entry
	board[entry.PlayerID] = &entry

	return nil
}

// ranked returns a freshly ordered snapshot of a case's entries.
// Caller holds at least a read lock.
func (r *memoryRepository) ranked(caseID string) []*models.LeaderboardEntry {
	board := r.entries[caseID]
	entries := make([]*models.LeaderboardEntry, 0, len(board))
	for _, e := range board {
		entry := *e
		entries = append(entries, &entry)
	}
	rankEntries(entries)
	return entries
}

// GetTopEntries returns the ranked slice for a case, capped at the limit
func (r *memoryRepository) GetTopEntries(ctx context.Context, input *GetTopEntriesInput) (*GetTopEntriesOutput, error) {
	if input == nil || input.CaseID == "" {
		return nil, errors.New("input and case ID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.ranked(input.CaseID)
	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}

	return &GetTopEntriesOutput{Entries: entries}, nil
}

// GetRank returns a player's 1-based position in the full ranking
func (r *memoryRepository) GetRank(ctx context.Context, input *GetRankInput) (*GetRankOutput, error) {
	if input == nil || input.CaseID == "" || input.PlayerID == "" {
		return nil, errors.New("input, case ID and player ID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, e := range r.ranked(input.CaseID) {
		if e.PlayerID == input.PlayerID {
			return &GetRankOutput{Rank: i + 1, Entry: e}, nil
		}
	}

	return nil, ErrEntryNotFound
}
