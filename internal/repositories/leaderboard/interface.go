package leaderboard

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/hiddenstroke/internal/repositories/leaderboard Repository

import (
	"context"
	"errors"
)

// ErrEntryNotFound is returned when a player has no recorded entry for a case
var ErrEntryNotFound = errors.New("leaderboard entry not found")

// Repository stores at most one entry per (case, player). Rankings are
// ordered by score descending with ties broken by earliest recorded time.
type Repository interface {
	// UpsertEntry records a play, replacing any earlier entry for the pair
	UpsertEntry(ctx context.Context, input *UpsertEntryInput) error

	// GetTopEntries returns the ranked slice for a case, capped at the limit
	GetTopEntries(ctx context.Context, input *GetTopEntriesInput) (*GetTopEntriesOutput, error)

	// GetRank returns a player's 1-based position in the full ranking
	GetRank(ctx context.Context, input *GetRankInput) (*GetRankOutput, error)
}
