package leaderboard

import (
	"sort"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
)

// UpsertEntryInput contains parameters for recording a play
type UpsertEntryInput struct {
	// Entry is the result to record; its (CaseID, PlayerID) is the key
	Entry *models.LeaderboardEntry
}

// GetTopEntriesInput contains parameters for reading the ranked view
type GetTopEntriesInput struct {
	// CaseID selects the per-case board
	CaseID string

	// Limit caps the returned slice; zero or negative means no cap
	Limit int
}

// GetTopEntriesOutput contains the ranked entries
type GetTopEntriesOutput struct {
	Entries []*models.LeaderboardEntry
}

// GetRankInput contains parameters for a player's rank lookup
type GetRankInput struct {
	CaseID   string
	PlayerID string
}

// GetRankOutput contains the rank lookup result
type GetRankOutput struct {
	// Rank is the 1-based position in the full ranking
	Rank int

	// Entry is the player's recorded result
	Entry *models.LeaderboardEntry
}

// rankEntries orders entries by score descending, ties broken by earliest
// recorded time, then by player ID for a stable total order.
func rankEntries(entries []*models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].RecordedAt.Equal(entries[j].RecordedAt) {
			return entries[i].RecordedAt.Before(entries[j].RecordedAt)
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}
