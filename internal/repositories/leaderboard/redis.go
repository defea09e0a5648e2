package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
	"github.com/redis/go-redis/v9"
)

// boardKeyPrefix namespaces the per-case entry hashes
const boardKeyPrefix = "leaderboard:"

// Config holds configuration for the Redis leaderboard repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis. Each case
// is a hash of player ID to JSON entry; ranking happens at read time, which
// is fine for the per-case-per-day working set this serves.
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed leaderboard repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func boardKey(caseID string) string {
	return fmt.Sprintf("%s%s", boardKeyPrefix, caseID)
}

// UpsertEntry records a play, replacing any earlier entry for the pair
func (r *redisRepository) UpsertEntry(ctx context.Context, input *UpsertEntryInput) error {
	if input == nil || input.Entry == nil {
		return errors.New("input and entry cannot be nil")
	}
	if input.Entry.CaseID == "" || input.Entry.PlayerID == "" {
		return errors.New("case ID and player ID cannot be empty")
	}

	entryJSON, err := json.Marshal(input.Entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := r.client.HSet(ctx, boardKey(input.Entry.CaseID), input.Entry.PlayerID, entryJSON).Err(); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	return nil
}

// readBoard loads and ranks all entries for a case
func (r *redisRepository) readBoard(ctx context.Context, caseID string) ([]*models.LeaderboardEntry, error) {
	raw, err := r.client.HGetAll(ctx, boardKey(caseID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(raw))
	for playerID, entryJSON := range raw {
		var entry models.LeaderboardEntry
		if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry for %s: %w", playerID, err)
		}
		entries = append(entries, &entry)
	}

	rankEntries(entries)
	return entries, nil
}

// GetTopEntries returns the ranked slice for a case, capped at the limit
func (r *redisRepository) GetTopEntries(ctx context.Context, input *GetTopEntriesInput) (*GetTopEntriesOutput, error) {
	if input == nil || input.CaseID == "" {
		return nil, errors.New("input and case ID cannot be empty")
	}

	entries, err := r.readBoard(ctx, input.CaseID)
	if err != nil {
		return nil, err
	}

	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}

	return &GetTopEntriesOutput{Entries: entries}, nil
}

// GetRank returns a player's 1-based position in the full ranking
func (r *redisRepository) GetRank(ctx context.Context, input *GetRankInput) (*GetRankOutput, error) {
	if input == nil || input.CaseID == "" || input.PlayerID == "" {
		return nil, errors.New("input, case ID and player ID cannot be empty")
	}

	entries, err := r.readBoard(ctx, input.CaseID)
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		if e.PlayerID == input.PlayerID {
			return &GetRankOutput{Rank: i + 1, Entry: e}, nil
		}
	}

	return nil, ErrEntryNotFound
}
