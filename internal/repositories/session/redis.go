package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix = "session:"
	activeKeyPrefix  = "player_session:" // (player, case) -> active session ID

	// maxTxRetries bounds optimistic-lock retries on contended sessions
	maxTxRetries = 5
)

// Config holds configuration for the Redis session repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed session repository
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

func sessionKey(sessionID string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, sessionID)
}

func activeSessionKey(playerID, caseID string) string {
	return fmt.Sprintf("%s%s:%s", activeKeyPrefix, playerID, caseID)
}

// SaveSession persists a session to Redis
func (r *redisRepository) SaveSession(ctx context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}
	if input.Session.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	sessionJSON, err := json.Marshal(input.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, sessionKey(input.Session.ID), sessionJSON, 0)

	// Maintain the (player, case) -> active session index
	indexKey := activeSessionKey(input.Session.PlayerID, input.Session.CaseID)
	if input.Session.Status == models.SessionStatusActive {
		pipe.Set(ctx, indexKey, input.Session.ID, 0)
	} else {
		pipe.Del(ctx, indexKey)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID from Redis, applying lazy expiry
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	sessionJSON, err := r.client.Get(ctx, sessionKey(input.SessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(sessionJSON), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if sess.Status == models.SessionStatusActive && sess.Expired(input.Now) {
		sess.Status = models.SessionStatusExpired
		if err := r.SaveSession(ctx, &SaveSessionInput{Session: &sess}); err != nil {
			return nil, fmt.Errorf("failed to expire session: %w", err)
		}
	}

	return &sess, nil
}

// GetActiveSession retrieves the active session for a (player, case) pair
func (r *redisRepository) GetActiveSession(ctx context.Context, input *GetActiveSessionInput) (*models.Session, error) {
	if input == nil || input.PlayerID == "" || input.CaseID == "" {
		return nil, errors.New("input, player ID and case ID cannot be empty")
	}

	sessionID, err := r.client.Get(ctx, activeSessionKey(input.PlayerID, input.CaseID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get active session ID: %w", err)
	}

	sess, err := r.GetSession(ctx, &GetSessionInput{SessionID: sessionID, Now: input.Now})
	if err != nil {
		return nil, err
	}

	if sess.Status != models.SessionStatusActive {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// SpendIP atomically deducts Investigation Points and appends the action.
// The check-and-decrement runs inside a WATCH transaction so concurrent
// spends against the same session cannot both pass the balance check.
func (r *redisRepository) SpendIP(ctx context.Context, input *SpendIPInput) (*SpendIPOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}
	if input.Cost < 0 {
		return nil, errors.New("cost cannot be negative")
	}

	var output *SpendIPOutput

	err := r.mutateSession(ctx, input.SessionID, func(sess *models.Session) error {
		if err := checkActive(sess, input.Now); err != nil {
			return err
		}

		if sess.IPRemaining < input.Cost {
			return ErrInsufficientIP
		}

		sess.IPRemaining -= input.Cost
		if input.Action != nil {
			action := *input.Action
			sess.Actions = append(sess.Actions, &action)
		}

		output = &SpendIPOutput{IPRemaining: sess.IPRemaining}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// FinishSession atomically transitions an active session to finished
func (r *redisRepository) FinishSession(ctx context.Context, input *FinishSessionInput) (*FinishSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	var output *FinishSessionOutput

	err := r.mutateSession(ctx, input.SessionID, func(sess *models.Session) error {
		if err := checkActive(sess, input.Now); err != nil {
			return err
		}

		sess.Status = models.SessionStatusFinished
		output = &FinishSessionOutput{Session: sess}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// checkActive validates that a session can still be mutated. When the clock
// has run out the status is flipped to expired so the caller persists the
// transition alongside the error.
func checkActive(sess *models.Session, now time.Time) error {
	switch sess.Status {
	case models.SessionStatusFinished:
		return ErrSessionFinished
	case models.SessionStatusExpired:
		return ErrSessionExpired
	}

	if sess.Expired(now) {
		sess.Status = models.SessionStatusExpired
		return ErrSessionExpired
	}

	return nil
}

// mutateSession runs fn against the session under optimistic locking and
// persists the result. When fn returns an error the session is still saved
// if its status changed (the lazy expiry transition).
func (r *redisRepository) mutateSession(ctx context.Context, sessionID string, fn func(*models.Session) error) error {
	key := sessionKey(sessionID)

	txn := func(tx *redis.Tx) error {
		sessionJSON, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to get session: %w", err)
		}

		var sess models.Session
		if err := json.Unmarshal([]byte(sessionJSON), &sess); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		prevStatus := sess.Status
		fnErr := fn(&sess)
		if fnErr != nil && sess.Status == prevStatus {
			return fnErr
		}

		updatedJSON, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updatedJSON, 0)
			indexKey := activeSessionKey(sess.PlayerID, sess.CaseID)
			if sess.Status != models.SessionStatusActive {
				pipe.Del(ctx, indexKey)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		return fnErr
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return fmt.Errorf("session update contention: %w", err)
}
