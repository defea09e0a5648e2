// Package game implements the daily attribution investigation: timed
// sessions, point-gated tools, final guess scoring and the leaderboard.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/catalog"
	"github.com/KirkDiggler/hiddenstroke/internal/common/clock"
	"github.com/KirkDiggler/hiddenstroke/internal/common/uuid"
	"github.com/KirkDiggler/hiddenstroke/internal/models"
	leaderboardRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/leaderboard"
	sessionRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/session"
)

// Scoring constants. A correct guess earns the base; a wrong one pays the
// penalty. Leftover time and points are rewarded either way.
const (
	correctBase      = 100
	incorrectPenalty = 40
	ipBonusPerPoint  = 2
)

// Advisories returned when a case carries no authored observations for a tool.
const (
	fallbackSignatureHint = "Examine baseline alignment and stroke overlap."
	fallbackMetadataHint  = "Check chronology, chemistry, and institutional formats."
	fallbackFinancialHint = "Follow currency, jurisdiction, and payment method timelines."
)

type service struct {
	catalog         *catalog.Catalog
	sessionRepo     sessionRepo.Repository
	leaderboardRepo leaderboardRepo.Repository
	clock           clock.Clock
	uuider          uuid.UUID

	financialEnabled bool
	leaderboardLimit int
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if cfg.SessionRepo == nil {
		return nil, errors.New("session repository cannot be nil")
	}
	if cfg.LeaderboardRepo == nil {
		return nil, errors.New("leaderboard repository cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if cfg.UUIDGenerator == nil {
		return nil, errors.New("uuid generator cannot be nil")
	}

	limit := cfg.LeaderboardLimit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	return &service{
		catalog:          cfg.Catalog,
		sessionRepo:      cfg.SessionRepo,
		leaderboardRepo:  cfg.LeaderboardRepo,
		clock:            cfg.Clock,
		uuider:           cfg.UUIDGenerator,
		financialEnabled: !cfg.DisableFinancialTool,
		leaderboardLimit: limit,
	}, nil
}

// StartSession begins today's session for a player, or resumes the player's
// still-active session so a page reload does not reset the countdown.
func (s *service) StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	now := s.clock.Now()
	todays := s.catalog.CaseForDate(now)

	existing, err := s.sessionRepo.GetActiveSession(ctx, &sessionRepo.GetActiveSessionInput{
		PlayerID: input.PlayerID,
		CaseID:   todays.ID,
		Now:      now,
	})
	if err == nil {
		return &StartSessionOutput{
			Session: existing,
			Case:    todays.Public,
			Resumed: true,
		}, nil
	}
	if !errors.Is(err, sessionRepo.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}

	sess := &models.Session{
		ID:          s.uuider.NewUUID(),
		CaseID:      todays.ID,
		PlayerID:    input.PlayerID,
		PlayerName:  input.PlayerName,
		IPRemaining: todays.Public.InitialIP,
		StartedAt:   now,
		ExpiresAt:   now.Add(time.Duration(todays.Public.TimerSeconds) * time.Second),
		Status:      models.SessionStatusActive,
		Actions:     []*models.Action{},
	}

	if err := s.sessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: sess}); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &StartSessionOutput{
		Session: sess,
		Case:    todays.Public,
	}, nil
}

// InvokeTool deducts the tool's cost and returns its findings. The deduction
// and the audit log append happen atomically in the repository; a rejected
// invocation never changes the point balance.
func (s *service) InvokeTool(ctx context.Context, input *InvokeToolInput) (*InvokeToolOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	switch input.Tool {
	case models.ToolKindSignature, models.ToolKindMetadata, models.ToolKindFinancial:
	default:
		return nil, ErrUnknownTool
	}
	if input.Tool == models.ToolKindFinancial && !s.financialEnabled {
		return nil, ErrToolDisabled
	}

	cs, err := s.catalog.GetCase(input.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	now := s.clock.Now()

	sess, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: input.SessionID,
		Now:       now,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.CaseID != input.CaseID {
		return nil, ErrCaseMismatch
	}

	candidateIndex := -1
	if input.Tool == models.ToolKindSignature {
		if input.CandidateIndex < 0 || input.CandidateIndex >= models.CandidateCount {
			return nil, ErrInvalidCandidate
		}
		candidateIndex = input.CandidateIndex
	}

	spent, err := s.sessionRepo.SpendIP(ctx, &sessionRepo.SpendIPInput{
		SessionID: input.SessionID,
		Cost:      cs.Public.ToolCosts.For(input.Tool),
		Action: &models.Action{
			Type:           "tool_" + string(input.Tool),
			CandidateIndex: candidateIndex,
			Timestamp:      now,
		},
		Now: now,
	})
	if err != nil {
		switch {
		case errors.Is(err, sessionRepo.ErrSessionExpired):
			return nil, ErrSessionExpired
		case errors.Is(err, sessionRepo.ErrSessionFinished):
			return nil, ErrSessionNotActive
		case errors.Is(err, sessionRepo.ErrInsufficientIP):
			return nil, ErrInsufficientIP
		case errors.Is(err, sessionRepo.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to spend points: %w", err)
	}

	output := &InvokeToolOutput{
		Tool:        input.Tool,
		IPRemaining: spent.IPRemaining,
	}

	switch input.Tool {
	case models.ToolKindSignature:
		output.CropRef = cs.Public.SignatureCrops[candidateIndex]
		output.Hint = advisoryOrFallback(cs.Solution.FlagsSignature, fallbackSignatureHint)
	case models.ToolKindMetadata:
		output.Hint = advisoryOrFallback(cs.Solution.FlagsMetadata, fallbackMetadataHint)
	case models.ToolKindFinancial:
		output.Hint = advisoryOrFallback(cs.Solution.FlagsFinancial, fallbackFinancialHint)
	}

	return output, nil
}

// SubmitGuess finishes the session, scores the answer, records it on the
// leaderboard and reveals the solution. A session takes exactly one guess.
func (s *service) SubmitGuess(ctx context.Context, input *SubmitGuessInput) (*SubmitGuessOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}
	if input.CandidateIndex < 0 || input.CandidateIndex >= models.CandidateCount {
		return nil, ErrInvalidCandidate
	}

	cs, err := s.catalog.GetCase(input.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	now := s.clock.Now()

	sess, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: input.SessionID,
		Now:       now,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.CaseID != input.CaseID {
		return nil, ErrCaseMismatch
	}

	finished, err := s.sessionRepo.FinishSession(ctx, &sessionRepo.FinishSessionInput{
		SessionID: input.SessionID,
		Now:       now,
	})
	if err != nil {
		switch {
		case errors.Is(err, sessionRepo.ErrSessionExpired):
			return nil, ErrSessionExpired
		case errors.Is(err, sessionRepo.ErrSessionFinished):
			return nil, ErrAlreadyFinished
		case errors.Is(err, sessionRepo.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}

	sess = finished.Session
	secondsLeft := int(sess.ExpiresAt.Sub(now).Seconds())
	if secondsLeft < 0 {
		secondsLeft = 0
	}

	correct := input.CandidateIndex == cs.Solution.AnswerIndex
	score := computeScore(correct, secondsLeft, sess.IPRemaining)

	err = s.leaderboardRepo.UpsertEntry(ctx, &leaderboardRepo.UpsertEntryInput{
		Entry: &models.LeaderboardEntry{
			CaseID:      cs.ID,
			PlayerID:    sess.PlayerID,
			PlayerName:  sess.PlayerName,
			Score:       score,
			Correct:     correct,
			SecondsLeft: secondsLeft,
			IPLeft:      sess.IPRemaining,
			Rationale:   input.Rationale,
			RecordedAt:  now,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	return &SubmitGuessOutput{
		Correct:     correct,
		Score:       score,
		SecondsLeft: secondsLeft,
		IPRemaining: sess.IPRemaining,
		Reveal: &Reveal{
			AnswerIndex:    cs.Solution.AnswerIndex,
			Explanation:    cs.Solution.Explanation,
			FlagsSignature: cs.Solution.FlagsSignature,
			FlagsMetadata:  cs.Solution.FlagsMetadata,
			FlagsFinancial: cs.Solution.FlagsFinancial,
		},
	}, nil
}

// GetLeaderboard returns the ranked top entries for a case. An empty case ID
// selects today's case.
func (s *service) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	caseID := input.CaseID
	if caseID == "" {
		caseID = s.catalog.CaseForDate(s.clock.Now()).ID
	} else if _, err := s.catalog.GetCase(caseID); err != nil {
		return nil, ErrCaseNotFound
	}

	top, err := s.leaderboardRepo.GetTopEntries(ctx, &leaderboardRepo.GetTopEntriesInput{
		CaseID: caseID,
		Limit:  s.leaderboardLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	output := &GetLeaderboardOutput{
		CaseID: caseID,
		Top:    top.Entries,
	}

	if input.PlayerID != "" {
		rank, err := s.leaderboardRepo.GetRank(ctx, &leaderboardRepo.GetRankInput{
			CaseID:   caseID,
			PlayerID: input.PlayerID,
		})
		if err != nil && !errors.Is(err, leaderboardRepo.ErrEntryNotFound) {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}
		if err == nil {
			output.Me = &PlayerStanding{
				Score: rank.Entry.Score,
				Rank:  rank.Rank,
			}
		}
	}

	return output, nil
}

// computeScore applies the scoring rule. Every started ten-second block of
// remaining time counts, and the result never goes negative.
func computeScore(correct bool, secondsLeft, ipRemaining int) int {
	base, penalty := 0, incorrectPenalty
	if correct {
		base, penalty = correctBase, 0
	}

	timeBonus := (secondsLeft + 9) / 10
	score := base + timeBonus + ipRemaining*ipBonusPerPoint - penalty
	if score < 0 {
		score = 0
	}
	return score
}

// advisoryOrFallback returns the first authored flag, or the generic
// advisory when the case has none for this tool. A tool call never leaks
// more than one sentence; the full lists wait for the reveal.
func advisoryOrFallback(flags []string, fallback string) string {
	if len(flags) > 0 {
		return flags[0]
	}
	return fallback
}
