package game

import "context"

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks github.com/KirkDiggler/hiddenstroke/internal/services/game Service

// Service runs a daily attribution investigation: start a timed session,
// spend investigation points on tools, submit one final guess, and read
// the per-case leaderboard.
type Service interface {
	// StartSession begins (or resumes) today's session for a player
	StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error)

	// InvokeTool spends investigation points and returns the tool's findings
	InvokeTool(ctx context.Context, input *InvokeToolInput) (*InvokeToolOutput, error)

	// SubmitGuess scores the player's final answer and records it
	SubmitGuess(ctx context.Context, input *SubmitGuessInput) (*SubmitGuessOutput, error)

	// GetLeaderboard returns the top entries for a case plus the requester's standing
	GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error)
}
