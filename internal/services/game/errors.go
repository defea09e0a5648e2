package game

import "errors"

// Stable error kinds surfaced to the caller. None of these are retried
// internally; the presentation layer picks the user-facing copy.
var (
	// ErrCaseNotFound indicates an unknown case ID
	ErrCaseNotFound = errors.New("case not found")

	// ErrSessionNotFound indicates an unknown session ID
	ErrSessionNotFound = errors.New("session not found")

	// ErrCaseMismatch indicates the session is pinned to a different case
	ErrCaseMismatch = errors.New("session does not belong to this case")

	// ErrSessionExpired indicates the countdown ran out
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionNotActive indicates the session can no longer be played
	ErrSessionNotActive = errors.New("session is not active")

	// ErrInsufficientIP indicates the tool costs more than the remaining budget
	ErrInsufficientIP = errors.New("not enough investigation points")

	// ErrInvalidCandidate indicates a candidate index outside 0..2
	ErrInvalidCandidate = errors.New("candidate index must be 0, 1 or 2")

	// ErrAlreadyFinished indicates a guess was already submitted for the session
	ErrAlreadyFinished = errors.New("session already finished")

	// ErrToolDisabled indicates the tool is switched off in this deployment
	ErrToolDisabled = errors.New("tool is disabled")

	// ErrUnknownTool indicates an unrecognized tool kind
	ErrUnknownTool = errors.New("unknown tool")
)
