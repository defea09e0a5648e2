// Package httpapi exposes the investigation over a small JSON HTTP surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
	"github.com/KirkDiggler/hiddenstroke/internal/services/game"
	"github.com/go-chi/chi/v5"
)

// Config holds the dependencies for the HTTP handler
type Config struct {
	GameService game.Service
	Logger      *slog.Logger
}

// Handler holds all HTTP handlers
type Handler struct {
	gameService game.Service
	logger      *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		gameService: cfg.GameService,
		logger:      logger,
	}, nil
}

// Routes sets up all routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(h.logger))

	r.Get("/health", h.Health)

	r.Route("/cases", func(r chi.Router) {
		r.Post("/today/start", h.StartSession)
		r.Post("/{caseID}/tools/{tool}", h.InvokeTool)
		r.Post("/{caseID}/guess", h.SubmitGuess)
	})

	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/daily", h.DailyLeaderboard)
		r.Get("/{caseID}", h.CaseLeaderboard)
	})

	return r
}

// Health handles health check requests
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StartSession handles POST /cases/today/start
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	playerID, playerName := playerIdentity(r)

	output, err := h.gameService.StartSession(r.Context(), &game.StartSessionInput{
		PlayerID:   playerID,
		PlayerName: playerName,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if output.Resumed {
		status = http.StatusOK
	}

	h.respondJSON(w, status, &StartSessionResponse{
		SessionID:   output.Session.ID,
		Resumed:     output.Resumed,
		IPRemaining: output.Session.IPRemaining,
		StartedAt:   output.Session.StartedAt,
		ExpiresAt:   output.Session.ExpiresAt,
		Case:        output.Case,
	})
}

// InvokeTool handles POST /cases/{caseID}/tools/{tool}
func (h *Handler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	var req InvokeToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.SessionID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_body", "session_id is required")
		return
	}

	candidateIndex := -1
	if req.CandidateIndex != nil {
		candidateIndex = *req.CandidateIndex
	}

	output, err := h.gameService.InvokeTool(r.Context(), &game.InvokeToolInput{
		CaseID:         chi.URLParam(r, "caseID"),
		SessionID:      req.SessionID,
		Tool:           models.ToolKind(chi.URLParam(r, "tool")),
		CandidateIndex: candidateIndex,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, &InvokeToolResponse{
		Tool:        string(output.Tool),
		IPRemaining: output.IPRemaining,
		CropRef:     output.CropRef,
		Hint:        output.Hint,
	})
}

// SubmitGuess handles POST /cases/{caseID}/guess
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req SubmitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.SessionID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_body", "session_id is required")
		return
	}
	if req.CandidateIndex == nil {
		h.respondError(w, http.StatusBadRequest, "invalid_body", "candidate_index is required")
		return
	}

	output, err := h.gameService.SubmitGuess(r.Context(), &game.SubmitGuessInput{
		CaseID:         chi.URLParam(r, "caseID"),
		SessionID:      req.SessionID,
		CandidateIndex: *req.CandidateIndex,
		Rationale:      req.Rationale,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, &SubmitGuessResponse{
		Correct:     output.Correct,
		Score:       output.Score,
		SecondsLeft: output.SecondsLeft,
		IPRemaining: output.IPRemaining,
		Reveal: &RevealResponse{
			AnswerIndex:    output.Reveal.AnswerIndex,
			Explanation:    output.Reveal.Explanation,
			FlagsSignature: output.Reveal.FlagsSignature,
			FlagsMetadata:  output.Reveal.FlagsMetadata,
			FlagsFinancial: output.Reveal.FlagsFinancial,
		},
	})
}

// DailyLeaderboard handles GET /leaderboard/daily
func (h *Handler) DailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.leaderboard(w, r, "")
}

// CaseLeaderboard handles GET /leaderboard/{caseID}
func (h *Handler) CaseLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.leaderboard(w, r, chi.URLParam(r, "caseID"))
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request, caseID string) {
	playerID, _ := playerIdentity(r)

	output, err := h.gameService.GetLeaderboard(r.Context(), &game.GetLeaderboardInput{
		CaseID:   caseID,
		PlayerID: playerID,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	resp := &LeaderboardResponse{
		CaseID: output.CaseID,
		Top:    make([]*LeaderboardEntryResponse, 0, len(output.Top)),
	}
	for _, entry := range output.Top {
		resp.Top = append(resp.Top, &LeaderboardEntryResponse{
			PlayerID:    entry.PlayerID,
			PlayerName:  entry.PlayerName,
			Score:       entry.Score,
			Correct:     entry.Correct,
			SecondsLeft: entry.SecondsLeft,
			IPLeft:      entry.IPLeft,
			Rationale:   entry.Rationale,
			RecordedAt:  entry.RecordedAt,
		})
	}
	if output.Me != nil {
		resp.Me = &StandingResponse{
			Score: output.Me.Score,
			Rank:  output.Me.Rank,
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// respondServiceError maps service errors onto HTTP statuses
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrCaseNotFound):
		h.respondError(w, http.StatusNotFound, "case_not_found", err.Error())
	case errors.Is(err, game.ErrSessionNotFound):
		h.respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, game.ErrCaseMismatch):
		h.respondError(w, http.StatusBadRequest, "case_mismatch", err.Error())
	case errors.Is(err, game.ErrInvalidCandidate):
		h.respondError(w, http.StatusBadRequest, "invalid_candidate", err.Error())
	case errors.Is(err, game.ErrUnknownTool):
		h.respondError(w, http.StatusBadRequest, "unknown_tool", err.Error())
	case errors.Is(err, game.ErrToolDisabled):
		h.respondError(w, http.StatusForbidden, "tool_disabled", err.Error())
	case errors.Is(err, game.ErrInsufficientIP):
		h.respondError(w, http.StatusConflict, "insufficient_ip", err.Error())
	case errors.Is(err, game.ErrAlreadyFinished):
		h.respondError(w, http.StatusConflict, "already_finished", err.Error())
	case errors.Is(err, game.ErrSessionExpired):
		h.respondError(w, http.StatusGone, "session_expired", err.Error())
	case errors.Is(err, game.ErrSessionNotActive):
		h.respondError(w, http.StatusGone, "session_not_active", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

// respondJSON sends a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// respondError sends an error response
func (h *Handler) respondError(w http.ResponseWriter, status int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	}); err != nil {
		h.logger.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}
