package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/catalog"
	clockMocks "github.com/KirkDiggler/hiddenstroke/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/hiddenstroke/internal/common/uuid/mocks"
	"github.com/KirkDiggler/hiddenstroke/internal/models"
	leaderboardRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/leaderboard"
	leaderboardMocks "github.com/KirkDiggler/hiddenstroke/internal/repositories/leaderboard/mocks"
	sessionRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/session"
	sessionMocks "github.com/KirkDiggler/hiddenstroke/internal/repositories/session/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type GameServiceTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	mockSessionRepo     *sessionMocks.MockRepository
	mockLeaderboardRepo *leaderboardMocks.MockRepository
	mockClock           *clockMocks.MockClock
	mockUUID            *uuidMocks.MockUUID
	catalog             *catalog.Catalog
	gameService         Service
	ctx                 context.Context

	// Test data
	testTime       time.Time
	testCaseID     string
	testSessionID  string
	testPlayerID   string
	testPlayerName string

	// Reusable test fixtures
	activeSession *models.Session
}

func (s *GameServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSessionRepo = sessionMocks.NewMockRepository(s.mockCtrl)
	s.mockLeaderboardRepo = leaderboardMocks.NewMockRepository(s.mockCtrl)
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)

	s.ctx = context.Background()

	var err error
	s.catalog, err = catalog.New(nil)
	s.Require().NoError(err)

	// 20260901 mod 3 selects the third demo case
	s.testTime = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.testCaseID = "003"
	s.testSessionID = "test-session-id"
	s.testPlayerID = "test-player-id"
	s.testPlayerName = "Test Player"

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	s.activeSession = &models.Session{
		ID:          s.testSessionID,
		CaseID:      s.testCaseID,
		PlayerID:    s.testPlayerID,
		PlayerName:  s.testPlayerName,
		IPRemaining: 8,
		StartedAt:   s.testTime.Add(-30 * time.Second),
		ExpiresAt:   s.testTime.Add(60 * time.Second),
		Status:      models.SessionStatusActive,
		Actions:     []*models.Action{},
	}

	s.gameService, err = New(&Config{
		Catalog:         s.catalog,
		SessionRepo:     s.mockSessionRepo,
		LeaderboardRepo: s.mockLeaderboardRepo,
		Clock:           s.mockClock,
		UUIDGenerator:   s.mockUUID,
	})
	s.Require().NoError(err)
}

func (s *GameServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}

func (s *GameServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.Error(err)

	_, err = New(&Config{})
	s.Error(err)
}

func (s *GameServiceTestSuite) TestStartSessionCreatesNewSession() {
	s.mockSessionRepo.EXPECT().
		GetActiveSession(s.ctx, &sessionRepo.GetActiveSessionInput{
			PlayerID: s.testPlayerID,
			CaseID:   s.testCaseID,
			Now:      s.testTime,
		}).
		Return(nil, sessionRepo.ErrSessionNotFound)

	s.mockUUID.EXPECT().NewUUID().Return(s.testSessionID)

	s.mockSessionRepo.EXPECT().
		SaveSession(s.ctx, &sessionRepo.SaveSessionInput{
			Session: &models.Session{
				ID:          s.testSessionID,
				CaseID:      s.testCaseID,
				PlayerID:    s.testPlayerID,
				PlayerName:  s.testPlayerName,
				IPRemaining: 8,
				StartedAt:   s.testTime,
				ExpiresAt:   s.testTime.Add(90 * time.Second),
				Status:      models.SessionStatusActive,
				Actions:     []*models.Action{},
			},
		}).
		Return(nil)

	output, err := s.gameService.StartSession(s.ctx, &StartSessionInput{
		PlayerID:   s.testPlayerID,
		PlayerName: s.testPlayerName,
	})

	s.NoError(err)
	s.False(output.Resumed)
	s.Equal(s.testSessionID, output.Session.ID)
	s.Equal(s.testCaseID, output.Case.CaseID)
	s.Equal(8, output.Session.IPRemaining)
	s.Equal(s.testTime.Add(90*time.Second), output.Session.ExpiresAt)
}

func (s *GameServiceTestSuite) TestStartSessionResumesActiveSession() {
	s.mockSessionRepo.EXPECT().
		GetActiveSession(s.ctx, gomock.Any()).
		Return(s.activeSession, nil)

	output, err := s.gameService.StartSession(s.ctx, &StartSessionInput{
		PlayerID:   s.testPlayerID,
		PlayerName: s.testPlayerName,
	})

	s.NoError(err)
	s.True(output.Resumed)
	s.Equal(s.testSessionID, output.Session.ID)
	s.Equal(s.testCaseID, output.Case.CaseID)
}

func (s *GameServiceTestSuite) TestInvokeToolSignature() {
	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, &sessionRepo.GetSessionInput{
			SessionID: s.testSessionID,
			Now:       s.testTime,
		}).
		Return(s.activeSession, nil)

	s.mockSessionRepo.EXPECT().
		SpendIP(s.ctx, &sessionRepo.SpendIPInput{
			SessionID: s.testSessionID,
			Cost:      1,
			Action: &models.Action{
				Type:           "tool_signature",
				CandidateIndex: 1,
				Timestamp:      s.testTime,
			},
			Now: s.testTime,
		}).
		Return(&sessionRepo.SpendIPOutput{IPRemaining: 7}, nil)

	output, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:         s.testCaseID,
		SessionID:      s.testSessionID,
		Tool:           models.ToolKindSignature,
		CandidateIndex: 1,
	})

	s.NoError(err)
	s.Equal(models.ToolKindSignature, output.Tool)
	s.Equal(7, output.IPRemaining)
	s.Equal("/hs/003/b_crop.jpg", output.CropRef)
	s.Equal("Signature orientation and paint handling match the 1906 group.", output.Hint)
}

func (s *GameServiceTestSuite) TestInvokeToolFinancialCostsTwo() {
	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(s.activeSession, nil)

	s.mockSessionRepo.EXPECT().
		SpendIP(s.ctx, &sessionRepo.SpendIPInput{
			SessionID: s.testSessionID,
			Cost:      2,
			Action: &models.Action{
				Type:           "tool_financial",
				CandidateIndex: -1,
				Timestamp:      s.testTime,
			},
			Now: s.testTime,
		}).
		Return(&sessionRepo.SpendIPOutput{IPRemaining: 6}, nil)

	output, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:    s.testCaseID,
		SessionID: s.testSessionID,
		Tool:      models.ToolKindFinancial,
		// CandidateIndex is ignored for non-signature tools
		CandidateIndex: 2,
	})

	s.NoError(err)
	s.Equal(6, output.IPRemaining)
	s.Empty(output.CropRef)
	s.Equal("The invoice trail via Durand-Ruel matches the accession; the others surface via regional sales.", output.Hint)
}

// A tool call discloses a single advisory sentence even when the case is
// authored with several flags; the rest stay private until the reveal.
func (s *GameServiceTestSuite) TestInvokeToolDisclosesOnlyFirstFlag() {
	caseYAML := `cases:
  - case_id: "003"
    public:
      brief: "Three canvases, one authentic."
      style_period: "French Impressionism"
      images: [/hs/t/a.jpg, /hs/t/b.jpg, /hs/t/c.jpg]
      signature_crops: [/hs/t/a_crop.jpg, /hs/t/b_crop.jpg, /hs/t/c_crop.jpg]
      metadata:
        - title: "Canvas A"
        - title: "Canvas B"
        - title: "Canvas C"
      ledger_summary: "Dealer records diverge."
    solution:
      answer_index: 0
      flags_metadata:
        - "Pigment chemistry postdates the claimed year on canvas B."
        - "The catalog reference on canvas C was retired in 1911."
        - "Only canvas A appears in the 1909 exhibition list."
      explanation: "Only canvas A is documented."
`
	caseFile := filepath.Join(s.T().TempDir(), "cases.yaml")
	s.Require().NoError(os.WriteFile(caseFile, []byte(caseYAML), 0o644))

	cat, err := catalog.New(&catalog.Config{CaseFile: caseFile})
	s.Require().NoError(err)

	svc, err := New(&Config{
		Catalog:         cat,
		SessionRepo:     s.mockSessionRepo,
		LeaderboardRepo: s.mockLeaderboardRepo,
		Clock:           s.mockClock,
		UUIDGenerator:   s.mockUUID,
	})
	s.Require().NoError(err)

	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(s.activeSession, nil)
	s.mockSessionRepo.EXPECT().
		SpendIP(s.ctx, gomock.Any()).
		Return(&sessionRepo.SpendIPOutput{IPRemaining: 7}, nil)

	output, err := svc.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:    s.testCaseID,
		SessionID: s.testSessionID,
		Tool:      models.ToolKindMetadata,
	})

	s.NoError(err)
	s.Equal("Pigment chemistry postdates the claimed year on canvas B.", output.Hint)
}

// An unauthored flag list falls back to the generic advisory
func TestAdvisoryOrFallback(t *testing.T) {
	if got := advisoryOrFallback(nil, fallbackMetadataHint); got != fallbackMetadataHint {
		t.Errorf("advisoryOrFallback(nil) = %q, want the fallback", got)
	}
	if got := advisoryOrFallback([]string{"first", "second"}, fallbackMetadataHint); got != "first" {
		t.Errorf("advisoryOrFallback = %q, want %q", got, "first")
	}
}

func (s *GameServiceTestSuite) TestInvokeToolUnknownTool() {
	_, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:    s.testCaseID,
		SessionID: s.testSessionID,
		Tool:      models.ToolKind("xray"),
	})

	s.ErrorIs(err, ErrUnknownTool)
}

func (s *GameServiceTestSuite) TestInvokeToolFinancialDisabled() {
	svc, err := New(&Config{
		Catalog:              s.catalog,
		SessionRepo:          s.mockSessionRepo,
		LeaderboardRepo:      s.mockLeaderboardRepo,
		Clock:                s.mockClock,
		UUIDGenerator:        s.mockUUID,
		DisableFinancialTool: true,
	})
	s.Require().NoError(err)

	_, err = svc.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:    s.testCaseID,
		SessionID: s.testSessionID,
		Tool:      models.ToolKindFinancial,
	})

	s.ErrorIs(err, ErrToolDisabled)
}

func (s *GameServiceTestSuite) TestInvokeToolCaseNotFound() {
	_, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:    "999",
		SessionID: s.testSessionID,
		Tool:      models.ToolKindMetadata,
	})

	s.ErrorIs(err, ErrCaseNotFound)
}

func (s *GameServiceTestSuite) TestInvokeToolCaseMismatchDoesNotSpend() {
	other := *s.activeSession
	other.CaseID = "001"

	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(&other, nil)

	_, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:    s.testCaseID,
		SessionID: s.testSessionID,
		Tool:      models.ToolKindMetadata,
	})

	s.ErrorIs(err, ErrCaseMismatch)
}

func (s *GameServiceTestSuite) TestInvokeToolInvalidCandidate() {
	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(s.activeSession, nil)

	_, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
		CaseID:         s.testCaseID,
		SessionID:      s.testSessionID,
		Tool:           models.ToolKindSignature,
		CandidateIndex: 3,
	})

	s.ErrorIs(err, ErrInvalidCandidate)
}

func (s *GameServiceTestSuite) TestInvokeToolRepositoryErrors() {
	tests := []struct {
		name     string
		repoErr  error
		expected error
	}{
		{"insufficient points", sessionRepo.ErrInsufficientIP, ErrInsufficientIP},
		{"expired", sessionRepo.ErrSessionExpired, ErrSessionExpired},
		{"finished", sessionRepo.ErrSessionFinished, ErrSessionNotActive},
		{"not found", sessionRepo.ErrSessionNotFound, ErrSessionNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockSessionRepo.EXPECT().
				GetSession(s.ctx, gomock.Any()).
				Return(s.activeSession, nil)
			s.mockSessionRepo.EXPECT().
				SpendIP(s.ctx, gomock.Any()).
				Return(nil, tt.repoErr)

			_, err := s.gameService.InvokeTool(s.ctx, &InvokeToolInput{
				CaseID:    s.testCaseID,
				SessionID: s.testSessionID,
				Tool:      models.ToolKindMetadata,
			})

			s.ErrorIs(err, tt.expected)
		})
	}
}

func (s *GameServiceTestSuite) TestSubmitGuessCorrect() {
	finished := *s.activeSession
	finished.IPRemaining = 4
	finished.ExpiresAt = s.testTime.Add(37 * time.Second)
	finished.Status = models.SessionStatusFinished

	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(s.activeSession, nil)

	s.mockSessionRepo.EXPECT().
		FinishSession(s.ctx, &sessionRepo.FinishSessionInput{
			SessionID: s.testSessionID,
			Now:       s.testTime,
		}).
		Return(&sessionRepo.FinishSessionOutput{Session: &finished}, nil)

	s.mockLeaderboardRepo.EXPECT().
		UpsertEntry(s.ctx, &leaderboardRepo.UpsertEntryInput{
			Entry: &models.LeaderboardEntry{
				CaseID:      s.testCaseID,
				PlayerID:    s.testPlayerID,
				PlayerName:  s.testPlayerName,
				Score:       112,
				Correct:     true,
				SecondsLeft: 37,
				IPLeft:      4,
				Rationale:   "dealer codes match",
				RecordedAt:  s.testTime,
			},
		}).
		Return(nil)

	output, err := s.gameService.SubmitGuess(s.ctx, &SubmitGuessInput{
		CaseID:         s.testCaseID,
		SessionID:      s.testSessionID,
		CandidateIndex: 0,
		Rationale:      "dealer codes match",
	})

	s.NoError(err)
	s.True(output.Correct)
	// 100 base + ceil(37/10) time bonus + 4*2 point bonus
	s.Equal(112, output.Score)
	s.Equal(37, output.SecondsLeft)
	s.Equal(4, output.IPRemaining)
	s.Require().NotNil(output.Reveal)
	s.Equal(0, output.Reveal.AnswerIndex)
	s.NotEmpty(output.Reveal.Explanation)
}

func (s *GameServiceTestSuite) TestSubmitGuessIncorrectFloorsAtZero() {
	finished := *s.activeSession
	finished.IPRemaining = 4
	finished.ExpiresAt = s.testTime.Add(37 * time.Second)
	finished.Status = models.SessionStatusFinished

	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(s.activeSession, nil)
	s.mockSessionRepo.EXPECT().
		FinishSession(s.ctx, gomock.Any()).
		Return(&sessionRepo.FinishSessionOutput{Session: &finished}, nil)
	s.mockLeaderboardRepo.EXPECT().
		UpsertEntry(s.ctx, gomock.Any()).
		Return(nil)

	output, err := s.gameService.SubmitGuess(s.ctx, &SubmitGuessInput{
		CaseID:         s.testCaseID,
		SessionID:      s.testSessionID,
		CandidateIndex: 2,
	})

	s.NoError(err)
	s.False(output.Correct)
	// 0 + 4 + 8 - 40 clamps to zero
	s.Equal(0, output.Score)
	s.Require().NotNil(output.Reveal)
	s.Equal(0, output.Reveal.AnswerIndex)
}

func (s *GameServiceTestSuite) TestSubmitGuessInvalidCandidate() {
	_, err := s.gameService.SubmitGuess(s.ctx, &SubmitGuessInput{
		CaseID:         s.testCaseID,
		SessionID:      s.testSessionID,
		CandidateIndex: -1,
	})

	s.ErrorIs(err, ErrInvalidCandidate)
}

func (s *GameServiceTestSuite) TestSubmitGuessCaseMismatch() {
	other := *s.activeSession
	other.CaseID = "002"

	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(&other, nil)

	_, err := s.gameService.SubmitGuess(s.ctx, &SubmitGuessInput{
		CaseID:         s.testCaseID,
		SessionID:      s.testSessionID,
		CandidateIndex: 0,
	})

	s.ErrorIs(err, ErrCaseMismatch)
}

func (s *GameServiceTestSuite) TestSubmitGuessRepositoryErrors() {
	tests := []struct {
		name     string
		repoErr  error
		expected error
	}{
		{"already finished", sessionRepo.ErrSessionFinished, ErrAlreadyFinished},
		{"expired", sessionRepo.ErrSessionExpired, ErrSessionExpired},
		{"not found", sessionRepo.ErrSessionNotFound, ErrSessionNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockSessionRepo.EXPECT().
				GetSession(s.ctx, gomock.Any()).
				Return(s.activeSession, nil)
			s.mockSessionRepo.EXPECT().
				FinishSession(s.ctx, gomock.Any()).
				Return(nil, tt.repoErr)

			_, err := s.gameService.SubmitGuess(s.ctx, &SubmitGuessInput{
				CaseID:         s.testCaseID,
				SessionID:      s.testSessionID,
				CandidateIndex: 0,
			})

			s.ErrorIs(err, tt.expected)
		})
	}
}

func (s *GameServiceTestSuite) TestGetLeaderboardDefaultsToToday() {
	entries := []*models.LeaderboardEntry{
		{CaseID: s.testCaseID, PlayerID: "bob", Score: 117},
		{CaseID: s.testCaseID, PlayerID: s.testPlayerID, Score: 112},
	}

	s.mockLeaderboardRepo.EXPECT().
		GetTopEntries(s.ctx, &leaderboardRepo.GetTopEntriesInput{
			CaseID: s.testCaseID,
			Limit:  defaultLeaderboardLimit,
		}).
		Return(&leaderboardRepo.GetTopEntriesOutput{Entries: entries}, nil)

	s.mockLeaderboardRepo.EXPECT().
		GetRank(s.ctx, &leaderboardRepo.GetRankInput{
			CaseID:   s.testCaseID,
			PlayerID: s.testPlayerID,
		}).
		Return(&leaderboardRepo.GetRankOutput{
			Rank:  2,
			Entry: entries[1],
		}, nil)

	output, err := s.gameService.GetLeaderboard(s.ctx, &GetLeaderboardInput{
		PlayerID: s.testPlayerID,
	})

	s.NoError(err)
	s.Equal(s.testCaseID, output.CaseID)
	s.Len(output.Top, 2)
	s.Require().NotNil(output.Me)
	s.Equal(2, output.Me.Rank)
	s.Equal(112, output.Me.Score)
}

func (s *GameServiceTestSuite) TestGetLeaderboardUnrankedRequester() {
	s.mockLeaderboardRepo.EXPECT().
		GetTopEntries(s.ctx, gomock.Any()).
		Return(&leaderboardRepo.GetTopEntriesOutput{Entries: nil}, nil)

	s.mockLeaderboardRepo.EXPECT().
		GetRank(s.ctx, gomock.Any()).
		Return(nil, leaderboardRepo.ErrEntryNotFound)

	output, err := s.gameService.GetLeaderboard(s.ctx, &GetLeaderboardInput{
		CaseID:   s.testCaseID,
		PlayerID: s.testPlayerID,
	})

	s.NoError(err)
	s.Nil(output.Me)
}

func (s *GameServiceTestSuite) TestGetLeaderboardUnknownCase() {
	_, err := s.gameService.GetLeaderboard(s.ctx, &GetLeaderboardInput{CaseID: "999"})
	s.ErrorIs(err, ErrCaseNotFound)
}

func (s *GameServiceTestSuite) TestGetLeaderboardRepositoryError() {
	s.mockLeaderboardRepo.EXPECT().
		GetTopEntries(s.ctx, gomock.Any()).
		Return(nil, errors.New("redis down"))

	_, err := s.gameService.GetLeaderboard(s.ctx, &GetLeaderboardInput{CaseID: s.testCaseID})
	s.Error(err)
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name        string
		correct     bool
		secondsLeft int
		ipRemaining int
		expected    int
	}{
		{"correct mid-game", true, 37, 4, 112},
		{"correct after three tools", true, 50, 6, 117},
		{"correct at the buzzer", true, 0, 0, 100},
		{"correct full time full points", true, 90, 8, 125},
		{"incorrect clamps to zero", false, 37, 4, 0},
		{"incorrect with big reserve", false, 90, 8, 0},
		{"exact block boundary", true, 40, 0, 104},
		{"partial block rounds up", true, 41, 0, 105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeScore(tt.correct, tt.secondsLeft, tt.ipRemaining)
			if got != tt.expected {
				t.Errorf("computeScore(%v, %d, %d) = %d, want %d",
					tt.correct, tt.secondsLeft, tt.ipRemaining, got, tt.expected)
			}
		})
	}
}
