package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/repositories"
)

func testProposal(status models.ProposalStatus) *models.ScheduleProposal {
	return &models.ScheduleProposal{
		ID:           "prop-1",
		MatchID:      42,
		ProposerID:   100,
		ProposedTime: fixedNow().Add(48 * time.Hour),
		Status:       status,
	}
}

func TestPropose(t *testing.T) {
	tests := []struct {
		name         string
		match        func() *models.Match
		proposedTime time.Time
		userID       int
		wantErr      error
	}{
		{
			name:         "valid time inside the window",
			match:        func() *models.Match { return testMatch(models.MatchStatusPending) },
			proposedTime: fixedNow().Add(24 * time.Hour),
			userID:       100,
		},
		{
			name:         "time in the past never reaches the repository",
			match:        func() *models.Match { return testMatch(models.MatchStatusPending) },
			proposedTime: fixedNow().Add(-time.Hour),
			userID:       100,
			wantErr:      ErrProposedTimeInPast,
		},
		{
			name:         "time past the deadline never reaches the repository",
			match:        func() *models.Match { return testMatch(models.MatchStatusPending) },
			proposedTime: testMatch(models.MatchStatusPending).Deadline.Add(time.Hour),
			userID:       100,
			wantErr:      ErrProposedTimePastDeadline,
		},
		{
			name:         "exactly the deadline is outside the window",
			match:        func() *models.Match { return testMatch(models.MatchStatusPending) },
			proposedTime: testMatch(models.MatchStatusPending).Deadline,
			userID:       100,
			wantErr:      ErrProposedTimePastDeadline,
		},
		{
			name:         "non-participant rejected",
			match:        func() *models.Match { return testMatch(models.MatchStatusPending) },
			proposedTime: fixedNow().Add(24 * time.Hour),
			userID:       999,
			wantErr:      ErrNotAParticipant,
		},
		{
			name: "match with a game takes no proposals",
			match: func() *models.Match {
				m := testMatch(models.MatchStatusScheduled)
				m.GameID = intPtr(5005)
				return m
			},
			proposedTime: fixedNow().Add(24 * time.Hour),
			userID:       100,
			wantErr:      ErrMatchNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created, superseded bool
			matchRepo := &FakeMatchRepo{
				GetByIDFunc: func(ctx context.Context, id int) (*models.Match, error) {
					return tt.match(), nil
				},
			}
			proposalRepo := &FakeProposalRepo{
				CreateFunc: func(ctx context.Context, exec repositories.SQLExecutor, p *models.ScheduleProposal) error {
					created = true
					return nil
				},
				ExpireActiveByMatchFunc: func(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
					superseded = true
					return nil
				},
			}
			svc := NewScheduleService(matchRepo, proposalRepo, nil, slog.Default(), fixedNow)

			proposal, err := svc.Propose(context.Background(), 42, tt.userID, tt.proposedTime, nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, created, "invalid proposal must not be persisted")
				assert.False(t, superseded, "invalid proposal must not supersede the working one")
				return
			}
			assert.NoError(t, err)
			assert.True(t, superseded, "a fresh proposal supersedes the working one")
			assert.True(t, created)
			assert.NotEmpty(t, proposal.ID)
			assert.Equal(t, models.ProposalStatusProposed, proposal.Status)
			assert.Equal(t, tt.userID, proposal.ProposerID)
		})
	}
}

func TestProposeRaceLosesCleanly(t *testing.T) {
	matchRepo := &FakeMatchRepo{
		GetByIDFunc: func(ctx context.Context, id int) (*models.Match, error) {
			return testMatch(models.MatchStatusPending), nil
		},
	}
	proposalRepo := &FakeProposalRepo{
		CreateFunc: func(ctx context.Context, exec repositories.SQLExecutor, p *models.ScheduleProposal) error {
			return repositories.ErrProposalAlreadyActive
		},
	}
	svc := NewScheduleService(matchRepo, proposalRepo, nil, slog.Default(), fixedNow)

	_, err := svc.Propose(context.Background(), 42, 100, fixedNow().Add(24*time.Hour), nil)
	assert.ErrorIs(t, err, ErrProposalConflict)
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name       string
		proposal   func() *models.ScheduleProposal
		match      func() *models.Match
		userID     int
		wantErr    error
		wantStatus models.ProposalStatus
		wantWrite  bool
	}{
		{
			name:       "opponent accepts the offer",
			proposal:   func() *models.ScheduleProposal { return testProposal(models.ProposalStatusProposed) },
			match:      func() *models.Match { return testMatch(models.MatchStatusPending) },
			userID:     200,
			wantStatus: models.ProposalStatusAccepted,
			wantWrite:  true,
		},
		{
			name:     "proposer cannot accept their own offer",
			proposal: func() *models.ScheduleProposal { return testProposal(models.ProposalStatusProposed) },
			match:    func() *models.Match { return testMatch(models.MatchStatusPending) },
			userID:   100,
			wantErr:  ErrSelfResponseForbidden,
		},
		{
			name:       "accepting an already accepted proposal is a no-op",
			proposal:   func() *models.ScheduleProposal { return testProposal(models.ProposalStatusAccepted) },
			match:      func() *models.Match { return testMatch(models.MatchStatusScheduled) },
			userID:     200,
			wantStatus: models.ProposalStatusAccepted,
			wantWrite:  false,
		},
		{
			name:       "accepting an expired proposal returns it untouched",
			proposal:   func() *models.ScheduleProposal { return testProposal(models.ProposalStatusExpired) },
			match:      func() *models.Match { return testMatch(models.MatchStatusPending) },
			userID:     200,
			wantStatus: models.ProposalStatusExpired,
			wantWrite:  false,
		},
		{
			name:     "outsider rejected",
			proposal: func() *models.ScheduleProposal { return testProposal(models.ProposalStatusProposed) },
			match:    func() *models.Match { return testMatch(models.MatchStatusPending) },
			userID:   999,
			wantErr:  ErrNotAParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var statusWritten, scheduledWritten bool
			matchRepo := &FakeMatchRepo{
				GetByIDFunc: func(ctx context.Context, id int) (*models.Match, error) {
					return tt.match(), nil
				},
				UpdateScheduledAtFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error {
					scheduledWritten = true
					assert.Equal(t, models.MatchStatusScheduled, status)
					return nil
				},
			}
			proposalRepo := &FakeProposalRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*models.ScheduleProposal, error) {
					return tt.proposal(), nil
				},
				UpdateStatusFunc: func(ctx context.Context, exec repositories.SQLExecutor, id string, status models.ProposalStatus, responseMessage *string) error {
					statusWritten = true
					return nil
				},
			}
			pub := &fakePublisher{}
			svc := NewScheduleService(matchRepo, proposalRepo, pub, slog.Default(), fixedNow)

			proposal, err := svc.Accept(context.Background(), "prop-1", tt.userID, nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, proposal.Status)
			assert.Equal(t, tt.wantWrite, statusWritten)
			assert.Equal(t, tt.wantWrite, scheduledWritten)
			if tt.wantWrite {
				assert.Len(t, pub.published(), 2)
			}
		})
	}
}

func TestAcceptPastDeadline(t *testing.T) {
	match := testMatch(models.MatchStatusPending)
	match.Deadline = fixedNow().Add(-time.Hour)
	matchRepo := &FakeMatchRepo{
		GetByIDFunc: func(ctx context.Context, id int) (*models.Match, error) {
			return match, nil
		},
	}
	proposalRepo := &FakeProposalRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.ScheduleProposal, error) {
			return testProposal(models.ProposalStatusProposed), nil
		},
	}
	svc := NewScheduleService(matchRepo, proposalRepo, nil, slog.Default(), fixedNow)

	_, err := svc.Accept(context.Background(), "prop-1", 200, nil)
	assert.ErrorIs(t, err, ErrProposedTimePastDeadline)
}

func TestProposeAlternative(t *testing.T) {
	altTime := fixedNow().Add(72 * time.Hour)

	tests := []struct {
		name     string
		proposal func() *models.ScheduleProposal
		altTime  time.Time
		userID   int
		wantErr  error
	}{
		{
			name:     "opponent counters with a new time",
			proposal: func() *models.ScheduleProposal { return testProposal(models.ProposalStatusProposed) },
			altTime:  altTime,
			userID:   200,
		},
		{
			name:     "proposer counters the counter",
			proposal: func() *models.ScheduleProposal { return testProposal(models.ProposalStatusAlternativeProposed) },
			altTime:  altTime,
			userID:   100,
		},
		{
			name:     "alternative outside the window rejected",
			proposal: func() *models.ScheduleProposal { return testProposal(models.ProposalStatusProposed) },
			altTime:  fixedNow().Add(-time.Minute),
			userID:   200,
			wantErr:  ErrProposedTimeInPast,
		},
		{
			name:     "resolved proposal takes no counter",
			proposal: func() *models.ScheduleProposal { return testProposal(models.ProposalStatusAccepted) },
			altTime:  altTime,
			userID:   200,
			wantErr:  ErrProposalConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var written bool
			matchRepo := &FakeMatchRepo{
				GetByIDFunc: func(ctx context.Context, id int) (*models.Match, error) {
					return testMatch(models.MatchStatusPending), nil
				},
			}
			proposalRepo := &FakeProposalRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*models.ScheduleProposal, error) {
					return tt.proposal(), nil
				},
				SetAlternativeFunc: func(ctx context.Context, exec repositories.SQLExecutor, id string, alternativeTime time.Time, responseMessage *string) error {
					written = true
					return nil
				},
			}
			svc := NewScheduleService(matchRepo, proposalRepo, nil, slog.Default(), fixedNow)

			proposal, err := svc.ProposeAlternative(context.Background(), "prop-1", tt.userID, tt.altTime, nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, written)
				return
			}
			assert.NoError(t, err)
			assert.True(t, written)
			assert.Equal(t, models.ProposalStatusAlternativeProposed, proposal.Status)
			assert.Equal(t, tt.altTime, *proposal.AlternativeTime)
		})
	}
}

func TestAcceptAlternativeUsesAlternativeTime(t *testing.T) {
	altTime := fixedNow().Add(72 * time.Hour)
	proposal := testProposal(models.ProposalStatusAlternativeProposed)
	proposal.AlternativeTime = &altTime

	var agreedAt time.Time
	matchRepo := &FakeMatchRepo{
		GetByIDFunc: func(ctx context.Context, id int) (*models.Match, error) {
			return testMatch(models.MatchStatusPending), nil
		},
		UpdateScheduledAtFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error {
			agreedAt = scheduledAt
			return nil
		},
	}
	proposalRepo := &FakeProposalRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.ScheduleProposal, error) {
			return proposal, nil
		},
	}
	svc := NewScheduleService(matchRepo, proposalRepo, nil, slog.Default(), fixedNow)

	resolved, err := svc.AcceptAlternative(context.Background(), "prop-1", 100, strPtr("works for me"))
	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, resolved.Status)
	assert.Equal(t, altTime, agreedAt)
}
