package services

import (
	"context"
	"sync"
	"time"

	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/repositories"
)

// FakeMatchRepo implements repositories.MatchRepository with overridable
// function fields. Unset getters report not found; unset writers succeed.
type FakeMatchRepo struct {
	CreateFunc             func(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	GetByIDFunc            func(ctx context.Context, id int) (*models.Match, error)
	ListByChampionshipFunc func(ctx context.Context, championshipID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	ListByParticipantFunc  func(ctx context.Context, userID int) ([]*models.Match, error)
	UpdateStatusFunc       func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error
	UpdateScheduledAtFunc  func(ctx context.Context, exec repositories.SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error
	UpdateGameIDFunc       func(ctx context.Context, exec repositories.SQLExecutor, id int, gameID int, status models.MatchStatus) error
	UpdateResultFunc       func(ctx context.Context, exec repositories.SQLExecutor, id int, result *models.MatchResult, status models.MatchStatus) error
	ExpireOverdueFunc      func(ctx context.Context, exec repositories.SQLExecutor, now time.Time) ([]int, error)
	DeleteFunc             func(ctx context.Context, id int) error
}

func (f *FakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, match)
	}
	return nil
}

func (f *FakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *FakeMatchRepo) ListByChampionship(ctx context.Context, championshipID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	if f.ListByChampionshipFunc != nil {
		return f.ListByChampionshipFunc(ctx, championshipID, round, status)
	}
	return nil, nil
}

func (f *FakeMatchRepo) ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error) {
	if f.ListByParticipantFunc != nil {
		return f.ListByParticipantFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, exec, id, status)
	}
	return nil
}

func (f *FakeMatchRepo) UpdateScheduledAt(ctx context.Context, exec repositories.SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error {
	if f.UpdateScheduledAtFunc != nil {
		return f.UpdateScheduledAtFunc(ctx, exec, id, scheduledAt, status)
	}
	return nil
}

func (f *FakeMatchRepo) UpdateGameID(ctx context.Context, exec repositories.SQLExecutor, id int, gameID int, status models.MatchStatus) error {
	if f.UpdateGameIDFunc != nil {
		return f.UpdateGameIDFunc(ctx, exec, id, gameID, status)
	}
	return nil
}

func (f *FakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result *models.MatchResult, status models.MatchStatus) error {
	if f.UpdateResultFunc != nil {
		return f.UpdateResultFunc(ctx, exec, id, result, status)
	}
	return nil
}

func (f *FakeMatchRepo) ExpireOverdue(ctx context.Context, exec repositories.SQLExecutor, now time.Time) ([]int, error) {
	if f.ExpireOverdueFunc != nil {
		return f.ExpireOverdueFunc(ctx, exec, now)
	}
	return nil, nil
}

func (f *FakeMatchRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

// FakeProposalRepo implements repositories.ProposalRepository.
type FakeProposalRepo struct {
	CreateFunc              func(ctx context.Context, exec repositories.SQLExecutor, proposal *models.ScheduleProposal) error
	GetByIDFunc             func(ctx context.Context, id string) (*models.ScheduleProposal, error)
	GetActiveByMatchFunc    func(ctx context.Context, matchID int) (*models.ScheduleProposal, error)
	UpdateStatusFunc        func(ctx context.Context, exec repositories.SQLExecutor, id string, status models.ProposalStatus, responseMessage *string) error
	SetAlternativeFunc      func(ctx context.Context, exec repositories.SQLExecutor, id string, alternativeTime time.Time, responseMessage *string) error
	ExpireActiveByMatchFunc func(ctx context.Context, exec repositories.SQLExecutor, matchID int) error
}

func (f *FakeProposalRepo) Create(ctx context.Context, exec repositories.SQLExecutor, proposal *models.ScheduleProposal) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, proposal)
	}
	return nil
}

func (f *FakeProposalRepo) GetByID(ctx context.Context, id string) (*models.ScheduleProposal, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrProposalNotFound
}

func (f *FakeProposalRepo) GetActiveByMatch(ctx context.Context, matchID int) (*models.ScheduleProposal, error) {
	if f.GetActiveByMatchFunc != nil {
		return f.GetActiveByMatchFunc(ctx, matchID)
	}
	return nil, repositories.ErrProposalNotFound
}

func (f *FakeProposalRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.ProposalStatus, responseMessage *string) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, exec, id, status, responseMessage)
	}
	return nil
}

func (f *FakeProposalRepo) SetAlternative(ctx context.Context, exec repositories.SQLExecutor, id string, alternativeTime time.Time, responseMessage *string) error {
	if f.SetAlternativeFunc != nil {
		return f.SetAlternativeFunc(ctx, exec, id, alternativeTime, responseMessage)
	}
	return nil
}

func (f *FakeProposalRepo) ExpireActiveByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	if f.ExpireActiveByMatchFunc != nil {
		return f.ExpireActiveByMatchFunc(ctx, exec, matchID)
	}
	return nil
}

// FakeLiveStartRepo implements repositories.LiveStartRepository.
type FakeLiveStartRepo struct {
	CreateFunc                   func(ctx context.Context, exec repositories.SQLExecutor, request *models.LiveStartRequest) error
	GetByIDFunc                  func(ctx context.Context, id string) (*models.LiveStartRequest, error)
	GetPendingByMatchFunc        func(ctx context.Context, matchID int) (*models.LiveStartRequest, error)
	ListPendingForRecipientFunc  func(ctx context.Context, recipientID int) ([]*models.LiveStartRequest, error)
	UpdateStatusFunc             func(ctx context.Context, exec repositories.SQLExecutor, id string, from, to models.LiveStartStatus) error
	CancelPendingByRequesterFunc func(ctx context.Context, exec repositories.SQLExecutor, matchID, requesterID int) error
	ExpireOverdueFunc            func(ctx context.Context, exec repositories.SQLExecutor, now time.Time) ([]*models.LiveStartRequest, error)
}

func (f *FakeLiveStartRepo) Create(ctx context.Context, exec repositories.SQLExecutor, request *models.LiveStartRequest) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, request)
	}
	return nil
}

func (f *FakeLiveStartRepo) GetByID(ctx context.Context, id string) (*models.LiveStartRequest, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrLiveStartNotFound
}

func (f *FakeLiveStartRepo) GetPendingByMatch(ctx context.Context, matchID int) (*models.LiveStartRequest, error) {
	if f.GetPendingByMatchFunc != nil {
		return f.GetPendingByMatchFunc(ctx, matchID)
	}
	return nil, repositories.ErrLiveStartNotFound
}

func (f *FakeLiveStartRepo) ListPendingForRecipient(ctx context.Context, recipientID int) ([]*models.LiveStartRequest, error) {
	if f.ListPendingForRecipientFunc != nil {
		return f.ListPendingForRecipientFunc(ctx, recipientID)
	}
	return nil, nil
}

func (f *FakeLiveStartRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, from, to models.LiveStartStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, exec, id, from, to)
	}
	return nil
}

func (f *FakeLiveStartRepo) CancelPendingByRequester(ctx context.Context, exec repositories.SQLExecutor, matchID, requesterID int) error {
	if f.CancelPendingByRequesterFunc != nil {
		return f.CancelPendingByRequesterFunc(ctx, exec, matchID, requesterID)
	}
	return nil
}

func (f *FakeLiveStartRepo) ExpireOverdue(ctx context.Context, exec repositories.SQLExecutor, now time.Time) ([]*models.LiveStartRequest, error) {
	if f.ExpireOverdueFunc != nil {
		return f.ExpireOverdueFunc(ctx, exec, now)
	}
	return nil, nil
}

// FakeParticipantRepo implements repositories.ParticipantRepository.
type FakeParticipantRepo struct {
	ListByChampionshipFunc func(ctx context.Context, championshipID int) ([]*models.Participant, error)
	GetByUserFunc          func(ctx context.Context, championshipID, userID int) (*models.Participant, error)
}

func (f *FakeParticipantRepo) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Participant, error) {
	if f.ListByChampionshipFunc != nil {
		return f.ListByChampionshipFunc(ctx, championshipID)
	}
	return nil, nil
}

func (f *FakeParticipantRepo) GetByUser(ctx context.Context, championshipID, userID int) (*models.Participant, error) {
	if f.GetByUserFunc != nil {
		return f.GetByUserFunc(ctx, championshipID, userID)
	}
	return nil, repositories.ErrParticipantNotFound
}

type publishedEvent struct {
	UserID    int
	EventType string
	Payload   interface{}
}

// fakePublisher records everything pushed through it.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishToUser(userID int, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, EventType: eventType, Payload: payload})
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
