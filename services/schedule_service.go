package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/realtime"
	"github.com/narunbabu/chess-sub009/repositories"
)

type ScheduleService interface {
	GetActiveProposal(ctx context.Context, matchID int) (*models.ScheduleProposal, error)
	Propose(ctx context.Context, matchID, userID int, proposedTime time.Time, message *string) (*models.ScheduleProposal, error)
	Accept(ctx context.Context, proposalID string, userID int, responseMessage *string) (*models.ScheduleProposal, error)
	ProposeAlternative(ctx context.Context, proposalID string, userID int, alternativeTime time.Time, responseMessage *string) (*models.ScheduleProposal, error)
	AcceptAlternative(ctx context.Context, proposalID string, userID int, responseMessage *string) (*models.ScheduleProposal, error)
}

type scheduleService struct {
	matchRepo    repositories.MatchRepository
	proposalRepo repositories.ProposalRepository
	publisher    realtime.Publisher
	logger       *slog.Logger
	now          func() time.Time
}

func NewScheduleService(
	matchRepo repositories.MatchRepository,
	proposalRepo repositories.ProposalRepository,
	publisher realtime.Publisher,
	logger *slog.Logger,
	now func() time.Time,
) ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &scheduleService{
		matchRepo:    matchRepo,
		proposalRepo: proposalRepo,
		publisher:    publisher,
		logger:       logger,
		now:          now,
	}
}

func (s *scheduleService) GetActiveProposal(ctx context.Context, matchID int) (*models.ScheduleProposal, error) {
	proposal, err := s.proposalRepo.GetActiveByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

// Propose offers a play time inside [now, match deadline]. The window is
// validated before any write; an offer outside it never reaches the
// repository. A fresh proposal supersedes whatever working proposal the
// match still carries.
func (s *scheduleService) Propose(ctx context.Context, matchID, userID int, proposedTime time.Time, message *string) (*models.ScheduleProposal, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	if !matchOpenForPlay(match) || match.GameID != nil || match.Result != nil {
		return nil, ErrMatchNotOpen
	}
	if err := validateProposedTime(proposedTime, s.now(), match.Deadline); err != nil {
		return nil, err
	}

	if err := s.proposalRepo.ExpireActiveByMatch(ctx, nil, matchID); err != nil {
		return nil, err
	}

	proposal := &models.ScheduleProposal{
		ID:           uuid.NewString(),
		MatchID:      matchID,
		ProposerID:   userID,
		ProposedTime: proposedTime,
		Status:       models.ProposalStatusProposed,
		Message:      message,
	}
	if err := s.proposalRepo.Create(ctx, nil, proposal); err != nil {
		if errors.Is(err, repositories.ErrProposalAlreadyActive) {
			// A racing proposal got in between the supersede and the
			// insert. Benign: the caller re-reads the current offer.
			return nil, ErrProposalConflict
		}
		return nil, err
	}
	s.logger.Info("schedule proposed",
		slog.Int("match_id", matchID), slog.Int("proposer_id", userID),
		slog.Time("proposed_time", proposedTime))
	return proposal, nil
}

// Accept resolves the working proposal at its offered time. Accepting an
// already-resolved proposal is an idempotent no-op returning current state.
func (s *scheduleService) Accept(ctx context.Context, proposalID string, userID int, responseMessage *string) (*models.ScheduleProposal, error) {
	proposal, err := s.loadProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status == models.ProposalStatusProposed && proposal.ProposerID == userID {
		return nil, ErrSelfResponseForbidden
	}
	return s.resolve(ctx, proposalID, userID, responseMessage, func(p *models.ScheduleProposal) time.Time {
		return p.ProposedTime
	})
}

// AcceptAlternative resolves an alternative-proposed offer at its
// alternative time.
func (s *scheduleService) AcceptAlternative(ctx context.Context, proposalID string, userID int, responseMessage *string) (*models.ScheduleProposal, error) {
	return s.resolve(ctx, proposalID, userID, responseMessage, func(p *models.ScheduleProposal) time.Time {
		if p.AlternativeTime != nil {
			return *p.AlternativeTime
		}
		return p.ProposedTime
	})
}

func (s *scheduleService) resolve(ctx context.Context, proposalID string, userID int, responseMessage *string, agreedTime func(*models.ScheduleProposal) time.Time) (*models.ScheduleProposal, error) {
	proposal, err := s.loadProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Terminal() {
		// Already resolved elsewhere; the desired end state may well hold.
		return proposal, nil
	}
	match, err := s.loadMatch(ctx, proposal.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	if s.now().After(match.Deadline) {
		return nil, ErrProposedTimePastDeadline
	}

	when := agreedTime(proposal)
	if err := s.proposalRepo.UpdateStatus(ctx, nil, proposalID, models.ProposalStatusAccepted, responseMessage); err != nil {
		return nil, err
	}
	next := models.MatchStatusScheduled
	if !IsValidMatchTransition(match.Status, next) {
		next = match.Status
	}
	if err := s.matchRepo.UpdateScheduledAt(ctx, nil, match.ID, when, next); err != nil {
		return nil, err
	}
	proposal.Status = models.ProposalStatusAccepted
	proposal.ResponseMessage = responseMessage

	s.publishMatchScheduled(match, when, next)
	s.logger.Info("schedule accepted",
		slog.Int("match_id", match.ID), slog.String("proposal_id", proposalID),
		slog.Time("scheduled_at", when))
	return proposal, nil
}

// ProposeAlternative counters the working offer with a different time.
// Either side may keep countering; the single working proposal is mutated
// in place, never duplicated.
func (s *scheduleService) ProposeAlternative(ctx context.Context, proposalID string, userID int, alternativeTime time.Time, responseMessage *string) (*models.ScheduleProposal, error) {
	proposal, err := s.loadProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Terminal() {
		return nil, ErrProposalConflict
	}
	match, err := s.loadMatch(ctx, proposal.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	if err := validateProposedTime(alternativeTime, s.now(), match.Deadline); err != nil {
		return nil, err
	}

	if err := s.proposalRepo.SetAlternative(ctx, nil, proposalID, alternativeTime, responseMessage); err != nil {
		return nil, err
	}
	proposal.Status = models.ProposalStatusAlternativeProposed
	proposal.AlternativeTime = &alternativeTime
	proposal.ResponseMessage = responseMessage
	s.logger.Info("alternative time proposed",
		slog.Int("match_id", match.ID), slog.String("proposal_id", proposalID),
		slog.Time("alternative_time", alternativeTime))
	return proposal, nil
}

func (s *scheduleService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *scheduleService) loadProposal(ctx context.Context, proposalID string) (*models.ScheduleProposal, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

func (s *scheduleService) publishMatchScheduled(match *models.Match, when time.Time, status models.MatchStatus) {
	if s.publisher == nil {
		return
	}
	payload := models.MatchUpdatedEvent{MatchID: match.ID, Status: status}
	s.publisher.PublishToUser(match.WhiteID, models.EventMatchUpdated, payload)
	s.publisher.PublishToUser(match.BlackID, models.EventMatchUpdated, payload)
}
