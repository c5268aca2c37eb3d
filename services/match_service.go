package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/realtime"
	"github.com/narunbabu/chess-sub009/repositories"
)

// MatchActions tells a viewer which match actions are currently legal.
// Derived on every read, never stored.
type MatchActions struct {
	CanCreateGame       bool `json:"can_create_game"`
	CanReportResult     bool `json:"can_report_result"`
	CanPropose          bool `json:"can_propose"`
	CanRequestLiveStart bool `json:"can_request_live_start"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, match *models.Match) (*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Match, error)
	ListForUser(ctx context.Context, userID int) ([]*models.Match, error)
	ActionsFor(ctx context.Context, match *models.Match, userID int) MatchActions
	CreateGame(ctx context.Context, matchID, userID, gameID int) (*models.Match, error)
	ReportResult(ctx context.Context, matchID, userID int, result *models.MatchResult) (*models.Match, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
	Delete(ctx context.Context, matchID int) error
}

type matchService struct {
	matchRepo       repositories.MatchRepository
	liveStartRepo   repositories.LiveStartRepository
	participantRepo repositories.ParticipantRepository
	publisher       realtime.Publisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	liveStartRepo repositories.LiveStartRepository,
	participantRepo repositories.ParticipantRepository,
	publisher realtime.Publisher,
	logger *slog.Logger,
	now func() time.Time,
) MatchService {
	if now == nil {
		now = time.Now
	}
	return &matchService{
		matchRepo:       matchRepo,
		liveStartRepo:   liveStartRepo,
		participantRepo: participantRepo,
		publisher:       publisher,
		logger:          logger,
		now:             now,
	}
}

// CreateMatch ingests one pairing produced by the pairing backend. Both
// players must be registered participants of the championship; the match
// always starts its life pending.
func (s *matchService) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	if match == nil {
		return nil, fmt.Errorf("%w: match payload is required", ErrValidationFailed)
	}
	if match.ChampionshipID <= 0 || match.Round <= 0 {
		return nil, fmt.Errorf("%w: championship_id and round must be positive", ErrValidationFailed)
	}
	if match.WhiteID <= 0 || match.BlackID <= 0 || match.WhiteID == match.BlackID {
		return nil, fmt.Errorf("%w: a match needs two distinct players", ErrValidationFailed)
	}
	if !match.Deadline.After(s.now()) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrValidationFailed)
	}
	for _, userID := range []int{match.WhiteID, match.BlackID} {
		if _, err := s.participantRepo.GetByUser(ctx, match.ChampionshipID, userID); err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return nil, ErrNotAParticipant
			}
			return nil, err
		}
	}

	match.Status = models.MatchStatusPending
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, err
	}
	s.logger.Info("match created",
		slog.Int("match_id", match.ID), slog.Int("championship_id", match.ChampionshipID),
		slog.Int("round", match.Round))
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	// Deadline overruns are reconciled on read; the viewer never sees an
	// open match past its deadline even between sweeps.
	if matchOpenForPlay(match) && s.now().After(match.Deadline) {
		if err := s.matchRepo.UpdateStatus(ctx, nil, match.ID, models.MatchStatusExpired); err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
			s.logger.Warn("failed to expire overdue match on read",
				slog.Int("match_id", match.ID), slog.Any("error", err))
			return match, nil
		}
		match.Status = models.MatchStatusExpired
	}
	return match, nil
}

func (s *matchService) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByChampionship(ctx, championshipID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: matches for championship %d: %w", ErrMatchesListFailed, championshipID, err)
	}
	return matches, nil
}

func (s *matchService) ListForUser(ctx context.Context, userID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: matches for user %d: %w", ErrMatchesListFailed, userID, err)
	}
	return matches, nil
}

// ActionsFor evaluates the derived predicates for one viewer. A lookup
// failure on the pending live-start request degrades to "no incoming
// request" rather than blocking the read path.
func (s *matchService) ActionsFor(ctx context.Context, match *models.Match, userID int) MatchActions {
	var actions MatchActions
	if match == nil || !match.IsParticipant(userID) {
		return actions
	}

	open := matchOpenForPlay(match)
	actions.CanCreateGame = open && match.GameID == nil
	actions.CanReportResult = (open || match.Status == models.MatchStatusActive) && match.Result == nil
	actions.CanPropose = open && match.GameID == nil && match.Result == nil

	if !actions.CanPropose {
		return actions
	}
	actions.CanRequestLiveStart = true
	pending, err := s.liveStartRepo.GetPendingByMatch(ctx, match.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrLiveStartNotFound) {
			s.logger.Warn("pending live start lookup failed",
				slog.Int("match_id", match.ID), slog.Any("error", err))
		}
		return actions
	}
	// An unresolved incoming request blocks a fresh outgoing one.
	if pending.RecipientID == userID && pending.Actionable(s.now()) {
		actions.CanRequestLiveStart = false
	}
	return actions
}

func (s *matchService) CreateGame(ctx context.Context, matchID, userID, gameID int) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	if !matchOpenForPlay(match) {
		return nil, ErrMatchNotOpen
	}
	if match.GameID != nil {
		return nil, ErrGameAlreadyCreated
	}
	if !IsValidMatchTransition(match.Status, models.MatchStatusActive) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.matchRepo.UpdateGameID(ctx, nil, matchID, gameID, models.MatchStatusActive); err != nil {
		return nil, err
	}
	match.GameID = &gameID
	match.Status = models.MatchStatusActive
	s.broadcastMatchUpdated(match)
	return match, nil
}

// ReportResult registers an externally supplied result. The service never
// invents results on its own; forfeit outcomes land on the forfeit status,
// everything else completes the match.
func (s *matchService) ReportResult(ctx context.Context, matchID, userID int, result *models.MatchResult) (*models.Match, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result payload is required", ErrValidationFailed)
	}
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(userID) {
		return nil, ErrNotAParticipant
	}
	if match.Result != nil {
		return nil, ErrResultAlreadyReported
	}

	next := models.MatchStatusCompleted
	if result.Outcome == models.OutcomeForfeit || result.Outcome == models.OutcomeDoubleForfeit {
		next = models.MatchStatusForfeit
	}
	if !IsValidMatchTransition(match.Status, next) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.matchRepo.UpdateResult(ctx, nil, matchID, result, next); err != nil {
		return nil, err
	}
	match.Result = result
	match.Status = next
	s.broadcastMatchUpdated(match)
	return match, nil
}

// ExpireOverdue is the deadline sweep: one pass flips every pending or
// scheduled match whose deadline has passed to expired.
func (s *matchService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.matchRepo.ExpireOverdue(ctx, nil, now)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		s.logger.Info("expired overdue matches", slog.Int("count", len(ids)))
	}
	return len(ids), nil
}

func (s *matchService) Delete(ctx context.Context, matchID int) error {
	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}

func (s *matchService) broadcastMatchUpdated(match *models.Match) {
	if s.publisher == nil {
		return
	}
	payload := models.MatchUpdatedEvent{MatchID: match.ID, Status: match.Status}
	s.publisher.PublishToUser(match.WhiteID, models.EventMatchUpdated, payload)
	s.publisher.PublishToUser(match.BlackID, models.EventMatchUpdated, payload)
}
