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

// GameCreator starts the playable game for an accepted handshake. Satisfied
// by MatchService.CreateGame through a small adapter in main, kept as an
// interface so tests can fake it.
type GameCreator interface {
	CreateGame(ctx context.Context, matchID, userID, gameID int) (*models.Match, error)
}

// GameAllocator reserves a fresh game id from the external game engine.
type GameAllocator interface {
	AllocateGame(ctx context.Context, matchID int) (int, error)
}

type LiveStartService interface {
	Send(ctx context.Context, matchID, requesterID int) (*models.LiveStartRequest, error)
	Accept(ctx context.Context, requestID string, userID int) (*models.LiveStartRequest, error)
	Decline(ctx context.Context, requestID string, userID int) (*models.LiveStartRequest, error)
	ListIncoming(ctx context.Context, userID int) ([]*models.LiveStartRequest, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type liveStartService struct {
	matchRepo     repositories.MatchRepository
	liveStartRepo repositories.LiveStartRepository
	games         GameCreator
	allocator     GameAllocator
	publisher     realtime.Publisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewLiveStartService(
	matchRepo repositories.MatchRepository,
	liveStartRepo repositories.LiveStartRepository,
	games GameCreator,
	allocator GameAllocator,
	publisher realtime.Publisher,
	logger *slog.Logger,
	now func() time.Time,
) LiveStartService {
	if now == nil {
		now = time.Now
	}
	return &liveStartService{
		matchRepo:     matchRepo,
		liveStartRepo: liveStartRepo,
		games:         games,
		allocator:     allocator,
		publisher:     publisher,
		logger:        logger,
		now:           now,
	}
}

// Send opens the handshake. An unresolved incoming request from the
// opponent blocks a fresh outgoing one (no crossed handshakes); the
// requester's own still-pending request is silently superseded instead.
func (s *liveStartService) Send(ctx context.Context, matchID, requesterID int) (*models.LiveStartRequest, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !match.IsParticipant(requesterID) {
		return nil, ErrNotAParticipant
	}
	if !matchOpenForPlay(match) || match.GameID != nil || match.Result != nil {
		return nil, ErrMatchNotOpen
	}

	now := s.now()
	pending, err := s.liveStartRepo.GetPendingByMatch(ctx, matchID)
	if err != nil && !errors.Is(err, repositories.ErrLiveStartNotFound) {
		return nil, err
	}
	if pending != nil && pending.Actionable(now) {
		if pending.RecipientID == requesterID {
			return nil, ErrIncomingRequestPending
		}
		// Own outgoing request: cancel-and-resend without a round trip.
		if err := s.liveStartRepo.CancelPendingByRequester(ctx, nil, matchID, requesterID); err != nil {
			return nil, err
		}
	}

	request := &models.LiveStartRequest{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		RequesterID: requesterID,
		RecipientID: match.Opponent(requesterID),
		Status:      models.LiveStartStatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(models.LiveStartTTL),
	}
	if err := s.liveStartRepo.Create(ctx, nil, request); err != nil {
		if errors.Is(err, repositories.ErrLiveStartAlreadyPending) {
			// The opponent's request landed first; resolve that one.
			return nil, ErrLiveStartConflict
		}
		return nil, err
	}

	s.publish(request.RecipientID, models.EventLiveStartRequested, request, nil)
	s.logger.Info("live start requested",
		slog.Int("match_id", matchID), slog.Int("requester_id", requesterID),
		slog.Time("expires_at", request.ExpiresAt))
	return request, nil
}

// Accept resolves the handshake and starts the game immediately. Accepting
// a request that is no longer pending is not an error: the current record
// is returned so the caller can re-sync.
func (s *liveStartService) Accept(ctx context.Context, requestID string, userID int) (*models.LiveStartRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.LiveStartStatusPending {
		return request, nil
	}
	if request.RecipientID != userID {
		return nil, ErrNotRequestRecipient
	}
	now := s.now()
	if request.ExpiredAt(now) {
		// TTL ran out between sweeps; retire it in place.
		if err := s.liveStartRepo.UpdateStatus(ctx, nil, requestID, models.LiveStartStatusPending, models.LiveStartStatusExpired); err != nil && !errors.Is(err, repositories.ErrLiveStartNotFound) {
			return nil, err
		}
		request.Status = models.LiveStartStatusExpired
		return request, nil
	}

	// Allocate before resolving: a failed allocation leaves the request
	// pending so the recipient can simply accept again.
	gameID, err := s.allocator.AllocateGame(ctx, request.MatchID)
	if err != nil {
		return nil, err
	}

	if err := s.liveStartRepo.UpdateStatus(ctx, nil, requestID, models.LiveStartStatusPending, models.LiveStartStatusAccepted); err != nil {
		if errors.Is(err, repositories.ErrLiveStartNotFound) {
			// Lost the resolution race; re-read and report what holds now.
			return s.loadRequest(ctx, requestID)
		}
		return nil, err
	}
	request.Status = models.LiveStartStatusAccepted

	if _, err := s.games.CreateGame(ctx, request.MatchID, userID, gameID); err != nil {
		// The handshake is resolved even if game creation needs a retry;
		// both sides still learn about the acceptance.
		s.logger.Error("game creation after live start accept failed",
			slog.Int("match_id", request.MatchID), slog.Any("error", err))
	}

	s.publish(request.RequesterID, models.EventLiveStartAccepted, request, &gameID)
	s.publish(request.RecipientID, models.EventLiveStartAccepted, request, &gameID)
	s.logger.Info("live start accepted",
		slog.Int("match_id", request.MatchID), slog.String("request_id", requestID))
	return request, nil
}

// Decline resolves the handshake negatively. Like Accept, declining an
// already-resolved request reconciles instead of failing.
func (s *liveStartService) Decline(ctx context.Context, requestID string, userID int) (*models.LiveStartRequest, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.LiveStartStatusPending {
		return request, nil
	}
	if request.RecipientID != userID {
		return nil, ErrNotRequestRecipient
	}

	if err := s.liveStartRepo.UpdateStatus(ctx, nil, requestID, models.LiveStartStatusPending, models.LiveStartStatusDeclined); err != nil {
		if errors.Is(err, repositories.ErrLiveStartNotFound) {
			return s.loadRequest(ctx, requestID)
		}
		return nil, err
	}
	request.Status = models.LiveStartStatusDeclined

	s.publish(request.RequesterID, models.EventLiveStartDeclined, request, nil)
	s.logger.Info("live start declined",
		slog.Int("match_id", request.MatchID), slog.String("request_id", requestID))
	return request, nil
}

func (s *liveStartService) ListIncoming(ctx context.Context, userID int) ([]*models.LiveStartRequest, error) {
	requests, err := s.liveStartRepo.ListPendingForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Expiry is judged against the absolute instant on every read, so a
	// request past its TTL is never shown as actionable even before the
	// sweep catches it.
	now := s.now()
	actionable := requests[:0]
	for _, r := range requests {
		if r.Actionable(now) {
			actionable = append(actionable, r)
		}
	}
	return actionable, nil
}

// SweepExpired is the minute sweep: it retires every overdue pending
// request in one pass. No push event goes out; both sides run the same
// absolute-instant expiry check locally and discard the entry themselves.
func (s *liveStartService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.liveStartRepo.ExpireOverdue(ctx, nil, now)
	if err != nil {
		return 0, err
	}
	if len(expired) > 0 {
		s.logger.Info("expired live start requests", slog.Int("count", len(expired)))
	}
	return len(expired), nil
}

func (s *liveStartService) loadRequest(ctx context.Context, requestID string) (*models.LiveStartRequest, error) {
	request, err := s.liveStartRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrLiveStartNotFound) {
			return nil, ErrLiveStartNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *liveStartService) publish(userID int, eventType string, request *models.LiveStartRequest, gameID *int) {
	if s.publisher == nil {
		return
	}
	counterpart := request.RequesterID
	if userID == request.RequesterID {
		counterpart = request.RecipientID
	}
	s.publisher.PublishToUser(userID, eventType, models.LiveStartEvent{
		RequestID:     request.ID,
		MatchID:       request.MatchID,
		GameID:        gameID,
		CounterpartID: counterpart,
	})
}
