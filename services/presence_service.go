package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	presenceBatchInterval = 2 * time.Second
	presenceLookupPace    = 100 * time.Millisecond
)

// PresenceProvider is the external presence backend.
type PresenceProvider interface {
	IsOnline(ctx context.Context, userID int) (bool, error)
}

// PresenceService answers online/offline questions from a session-lifetime
// cache. It never returns an error: an unknown user reads as offline while
// a batched lookup resolves in the background, and a failed lookup is
// cached as offline so repeated failures cannot turn into retry storms.
type PresenceService interface {
	IsOnline(ctx context.Context, viewerID, userID int) bool
	Run(ctx context.Context)
}

type presenceService struct {
	provider PresenceProvider
	gate     func() bool
	logger   *slog.Logger

	batchInterval time.Duration
	lookupPace    time.Duration

	mu      sync.Mutex
	cache   map[int]bool
	pending map[int]bool
}

// NewPresenceService builds the cache around a provider. gate may be nil;
// when set, refresh batches are skipped entirely while it reports false.
// Zero intervals fall back to the defaults.
func NewPresenceService(provider PresenceProvider, gate func() bool, logger *slog.Logger, batchInterval, lookupPace time.Duration) PresenceService {
	if batchInterval <= 0 {
		batchInterval = presenceBatchInterval
	}
	if lookupPace <= 0 {
		lookupPace = presenceLookupPace
	}
	return &presenceService{
		provider:      provider,
		gate:          gate,
		logger:        logger,
		batchInterval: batchInterval,
		lookupPace:    lookupPace,
		cache:         make(map[int]bool),
		pending:       make(map[int]bool),
	}
}

// IsOnline is optimistically pessimistic: until a lookup for userID has
// resolved, the answer is false. The viewer asking about themselves is
// always online, no lookup spent.
func (s *presenceService) IsOnline(ctx context.Context, viewerID, userID int) bool {
	if viewerID == userID {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if online, ok := s.cache[userID]; ok {
		return online
	}
	s.pending[userID] = true
	return false
}

// Run drives the batched lookups until ctx is cancelled: at most one batch
// per interval, individual provider calls paced inside the batch.
func (s *presenceService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.gate != nil && !s.gate() {
				// Skipped, not deferred: no backlog bursts on resume.
				continue
			}
			s.flush(ctx)
		}
	}
}

func (s *presenceService) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := make([]int, 0, len(s.pending))
	for id := range s.pending {
		batch = append(batch, id)
	}
	s.pending = make(map[int]bool)
	s.mu.Unlock()

	limiter := rate.NewLimiter(rate.Every(s.lookupPace), 1)
	for _, id := range batch {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		online, err := s.provider.IsOnline(ctx, id)
		if err != nil {
			// Fail closed and stop asking for the rest of the session.
			s.logger.Warn("presence lookup failed",
				slog.Int("user_id", id), slog.Any("error", err))
			online = false
		}
		s.mu.Lock()
		s.cache[id] = online
		s.mu.Unlock()
	}
}
