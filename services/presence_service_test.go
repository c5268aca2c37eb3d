package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePresenceProvider struct {
	mu     sync.Mutex
	online map[int]bool
	err    error
	calls  []time.Time
	ids    []int
}

func (f *fakePresenceProvider) IsOnline(ctx context.Context, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, time.Now())
	f.ids = append(f.ids, userID)
	if f.err != nil {
		return false, f.err
	}
	return f.online[userID], nil
}

func (f *fakePresenceProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPresenceSelfIsAlwaysOnline(t *testing.T) {
	provider := &fakePresenceProvider{}
	svc := NewPresenceService(provider, nil, slog.Default(), 0, 0)

	assert.True(t, svc.IsOnline(context.Background(), 100, 100))
	assert.Zero(t, provider.callCount(), "self lookup never reaches the provider")
}

func TestPresenceFailsClosedUntilResolved(t *testing.T) {
	provider := &fakePresenceProvider{online: map[int]bool{200: true}}
	svc := NewPresenceService(provider, nil, slog.Default(), 10*time.Millisecond, time.Millisecond)

	// Unknown user reads offline and is queued for the next batch.
	assert.False(t, svc.IsOnline(context.Background(), 100, 200))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	assert.Eventually(t, func() bool {
		return svc.IsOnline(context.Background(), 100, 200)
	}, time.Second, 5*time.Millisecond)
}

func TestPresenceProviderErrorCachesOffline(t *testing.T) {
	provider := &fakePresenceProvider{err: errors.New("presence backend down")}
	svc := NewPresenceService(provider, nil, slog.Default(), 10*time.Millisecond, time.Millisecond)

	assert.False(t, svc.IsOnline(context.Background(), 100, 200))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	assert.Eventually(t, func() bool {
		return provider.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The failure is cached: asking again neither flips the answer nor
	// triggers another lookup.
	assert.False(t, svc.IsOnline(context.Background(), 100, 200))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, provider.callCount())
}

func TestPresenceGateSkipsBatches(t *testing.T) {
	provider := &fakePresenceProvider{online: map[int]bool{200: true}}
	svc := NewPresenceService(provider, func() bool { return false }, slog.Default(), 10*time.Millisecond, time.Millisecond)

	assert.False(t, svc.IsOnline(context.Background(), 100, 200))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, provider.callCount(), "gated batches are skipped, not deferred")
}

func TestPresenceLookupsArePaced(t *testing.T) {
	provider := &fakePresenceProvider{online: map[int]bool{}}
	pace := 20 * time.Millisecond
	svc := NewPresenceService(provider, nil, slog.Default(), 10*time.Millisecond, pace)

	for id := 200; id < 204; id++ {
		assert.False(t, svc.IsOnline(context.Background(), 100, id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	assert.Eventually(t, func() bool {
		return provider.callCount() == 4
	}, 2*time.Second, 5*time.Millisecond)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	for i := 1; i < len(provider.calls); i++ {
		gap := provider.calls[i].Sub(provider.calls[i-1])
		assert.GreaterOrEqual(t, gap, pace-5*time.Millisecond,
			"consecutive provider calls must be spaced out")
	}
}
