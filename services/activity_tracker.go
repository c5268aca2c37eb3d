package services

import (
	"log/slog"
	"sync"
	"time"
)

// activityIdleAfter is how long without interaction before periodic
// refresh work is gated off.
const activityIdleAfter = 5 * time.Minute

// ActivityTracker gates periodic refresh work on recent user interaction.
// The frontend forwards its interaction signals (pointer, keyboard,
// scroll, touch) as pings; five silent minutes flip the gate off, the
// next ping flips it back on immediately.
type ActivityTracker struct {
	logger    *slog.Logger
	idleAfter time.Duration
	now       func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
	active       bool
}

func NewActivityTracker(logger *slog.Logger, idleAfter time.Duration, now func() time.Time) *ActivityTracker {
	if idleAfter <= 0 {
		idleAfter = activityIdleAfter
	}
	if now == nil {
		now = time.Now
	}
	return &ActivityTracker{
		logger:       logger,
		idleAfter:    idleAfter,
		now:          now,
		lastActivity: now(),
		active:       true,
	}
}

// Touch records an interaction and reactivates polling at once.
func (t *ActivityTracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActivity = t.now()
	if !t.active {
		t.active = true
		t.logger.Info("activity resumed, polling reactivated")
	}
}

// Active reports whether gated work should run right now.
func (t *ActivityTracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Check is the minute job: it compares idle time against the threshold
// and flips the gate off when the user has gone quiet.
func (t *ActivityTracker) Check() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active && t.now().Sub(t.lastActivity) >= t.idleAfter {
		t.active = false
		t.logger.Info("no recent activity, polling paused",
			slog.Duration("idle_for", t.now().Sub(t.lastActivity)))
	}
}
