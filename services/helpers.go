package services

import (
	"time"

	"github.com/narunbabu/chess-sub009/models"
)

// allowedMatchTransitions is the whole lifecycle: the forward path
// pending, scheduled, active, completed plus the escape edges out of the
// two pre-play states. A result report may complete a match straight from
// a pre-play state (agreed forfeits). Nothing ever moves backwards.
var allowedMatchTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusPending: {
		models.MatchStatusScheduled,
		models.MatchStatusActive,
		models.MatchStatusCompleted,
		models.MatchStatusForfeit,
		models.MatchStatusExpired,
	},
	models.MatchStatusScheduled: {
		models.MatchStatusActive,
		models.MatchStatusCompleted,
		models.MatchStatusForfeit,
		models.MatchStatusExpired,
	},
	models.MatchStatusActive: {
		models.MatchStatusCompleted,
	},
	models.MatchStatusCompleted: {},
	models.MatchStatusForfeit:   {},
	models.MatchStatusExpired:   {},
}

// IsValidMatchTransition reports whether a match may move from current to
// next. Same-status writes are allowed so reconciliation stays idempotent.
func IsValidMatchTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range allowedMatchTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// matchOpenForPlay reports whether the match still awaits play: the only
// two states from which scheduling or a live start can proceed.
func matchOpenForPlay(m *models.Match) bool {
	return m.Status == models.MatchStatusPending || m.Status == models.MatchStatusScheduled
}

func validateProposedTime(proposed, now, deadline time.Time) error {
	if proposed.Before(now) {
		return ErrProposedTimeInPast
	}
	if !proposed.Before(deadline) {
		return ErrProposedTimePastDeadline
	}
	return nil
}
