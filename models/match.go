package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusForfeit   MatchStatus = "forfeit"
	MatchStatusExpired   MatchStatus = "expired"
)

type MatchOutcome string

const (
	OutcomeWhiteWin      MatchOutcome = "white_win"
	OutcomeBlackWin      MatchOutcome = "black_win"
	OutcomeDraw          MatchOutcome = "draw"
	OutcomeForfeit       MatchOutcome = "forfeit"
	OutcomeDoubleForfeit MatchOutcome = "double_forfeit"
)

type MatchResult struct {
	WinnerID *int         `json:"winner_id,omitempty"`
	Outcome  MatchOutcome `json:"outcome"`
}

// Match is a paired game inside a championship round. Pairing creates it,
// scheduling negotiation or a live-start handshake moves it towards active,
// an external result report completes it.
type Match struct {
	ID             int          `json:"id"`
	ChampionshipID int          `json:"championship_id"`
	Round          int          `json:"round"`
	Board          int          `json:"board"`
	WhiteID        int          `json:"white_id"`
	BlackID        int          `json:"black_id"`
	Status         MatchStatus  `json:"status"`
	ScheduledAt    *time.Time   `json:"scheduled_at,omitempty"`
	Deadline       time.Time    `json:"deadline"`
	GameID         *int         `json:"game_id,omitempty"`
	Result         *MatchResult `json:"result,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// IsParticipant reports whether userID plays in this match.
func (m *Match) IsParticipant(userID int) bool {
	return m.WhiteID == userID || m.BlackID == userID
}

// Opponent returns the other participant's id. The caller must already be
// known to be a participant.
func (m *Match) Opponent(userID int) int {
	if m.WhiteID == userID {
		return m.BlackID
	}
	return m.WhiteID
}
