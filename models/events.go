package models

// Push event kinds delivered over the per-user realtime channel.
const (
	EventLiveStartRequested = "live_start_requested"
	EventLiveStartAccepted  = "live_start_accepted"
	EventLiveStartDeclined  = "live_start_declined"
	EventMatchUpdated       = "match_updated"
)

// LiveStartEvent is the payload for the three live-start event kinds.
type LiveStartEvent struct {
	RequestID     string `json:"request_id"`
	MatchID       int    `json:"match_id"`
	GameID        *int   `json:"game_id,omitempty"`
	CounterpartID int    `json:"counterpart_id"`
}

// MatchUpdatedEvent tells a participant to re-read a match from the server.
type MatchUpdatedEvent struct {
	MatchID int         `json:"match_id"`
	Status  MatchStatus `json:"status"`
}
