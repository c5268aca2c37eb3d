package models

import "time"

// LiveStartTTL bounds how long a "play now" request stays answerable.
const LiveStartTTL = 5 * time.Minute

type LiveStartStatus string

const (
	LiveStartStatusPending   LiveStartStatus = "pending"
	LiveStartStatusAccepted  LiveStartStatus = "accepted"
	LiveStartStatusDeclined  LiveStartStatus = "declined"
	LiveStartStatusExpired   LiveStartStatus = "expired"
	LiveStartStatusCancelled LiveStartStatus = "cancelled"
)

// LiveStartRequest is the short-lived "play now" handshake between the two
// participants of a match. Expiry is always evaluated against the absolute
// ExpiresAt instant, never a stored countdown.
type LiveStartRequest struct {
	ID          string          `json:"id"`
	MatchID     int             `json:"match_id"`
	RequesterID int             `json:"requester_id"`
	RecipientID int             `json:"recipient_id"`
	Status      LiveStartStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// ExpiredAt reports whether the request's TTL has run out at instant now.
func (r *LiveStartRequest) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Actionable reports whether the request can still be accepted or declined
// at instant now.
func (r *LiveStartRequest) Actionable(now time.Time) bool {
	return r.Status == LiveStartStatusPending && !r.ExpiredAt(now)
}
