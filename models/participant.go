package models

import "time"

// Participant is a registered entrant of a championship. Registration and
// payment are handled elsewhere; this service only reads the roster.
type Participant struct {
	ID             int       `json:"id"`
	ChampionshipID int       `json:"championship_id"`
	UserID         int       `json:"user_id"`
	SeedRating     int       `json:"seed_rating"`
	RegisteredAt   time.Time `json:"registered_at"`
}
