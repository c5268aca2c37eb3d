package models

// StandingEntry is a participant as the standings engine sees it before
// any results are applied.
type StandingEntry struct {
	UserID     int `json:"user_id"`
	SeedRating int `json:"seed_rating"`
}

// Standing is a derived view over completed results, never persisted as a
// source of truth by this service.
type Standing struct {
	UserID          int      `json:"user_id"`
	Points          float64  `json:"points"`
	GamesPlayed     int      `json:"games_played"`
	Wins            int      `json:"wins"`
	Draws           int      `json:"draws"`
	Losses          int      `json:"losses"`
	Buchholz        float64  `json:"buchholz"`
	SonnebornBerger float64  `json:"sonneborn_berger"`
	SeedRating      int      `json:"seed_rating"`
	Streak          int      `json:"streak"`
	Rank            int      `json:"rank"`
	PerformancePct  *float64 `json:"performance_pct,omitempty"`
}
