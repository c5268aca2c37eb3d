package standings

import (
	"sort"

	"github.com/narunbabu/chess-sub009/models"
)

// DefaultByePoints is credited for an unpaired round when no override is
// configured.
const DefaultByePoints = 1.0

// Result is one completed game as the engine consumes it. Results must be
// supplied in chronological order per player for streaks to be meaningful.
type Result struct {
	WhiteID  int
	BlackID  int
	Outcome  models.MatchOutcome
	WinnerID *int
}

// Bye credits a participant for an unpaired round.
type Bye struct {
	UserID int
}

type Engine struct {
	byePoints float64
}

func NewEngine(byePoints float64) *Engine {
	if byePoints <= 0 {
		byePoints = DefaultByePoints
	}
	return &Engine{byePoints: byePoints}
}

type playerGame struct {
	opponentID int
	score      float64 // 1 win, 0.5 draw, 0 loss
	bye        bool
}

// Compute ranks the given participants over the given results. It is pure
// and deterministic: identical input yields identical output, and
// participants tied on every key keep their input order.
//
// Sort keys, all descending: points, Buchholz, Sonneborn-Berger, seed
// rating. Ranks are strictly sequential over the sorted order; rows tied
// on every key keep their input order and distinct ranks.
func (e *Engine) Compute(entries []models.StandingEntry, results []Result, byes []Bye) []models.Standing {
	games := make(map[int][]playerGame, len(entries))
	known := make(map[int]bool, len(entries))
	for _, entry := range entries {
		games[entry.UserID] = nil
		known[entry.UserID] = true
	}

	for _, r := range results {
		whiteScore, blackScore, counted := scores(r)
		if !counted {
			continue
		}
		if known[r.WhiteID] {
			games[r.WhiteID] = append(games[r.WhiteID], playerGame{opponentID: r.BlackID, score: whiteScore})
		}
		if known[r.BlackID] {
			games[r.BlackID] = append(games[r.BlackID], playerGame{opponentID: r.WhiteID, score: blackScore})
		}
	}
	for _, b := range byes {
		if known[b.UserID] {
			games[b.UserID] = append(games[b.UserID], playerGame{bye: true})
		}
	}

	points := make(map[int]float64, len(entries))
	for id, gs := range games {
		for _, g := range gs {
			if g.bye {
				points[id] += e.byePoints
				continue
			}
			points[id] += g.score
		}
	}

	table := make([]models.Standing, 0, len(entries))
	for _, entry := range entries {
		s := models.Standing{
			UserID:     entry.UserID,
			SeedRating: entry.SeedRating,
			Points:     points[entry.UserID],
		}
		for _, g := range games[entry.UserID] {
			if g.bye {
				s.Wins++
				continue
			}
			s.GamesPlayed++
			switch g.score {
			case 1:
				s.Wins++
				s.SonnebornBerger += points[g.opponentID]
			case 0.5:
				s.Draws++
				s.SonnebornBerger += points[g.opponentID] / 2
			default:
				s.Losses++
			}
			s.Buchholz += points[g.opponentID]
		}
		s.Streak = streak(games[entry.UserID])
		if s.GamesPlayed > 0 {
			pct := s.Points / float64(s.GamesPlayed) * 100
			s.PerformancePct = &pct
		}
		table = append(table, s)
	}

	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Buchholz != b.Buchholz {
			return a.Buchholz > b.Buchholz
		}
		if a.SonnebornBerger != b.SonnebornBerger {
			return a.SonnebornBerger > b.SonnebornBerger
		}
		return a.SeedRating > b.SeedRating
	})
	for i := range table {
		table[i].Rank = i + 1
	}
	return table
}

func scores(r Result) (white, black float64, counted bool) {
	switch r.Outcome {
	case models.OutcomeWhiteWin:
		return 1, 0, true
	case models.OutcomeBlackWin:
		return 0, 1, true
	case models.OutcomeDraw:
		return 0.5, 0.5, true
	case models.OutcomeForfeit:
		if r.WinnerID == nil {
			return 0, 0, false
		}
		if *r.WinnerID == r.WhiteID {
			return 1, 0, true
		}
		return 0, 1, true
	case models.OutcomeDoubleForfeit:
		return 0, 0, true
	default:
		return 0, 0, false
	}
}

// streak is the signed run of identical outcomes ending at the most recent
// played game. Byes do not extend or break a run; a draw ends it at zero.
func streak(gs []playerGame) int {
	run := 0
	for i := len(gs) - 1; i >= 0; i-- {
		g := gs[i]
		if g.bye {
			continue
		}
		switch {
		case g.score == 1 && run >= 0:
			run++
		case g.score == 0 && run <= 0:
			run--
		default:
			return run
		}
	}
	return run
}
