package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/narunbabu/chess-sub009/middleware"
	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/services"
)

type MatchHandler struct {
	matchService services.MatchService
	logger       *slog.Logger
}

func NewMatchHandler(matchService services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matchService: matchService, logger: logger}
}

type matchResponse struct {
	Match   *models.Match         `json:"match"`
	Actions services.MatchActions `json:"actions"`
}

// GetMatch returns a single match together with the set of actions the
// authenticated viewer may take on it.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := matchResponse{
		Match:   match,
		Actions: h.matchService.ActionsFor(r.Context(), match, userID),
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": resp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type createMatchRequest struct {
	Round       int        `json:"round"`
	Board       int        `json:"board"`
	WhiteID     int        `json:"white_id"`
	BlackID     int        `json:"black_id"`
	Deadline    time.Time  `json:"deadline"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// CreateMatch ingests one pairing from the pairing backend into the
// championship.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input createMatchRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match := &models.Match{
		ChampionshipID: championshipID,
		Round:          input.Round,
		Board:          input.Board,
		WhiteID:        input.WhiteID,
		BlackID:        input.BlackID,
		Deadline:       input.Deadline,
		ScheduledAt:    input.ScheduledAt,
	}
	created, err := h.matchService.CreateMatch(r.Context(), match)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"data": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListChampionshipMatches(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByChampionship(r.Context(), championshipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMyMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	matches, err := h.matchService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteMatch removes a match outright. Reserved for organizer tooling;
// regular flows retire matches through results or expiry.
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createGameRequest struct {
	GameID int `json:"game_id"`
}

func (h *MatchHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input createGameRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.GameID <= 0 {
		errorResponse(w, r, http.StatusBadRequest, "game_id must be a positive integer")
		return
	}

	match, err := h.matchService.CreateGame(r.Context(), matchID, userID, input.GameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reportResultRequest struct {
	Outcome  models.MatchOutcome `json:"outcome"`
	WinnerID *int                `json:"winner_id,omitempty"`
}

func (h *MatchHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input reportResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result := &models.MatchResult{Outcome: input.Outcome, WinnerID: input.WinnerID}
	match, err := h.matchService.ReportResult(r.Context(), matchID, userID, result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
