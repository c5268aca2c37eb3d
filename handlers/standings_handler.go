package handlers

import (
	"log/slog"
	"net/http"

	"github.com/narunbabu/chess-sub009/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	logger           *slog.Logger
}

func NewStandingsHandler(standingsService services.StandingsService, logger *slog.Logger) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService, logger: logger}
}

func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.ComputeForChampionship(r.Context(), championshipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportSnapshot uploads the current standings table to object storage and
// returns its public URL.
func (h *StandingsHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.standingsService.ExportSnapshot(r.Context(), championshipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"data": jsonResponse{"url": location}}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
