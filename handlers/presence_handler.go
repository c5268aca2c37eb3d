package handlers

import (
	"log/slog"
	"net/http"

	"github.com/narunbabu/chess-sub009/middleware"
	"github.com/narunbabu/chess-sub009/services"
)

type PresenceHandler struct {
	presenceService services.PresenceService
	tracker         *services.ActivityTracker
	logger          *slog.Logger
}

func NewPresenceHandler(presenceService services.PresenceService, tracker *services.ActivityTracker, logger *slog.Logger) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService, tracker: tracker, logger: logger}
}

// GetPresence answers from the cache only. An unknown user reads as offline
// until the next batch refresh fills the entry in.
func (h *PresenceHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	online := h.presenceService.IsOnline(r.Context(), viewerID, userID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": jsonResponse{"user_id": userID, "online": online}}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Ping records user activity so periodic background work keeps running.
func (h *PresenceHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	h.tracker.Touch()
	w.WriteHeader(http.StatusNoContent)
}
