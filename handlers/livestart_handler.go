package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/narunbabu/chess-sub009/middleware"
	"github.com/narunbabu/chess-sub009/services"
)

type LiveStartHandler struct {
	liveStartService services.LiveStartService
	logger           *slog.Logger
}

func NewLiveStartHandler(liveStartService services.LiveStartService, logger *slog.Logger) *LiveStartHandler {
	return &LiveStartHandler{liveStartService: liveStartService, logger: logger}
}

// Send creates a live start request addressed to the opponent. Re-sending
// while the caller already has an outgoing pending request replaces it.
func (h *LiveStartHandler) Send(w http.ResponseWriter, r *http.Request) {
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

	request, err := h.liveStartService.Send(r.Context(), matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"data": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveStartHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		errorResponse(w, r, http.StatusBadRequest, "invalid requestID parameter")
		return
	}

	request, err := h.liveStartService.Accept(r.Context(), requestID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveStartHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		errorResponse(w, r, http.StatusBadRequest, "invalid requestID parameter")
		return
	}

	request, err := h.liveStartService.Decline(r.Context(), requestID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveStartHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	requests, err := h.liveStartService.ListIncoming(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
