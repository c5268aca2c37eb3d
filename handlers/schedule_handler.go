package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/narunbabu/chess-sub009/middleware"
	"github.com/narunbabu/chess-sub009/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
	logger          *slog.Logger
}

func NewScheduleHandler(scheduleService services.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, logger: logger}
}

func (h *ScheduleHandler) GetActiveProposal(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proposal, err := h.scheduleService.GetActiveProposal(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": proposal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type proposeRequest struct {
	ProposedTime time.Time `json:"proposed_time"`
	Message      *string   `json:"message,omitempty"`
}

func (h *ScheduleHandler) Propose(w http.ResponseWriter, r *http.Request) {
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

	var input proposeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ProposedTime.IsZero() {
		errorResponse(w, r, http.StatusBadRequest, "proposed_time is required")
		return
	}

	proposal, err := h.scheduleService.Propose(r.Context(), matchID, userID, input.ProposedTime, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"data": proposal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type respondRequest struct {
	ResponseMessage *string `json:"response_message,omitempty"`
}

func (h *ScheduleHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	proposalID := chi.URLParam(r, "proposalID")
	if proposalID == "" {
		errorResponse(w, r, http.StatusBadRequest, "invalid proposalID parameter")
		return
	}

	var input respondRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proposal, err := h.scheduleService.Accept(r.Context(), proposalID, userID, input.ResponseMessage)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": proposal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type alternativeRequest struct {
	AlternativeTime time.Time `json:"alternative_time"`
	ResponseMessage *string   `json:"response_message,omitempty"`
}

func (h *ScheduleHandler) ProposeAlternative(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	proposalID := chi.URLParam(r, "proposalID")
	if proposalID == "" {
		errorResponse(w, r, http.StatusBadRequest, "invalid proposalID parameter")
		return
	}

	var input alternativeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.AlternativeTime.IsZero() {
		errorResponse(w, r, http.StatusBadRequest, "alternative_time is required")
		return
	}

	proposal, err := h.scheduleService.ProposeAlternative(r.Context(), proposalID, userID, input.AlternativeTime, input.ResponseMessage)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": proposal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) AcceptAlternative(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	proposalID := chi.URLParam(r, "proposalID")
	if proposalID == "" {
		errorResponse(w, r, http.StatusBadRequest, "invalid proposalID parameter")
		return
	}

	var input respondRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proposal, err := h.scheduleService.AcceptAlternative(r.Context(), proposalID, userID, input.ResponseMessage)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": proposal}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
