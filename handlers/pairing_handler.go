package handlers

import (
	"log/slog"
	"net/http"

	"github.com/narunbabu/chess-sub009/services"
)

type PairingHandler struct {
	pairingService services.PairingService
	logger         *slog.Logger
}

func NewPairingHandler(pairingService services.PairingService, logger *slog.Logger) *PairingHandler {
	return &PairingHandler{pairingService: pairingService, logger: logger}
}

// PreviewRound returns a non-authoritative pairing preview for the current
// roster. Nothing is persisted.
func (h *PairingHandler) PreviewRound(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slots, err := h.pairingService.PreviewRound(r.Context(), championshipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"data": slots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
