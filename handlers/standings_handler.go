package handlers

import (
	"net/http"

	"github.com/sportsync/matchday/middleware"
	"github.com/sportsync/matchday/services"
)

type StandingsHandler struct {
	service *services.StandingsService
}

func NewStandingsHandler(service *services.StandingsService) *StandingsHandler {
	return &StandingsHandler{service: service}
}

func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	entries, err := h.service.GetStandings(r.Context(), caller, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
