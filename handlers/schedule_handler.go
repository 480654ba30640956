package handlers

import (
	"net/http"
	"time"

	"github.com/sportsync/matchday/middleware"
	"github.com/sportsync/matchday/services"
)

type ScheduleHandler struct {
	service *services.SchedulingService
}

func NewScheduleHandler(service *services.SchedulingService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type generateFixturesRequest struct {
	VenueIDs     []int     `json:"venue_ids" validate:"required,min=1,dive,gt=0"`
	NotBefore    time.Time `json:"not_before" validate:"required"`
	MatchMinutes int       `json:"match_minutes" validate:"gte=0"`
	BreakMinutes int       `json:"break_minutes" validate:"gte=0"`
}

func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req generateFixturesRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	outcome, err := h.service.GenerateFixtures(r.Context(), caller, tournamentID, services.GenerateFixturesParams{
		VenueIDs:      req.VenueIDs,
		NotBefore:     req.NotBefore,
		MatchDuration: time.Duration(req.MatchMinutes) * time.Minute,
		BreakDuration: time.Duration(req.BreakMinutes) * time.Minute,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{
		"fixtures":    outcome.Fixtures,
		"unscheduled": outcome.Unscheduled,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	fixtures, err := h.service.ListFixtures(r.Context(), caller, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type rescheduleRequest struct {
	VenueID int       `json:"venue_id" validate:"required,gt=0"`
	Start   time.Time `json:"start" validate:"required"`
}

func (h *ScheduleHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := idParam(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req rescheduleRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	fixture, err := h.service.RescheduleFixture(r.Context(), caller, fixtureID, services.RescheduleParams{
		VenueID: req.VenueID,
		Start:   req.Start,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
