package handlers

import (
	"net/http"

	"github.com/sportsync/matchday/middleware"
	"github.com/sportsync/matchday/services"
)

type ResultHandler struct {
	service *services.ResultService
}

func NewResultHandler(service *services.ResultService) *ResultHandler {
	return &ResultHandler{service: service}
}

type scoreRequest struct {
	HomeScore int `json:"home_score" validate:"gte=0"`
	AwayScore int `json:"away_score" validate:"gte=0"`
}

func (h *ResultHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := idParam(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req scoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	result, err := h.service.FinalizeResult(r.Context(), caller, fixtureID, services.ScoreParams{
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) Correct(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := idParam(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req scoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	result, err := h.service.CorrectResult(r.Context(), caller, fixtureID, services.ScoreParams{
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := idParam(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	if err := h.service.DeleteResult(r.Context(), caller, fixtureID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
