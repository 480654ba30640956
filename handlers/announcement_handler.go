package handlers

import (
	"net/http"

	"github.com/sportsync/matchday/middleware"
	"github.com/sportsync/matchday/services"
)

type AnnouncementHandler struct {
	service *services.AnnouncementService
}

func NewAnnouncementHandler(service *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

type postAnnouncementRequest struct {
	Title string `json:"title" validate:"max=200"`
	Body  string `json:"body" validate:"max=4000"`
}

func (h *AnnouncementHandler) Post(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req postAnnouncementRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	announcement, err := h.service.PostAnnouncement(r.Context(), caller, tournamentID, services.PostAnnouncementParams{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"announcement": announcement}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
