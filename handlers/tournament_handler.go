package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sportsync/matchday/middleware"
	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/services"
)

var validate = validator.New()

type TournamentHandler struct {
	service *services.TournamentService
}

func NewTournamentHandler(service *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{service: service}
}

type createTournamentRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=120"`
	Format     string `json:"format" validate:"required"`
	PointsWin  int    `json:"points_win" validate:"required,gt=0"`
	PointsDraw int    `json:"points_draw" validate:"gte=0"`
	TeamIDs    []int  `json:"team_ids" validate:"required,min=2,dive,gt=0"`
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	tournament, err := h.service.CreateTournament(r.Context(), caller, services.CreateTournamentParams{
		Name:    req.Name,
		Format:  models.TournamentFormat(req.Format),
		Scoring: models.ScoringRule{PointsWin: req.PointsWin, PointsDraw: req.PointsDraw},
		TeamIDs: req.TeamIDs,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	tournament, err := h.service.GetTournament(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	tournament, err := h.service.PublishTournament(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func validationErrors(err error) map[string]string {
	out := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out[fe.Field()] = "failed validation on '" + fe.Tag() + "'"
		}
	} else {
		out["body"] = err.Error()
	}
	return out
}
