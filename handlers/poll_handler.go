package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/middleware"
)

const defaultPollWait = 25 * time.Second

type PollHandler struct {
	hub     *broadcast.Hub
	maxWait time.Duration
}

func NewPollHandler(hub *broadcast.Hub, maxWait time.Duration) *PollHandler {
	if maxWait <= 0 {
		maxWait = defaultPollWait
	}
	return &PollHandler{hub: hub, maxWait: maxWait}
}

// Updates is the pull transport: GET with topic and since query parameters.
// since=0 acts as the subscription acknowledgment; a caught-up client long
// polls and receives a heartbeat on timeout.
func (h *PollHandler) Updates(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	topic := broadcast.Topic(r.URL.Query().Get("topic"))

	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	wait := h.maxWait
	if raw := r.URL.Query().Get("wait"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			badRequestResponse(w, r, err)
			return
		}
		if d := time.Duration(secs) * time.Second; d < wait {
			wait = d
		}
	}

	caller := middleware.CallerFromContext(r.Context())
	result, err := h.hub.Poll(r.Context(), tournamentID, topic, caller, since, wait)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Stats reports live subscriber counts per broadcast group.
func (h *PollHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.hub.Stats(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
