package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict Origin once the frontend domain is fixed
		return true
	},
}

type WebSocketHandler struct {
	hub    *broadcast.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *broadcast.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs upgrades the connection and attaches one push subscription per
// topic path segment. An optional since query parameter replays retained
// messages after that sequence on reconnect.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	topic := broadcast.Topic(chi.URLParam(r, "topic"))
	if !topic.Valid() {
		badRequestResponse(w, r, broadcast.ErrInvalidTopic)
		return
	}

	var since *uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		since = &v
	}

	caller := middleware.CallerFromContext(r.Context())
	sub, err := h.hub.Subscribe(r.Context(), broadcast.SubscribeRequest{
		TournamentID: tournamentID,
		Topic:        topic,
		Transport:    broadcast.TransportPush,
		Caller:       caller,
		Since:        since,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		sub.Close()
		h.logger.Warn("websocket upgrade failed",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return
	}

	client := broadcast.NewPushClient(conn, h.logger)
	client.Attach(sub)
	client.Run()
}
