package broadcast

import (
	"errors"
	"time"
)

type Topic string

const (
	TopicResults       Topic = "results"
	TopicSchedule      Topic = "schedule"
	TopicAnnouncements Topic = "announcements"
)

func (t Topic) Valid() bool {
	switch t {
	case TopicResults, TopicSchedule, TopicAnnouncements:
		return true
	}
	return false
}

type Transport string

const (
	TransportPush Transport = "push"
	TransportPull Transport = "pull"
)

var ErrInvalidTopic = errors.New("unknown subscription topic")

// Control message types. Domain updates carry the emitting event type
// ("result_finalized", "standings", ...) instead.
const (
	MessageTypeSubscribed = "subscribed"
	MessageTypeHeartbeat  = "heartbeat"
	MessageTypeResync     = "resync_required"
)

// UpdateMessage is the transport-agnostic wire envelope. Sequence is
// monotonic per (tournament, topic) and starts at 1; control messages carry
// no sequence.
type UpdateMessage struct {
	Type         string    `json:"type"`
	TournamentID int       `json:"tournament_id,omitempty"`
	Topic        Topic     `json:"topic,omitempty"`
	Sequence     uint64    `json:"sequence,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Data         any       `json:"data,omitempty"`
}

func subscribedMessage(tournamentID int, topic Topic) UpdateMessage {
	return UpdateMessage{
		Type:         MessageTypeSubscribed,
		TournamentID: tournamentID,
		Topic:        topic,
		Timestamp:    time.Now().UTC(),
	}
}

func resyncMessage(tournamentID int, topic Topic) UpdateMessage {
	return UpdateMessage{
		Type:         MessageTypeResync,
		TournamentID: tournamentID,
		Topic:        topic,
		Timestamp:    time.Now().UTC(),
	}
}
