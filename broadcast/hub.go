package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sportsync/matchday/models"
)

const (
	defaultRetention = 256
	defaultQueueSize = 64
)

// AccessGate decides whether a caller may watch a tournament. Published
// tournaments admit anyone; unpublished ones only their organizer or an
// admin. The hub rejects the subscription attempt without side effects when
// the gate denies.
type AccessGate interface {
	CanView(ctx context.Context, caller models.Caller, tournamentID int) error
}

type GateFunc func(ctx context.Context, caller models.Caller, tournamentID int) error

func (f GateFunc) CanView(ctx context.Context, caller models.Caller, tournamentID int) error {
	return f(ctx, caller, tournamentID)
}

type groupKey struct {
	tournamentID int
	topic        Topic
}

// group holds one (tournament, topic) subscriber set. Its mutex guards
// subscribe/unsubscribe and sequence assignment only; delivery I/O happens
// outside it.
type group struct {
	mu      sync.Mutex
	seq     uint64
	subs    map[string]*Subscriber
	ring    *ring
	waiters []chan struct{}
}

// Subscriber is one consumer of a group's update stream, independent of
// transport. Push connections drain Out; pull requests never create one.
type Subscriber struct {
	ID           string
	TournamentID int
	Topic        Topic
	Transport    Transport
	Caller       models.Caller

	queue     chan UpdateMessage
	resync    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	hub       *Hub
}

// Out is the subscriber's bounded outbound queue.
func (s *Subscriber) Out() <-chan UpdateMessage { return s.queue }

// ResyncSignal fires when the subscriber lost messages to backpressure and
// must resync from a snapshot.
func (s *Subscriber) ResyncSignal() <-chan struct{} { return s.resync }

func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Close unsubscribes from the group and releases the subscriber.
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}

// deliver enqueues without ever blocking the publisher. On overflow the
// oldest queued message is dropped and the subscriber is signaled to
// resync.
func (s *Subscriber) deliver(msg UpdateMessage) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.queue <- msg:
		return
	default:
	}

	select {
	case <-s.queue:
	default:
	}
	select {
	case s.resync <- struct{}{}:
	default:
	}
	select {
	case s.queue <- msg:
	default:
	}
}

type HubConfig struct {
	Gate      AccessGate
	Logger    *slog.Logger
	Retention int // ring buffer size K per (tournament, topic)
	QueueSize int // bounded outbound queue per subscriber
}

// Hub fans out update envelopes to per-(tournament, topic) subscriber
// groups. It is an injected instance, not process-global state, so tests
// run isolated hubs side by side.
type Hub struct {
	mu        sync.RWMutex
	groups    map[groupKey]*group
	gate      AccessGate
	logger    *slog.Logger
	retention int
	queueSize int
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	gate := cfg.Gate
	if gate == nil {
		gate = GateFunc(func(context.Context, models.Caller, int) error { return nil })
	}
	return &Hub{
		groups:    make(map[groupKey]*group),
		gate:      gate,
		logger:    cfg.Logger,
		retention: cfg.Retention,
		queueSize: cfg.QueueSize,
	}
}

func (h *Hub) getOrCreateGroup(tournamentID int, topic Topic) *group {
	key := groupKey{tournamentID: tournamentID, topic: topic}

	h.mu.RLock()
	g, ok := h.groups[key]
	h.mu.RUnlock()
	if ok {
		return g
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if g, ok = h.groups[key]; ok {
		return g
	}
	g = &group{
		subs: make(map[string]*Subscriber),
		ring: newRing(h.retention),
	}
	h.groups[key] = g
	return g
}

type SubscribeRequest struct {
	TournamentID int
	Topic        Topic
	Transport    Transport
	Caller       models.Caller

	// Since, when set, replays retained messages after that sequence
	// (push reconnect). A gap exceeding the retention window yields a
	// resync message instead of a partial replay.
	Since *uint64
}

// Subscribe checks visibility, joins the group and returns the subscriber.
// The "subscribed" acknowledgment is enqueued under the group lock before
// the subscriber becomes visible to publishers, so no update can slip in
// between the ack and the first message.
func (h *Hub) Subscribe(ctx context.Context, req SubscribeRequest) (*Subscriber, error) {
	if !req.Topic.Valid() {
		return nil, ErrInvalidTopic
	}
	if err := h.gate.CanView(ctx, req.Caller, req.TournamentID); err != nil {
		return nil, err
	}

	sub := &Subscriber{
		ID:           uuid.NewString(),
		TournamentID: req.TournamentID,
		Topic:        req.Topic,
		Transport:    req.Transport,
		Caller:       req.Caller,
		queue:        make(chan UpdateMessage, h.queueSize),
		resync:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		hub:          h,
	}

	g := h.getOrCreateGroup(req.TournamentID, req.Topic)
	g.mu.Lock()
	sub.queue <- subscribedMessage(req.TournamentID, req.Topic)
	if req.Since != nil {
		backlog, ok := g.ring.since(*req.Since)
		if !ok {
			sub.queue <- resyncMessage(req.TournamentID, req.Topic)
		} else {
			for _, msg := range backlog {
				sub.deliver(msg)
			}
		}
	}
	g.subs[sub.ID] = sub
	g.mu.Unlock()

	h.logger.Debug("subscriber joined",
		slog.Int("tournament_id", req.TournamentID),
		slog.String("topic", string(req.Topic)),
		slog.String("transport", string(req.Transport)),
		slog.String("subscriber_id", sub.ID))
	return sub, nil
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	g := h.getOrCreateGroup(sub.TournamentID, sub.Topic)
	g.mu.Lock()
	delete(g.subs, sub.ID)
	remaining := len(g.subs)
	g.mu.Unlock()

	sub.closeOnce.Do(func() { close(sub.done) })
	h.logger.Debug("subscriber left",
		slog.Int("tournament_id", sub.TournamentID),
		slog.String("topic", string(sub.Topic)),
		slog.Int("remaining", remaining))
}

// Publish stamps the payload with the group's next sequence, retains it in
// the ring buffer and fans it out. The subscriber list is copied under the
// group lock and the sends happen outside it, so one slow consumer cannot
// stall subscribes or delivery to the rest. Publishing with zero
// subscribers still advances the sequence and fills the catch-up window.
func (h *Hub) Publish(ctx context.Context, tournamentID int, topic Topic, msgType string, data any) UpdateMessage {
	g := h.getOrCreateGroup(tournamentID, topic)

	g.mu.Lock()
	g.seq++
	msg := UpdateMessage{
		Type:         msgType,
		TournamentID: tournamentID,
		Topic:        topic,
		Sequence:     g.seq,
		Timestamp:    time.Now().UTC(),
		Data:         data,
	}
	g.ring.add(msg)
	targets := make([]*Subscriber, 0, len(g.subs))
	for _, sub := range g.subs {
		targets = append(targets, sub)
	}
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(msg)
	}
	for _, w := range waiters {
		close(w)
	}
	return msg
}

// PollResult is the outcome of one pull request. Sequence always reports
// the group's current head so the client can advance its cursor.
type PollResult struct {
	Messages  []UpdateMessage `json:"messages,omitempty"`
	Sequence  uint64          `json:"sequence"`
	Ack       bool            `json:"ack,omitempty"`
	Heartbeat bool            `json:"heartbeat,omitempty"`
	Resync    bool            `json:"resync,omitempty"`
}

// Poll serves the pull transport. since=0 acts as the subscription
// acknowledgment and returns the current sequence for the client to resume
// from. When the client is caught up the call waits up to wait for a new
// publish and answers with a heartbeat on timeout instead of holding the
// connection open.
func (h *Hub) Poll(ctx context.Context, tournamentID int, topic Topic, caller models.Caller, since uint64, wait time.Duration) (PollResult, error) {
	if !topic.Valid() {
		return PollResult{}, ErrInvalidTopic
	}
	if err := h.gate.CanView(ctx, caller, tournamentID); err != nil {
		return PollResult{}, err
	}

	g := h.getOrCreateGroup(tournamentID, topic)

	g.mu.Lock()
	cur := g.seq
	if since == 0 {
		g.mu.Unlock()
		return PollResult{Sequence: cur, Ack: true}, nil
	}
	if since < cur {
		msgs, ok := g.ring.since(since)
		g.mu.Unlock()
		if !ok {
			return PollResult{Sequence: cur, Resync: true}, nil
		}
		return PollResult{Messages: msgs, Sequence: cur}, nil
	}

	waiter := make(chan struct{})
	g.waiters = append(g.waiters, waiter)
	g.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-waiter:
	case <-timer.C:
		return PollResult{Sequence: since, Heartbeat: true}, nil
	case <-ctx.Done():
		return PollResult{}, ctx.Err()
	}

	g.mu.Lock()
	cur = g.seq
	msgs, ok := g.ring.since(since)
	g.mu.Unlock()
	if !ok {
		return PollResult{Sequence: cur, Resync: true}, nil
	}
	return PollResult{Messages: msgs, Sequence: cur}, nil
}

type GroupStat struct {
	TournamentID int    `json:"tournament_id"`
	Topic        Topic  `json:"topic"`
	Subscribers  int    `json:"subscribers"`
	Sequence     uint64 `json:"sequence"`
}

// Stats reports subscriber counts and sequence heads per group.
func (h *Hub) Stats() []GroupStat {
	h.mu.RLock()
	keys := make([]groupKey, 0, len(h.groups))
	groups := make([]*group, 0, len(h.groups))
	for k, g := range h.groups {
		keys = append(keys, k)
		groups = append(groups, g)
	}
	h.mu.RUnlock()

	stats := make([]GroupStat, 0, len(groups))
	for i, g := range groups {
		g.mu.Lock()
		stats = append(stats, GroupStat{
			TournamentID: keys[i].tournamentID,
			Topic:        keys[i].topic,
			Subscribers:  len(g.subs),
			Sequence:     g.seq,
		})
		g.mu.Unlock()
	}
	return stats
}
