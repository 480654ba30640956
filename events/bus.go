package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Type string

const (
	TypeResultFinalized    Type = "result_finalized"
	TypeResultCorrected    Type = "result_corrected"
	TypeResultDeleted      Type = "result_deleted"
	TypeFixtureRescheduled Type = "fixture_rescheduled"
	TypeAnnouncementPosted Type = "announcement_posted"
)

// Event is a domain event emitted after the triggering mutation has been
// durably committed. Payload carries the relevant model (Result, Fixture,
// Announcement).
type Event struct {
	Type         Type
	TournamentID int
	Payload      any
	OccurredAt   time.Time
}

type HandlerFunc func(ctx context.Context, event Event) error

type registration struct {
	name string
	fn   HandlerFunc
}

// Bus is a single-process, synchronous dispatcher. Handlers for a type run
// in registration order; a handler error or panic is logged and isolated,
// so it neither reaches the emitting caller nor blocks later handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]registration
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[Type][]registration),
		logger:   logger,
	}
}

// Subscribe registers a named handler for an event type. Registration is
// explicit; there is no wildcard dispatch.
func (b *Bus) Subscribe(eventType Type, name string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], registration{name: name, fn: fn})
}

// Emit dispatches the event to every handler registered for its type.
func (b *Bus) Emit(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	regs := make([]registration, len(b.handlers[event.Type]))
	copy(regs, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, reg := range regs {
		b.dispatch(ctx, reg, event)
	}
}

func (b *Bus) dispatch(ctx context.Context, reg registration, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("handler", reg.name),
				slog.String("event", string(event.Type)),
				slog.Int("tournament_id", event.TournamentID),
				slog.Any("panic", r))
		}
	}()

	if err := reg.fn(ctx, event); err != nil {
		b.logger.Error("event handler failed",
			slog.String("handler", reg.name),
			slog.String("event", string(event.Type)),
			slog.Int("tournament_id", event.TournamentID),
			slog.Any("error", err))
	}
}
