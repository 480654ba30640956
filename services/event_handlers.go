package services

import (
	"context"
	"log/slog"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/events"
)

// RegisterEventHandlers wires the domain event bus to the standings
// pipeline and the broadcast hub. Handlers run synchronously in
// registration order: the hub fan-out therefore observes the same event
// order as the emitting service, while the standings recompute itself is
// handed off to the worker pool inside HandleResultEvent.
func RegisterEventHandlers(bus *events.Bus, standingsService *StandingsService, publisher UpdatePublisher, logger *slog.Logger) {
	resultTypes := []events.Type{
		events.TypeResultFinalized,
		events.TypeResultCorrected,
		events.TypeResultDeleted,
	}
	for _, t := range resultTypes {
		// Регистрация до пересчета: событие результата должно попасть в хаб
		// раньше, чем standings_updated, который оно породит.
		bus.Subscribe(t, "broadcast_results", func(ctx context.Context, event events.Event) error {
			publisher.Publish(ctx, event.TournamentID, broadcast.TopicResults, string(event.Type), event.Payload)
			return nil
		})
		bus.Subscribe(t, "standings_recompute", standingsService.HandleResultEvent)
	}

	bus.Subscribe(events.TypeFixtureRescheduled, "broadcast_schedule", func(ctx context.Context, event events.Event) error {
		publisher.Publish(ctx, event.TournamentID, broadcast.TopicSchedule, string(event.Type), event.Payload)
		return nil
	})

	bus.Subscribe(events.TypeAnnouncementPosted, "broadcast_announcements", func(ctx context.Context, event events.Event) error {
		publisher.Publish(ctx, event.TournamentID, broadcast.TopicAnnouncements, string(event.Type), event.Payload)
		return nil
	})

	logger.Debug("event handlers registered")
}
