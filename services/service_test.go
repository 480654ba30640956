package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/events"
	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
	"github.com/sportsync/matchday/schedule"
	"github.com/sportsync/matchday/standings"
)

var matchday = time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)

type publishedUpdate struct {
	TournamentID int
	Topic        broadcast.Topic
	Type         string
	Data         any
}

// capturePublisher records hub publishes instead of fanning them out, so
// pipeline tests assert on what would reach subscribers.
type capturePublisher struct {
	mu        sync.Mutex
	published []publishedUpdate
}

func (p *capturePublisher) Publish(ctx context.Context, tournamentID int, topic broadcast.Topic, msgType string, data any) broadcast.UpdateMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedUpdate{
		TournamentID: tournamentID,
		Topic:        topic,
		Type:         msgType,
		Data:         data,
	})
	return broadcast.UpdateMessage{Type: msgType, TournamentID: tournamentID, Topic: topic}
}

func (p *capturePublisher) byTopic(topic broadcast.Topic) []publishedUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedUpdate
	for _, u := range p.published {
		if u.Topic == topic {
			out = append(out, u)
		}
	}
	return out
}

type testEnv struct {
	store         *repositories.MemoryStore
	bus           *events.Bus
	publisher     *capturePublisher
	tournaments   *TournamentService
	scheduling    *SchedulingService
	results       *ResultService
	standings     *StandingsService
	announcements *AnnouncementService
}

// newTestEnv wires the full service graph over the in-memory store. The
// standings worker pool is nil so recomputes run inline and tests stay
// deterministic.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	store.SeedTeams(
		models.Team{ID: 1, Name: "Alfa"},
		models.Team{ID: 2, Name: "Bravo"},
		models.Team{ID: 3, Name: "Charlie"},
		models.Team{ID: 4, Name: "Delta"},
	)
	store.SeedWindows(
		models.VenueWindow{VenueID: 1, Start: matchday, End: matchday.Add(14 * time.Hour)},
		models.VenueWindow{VenueID: 2, Start: matchday, End: matchday.Add(14 * time.Hour)},
	)

	bus := events.NewBus(logger)
	publisher := &capturePublisher{}

	env := &testEnv{
		store:     store,
		bus:       bus,
		publisher: publisher,
	}
	env.tournaments = NewTournamentService(store.Tournaments(), logger)
	env.scheduling = NewSchedulingService(
		store.Tournaments(),
		store.Venues(),
		store.Fixtures(),
		store.Slots(),
		schedule.NewRoundRobinGenerator(),
		schedule.NewVenueSlotAllocator(),
		bus,
		logger,
	)
	env.results = NewResultService(store.Tournaments(), store.Fixtures(), store.Results(), bus, logger)
	env.standings = NewStandingsService(
		store.Tournaments(),
		store.Teams(),
		store.Results(),
		store.Standings(),
		standings.NewEngine(),
		publisher,
		nil,
		logger,
	)
	env.announcements = NewAnnouncementService(store.Tournaments(), bus, logger)

	RegisterEventHandlers(bus, env.standings, publisher, logger)
	return env
}

var organizer = models.Caller{UserID: 100, Role: models.RoleOrganizer}

func (env *testEnv) createTournament(t *testing.T) *models.Tournament {
	t.Helper()
	tournament, err := env.tournaments.CreateTournament(context.Background(), organizer, CreateTournamentParams{
		Name:    "Autumn Cup",
		Format:  models.FormatSingleRoundRobin,
		Scoring: models.ScoringRule{PointsWin: 3, PointsDraw: 1},
		TeamIDs: []int{1, 2, 3, 4},
	})
	require.NoError(t, err)
	return tournament
}

func (env *testEnv) generateFixtures(t *testing.T, tournamentID int) []*models.Fixture {
	t.Helper()
	outcome, err := env.scheduling.GenerateFixtures(context.Background(), organizer, tournamentID, GenerateFixturesParams{
		VenueIDs:  []int{1, 2},
		NotBefore: matchday,
	})
	require.NoError(t, err)
	require.Empty(t, outcome.Unscheduled)
	return outcome.Fixtures
}
