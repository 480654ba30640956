package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sportsync/matchday/events"
	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
	"github.com/sportsync/matchday/schedule"
)

const (
	defaultMatchDuration = 90 * time.Minute
	defaultBreakDuration = 30 * time.Minute
)

type SchedulingService struct {
	tournaments repositories.TournamentRepository
	venues      repositories.VenueRepository
	fixtures    repositories.FixtureRepository
	slots       repositories.SlotRepository
	generator   schedule.FixtureGenerator
	allocator   *schedule.VenueSlotAllocator
	bus         *events.Bus
	logger      *slog.Logger

	// one lock per tournament id, so two generate calls for the same
	// tournament serialize while different tournaments proceed in parallel
	locks sync.Map
}

func NewSchedulingService(
	tournaments repositories.TournamentRepository,
	venues repositories.VenueRepository,
	fixtures repositories.FixtureRepository,
	slots repositories.SlotRepository,
	generator schedule.FixtureGenerator,
	allocator *schedule.VenueSlotAllocator,
	bus *events.Bus,
	logger *slog.Logger,
) *SchedulingService {
	return &SchedulingService{
		tournaments: tournaments,
		venues:      venues,
		fixtures:    fixtures,
		slots:       slots,
		generator:   generator,
		allocator:   allocator,
		bus:         bus,
		logger:      logger,
	}
}

func (s *SchedulingService) lockTournament(id int) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

type GenerateFixturesParams struct {
	VenueIDs      []int
	NotBefore     time.Time
	MatchDuration time.Duration
	BreakDuration time.Duration
}

type GenerateFixturesOutcome struct {
	Fixtures    []*models.Fixture
	Unscheduled []schedule.Pairing
}

// GenerateFixtures builds the full round-robin schedule for a tournament
// and books venue slots for it. The operation runs at most once per
// tournament; afterwards the team list is frozen.
func (s *SchedulingService) GenerateFixtures(ctx context.Context, caller models.Caller, tournamentID int, params GenerateFixturesParams) (*GenerateFixturesOutcome, error) {
	unlock := s.lockTournament(tournamentID)
	defer unlock()

	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := canManage(caller, t); err != nil {
		return nil, err
	}
	if t.FixturesGenerated {
		return nil, ErrFixturesAlreadyExist
	}
	if len(t.TeamIDs) < 2 {
		return nil, ErrNotEnoughTeams
	}

	pairings, err := s.generator.Generate(ctx, schedule.GenerateParams{
		TeamIDs: t.TeamIDs,
		Format:  t.Format,
	})
	if err != nil {
		return nil, err
	}

	var (
		windows  []models.VenueWindow
		existing []models.VenueSlot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windows, err = s.venues.ListWindows(gctx, params.VenueIDs)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.slots.ListByVenues(gctx, params.VenueIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matchDur := params.MatchDuration
	if matchDur <= 0 {
		matchDur = defaultMatchDuration
	}
	breakDur := params.BreakDuration
	if breakDur <= 0 {
		breakDur = defaultBreakDuration
	}

	allocation, err := s.allocator.Allocate(ctx, schedule.AllocateParams{
		Pairings:      pairings,
		Windows:       windows,
		Existing:      existing,
		NotBefore:     params.NotBefore,
		MatchDuration: matchDur,
		BreakDuration: breakDur,
	})
	if err != nil {
		return nil, err
	}

	outcome := &GenerateFixturesOutcome{Unscheduled: allocation.Unscheduled}
	fixtures := make([]*models.Fixture, 0, len(allocation.Fixtures))
	for i := range allocation.Fixtures {
		f := allocation.Fixtures[i]
		f.TournamentID = tournamentID
		fixtures = append(fixtures, &f)
	}
	if err := s.fixtures.CreateBatch(ctx, fixtures); err != nil {
		return nil, err
	}

	slots := make([]*models.VenueSlot, 0, len(fixtures))
	for _, f := range fixtures {
		fid := f.ID
		slots = append(slots, &models.VenueSlot{
			VenueID:   *f.VenueID,
			FixtureID: &fid,
			Start:     *f.StartTime,
			End:       f.StartTime.Add(matchDur + breakDur),
			Status:    models.SlotStatusBooked,
		})
	}
	if err := s.slots.CreateBatch(ctx, slots); err != nil {
		return nil, err
	}

	if err := s.tournaments.MarkFixturesGenerated(ctx, tournamentID); err != nil {
		return nil, err
	}
	outcome.Fixtures = fixtures

	s.logger.Info("fixtures generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("scheduled", len(fixtures)),
		slog.Int("unscheduled", len(allocation.Unscheduled)))
	return outcome, nil
}

func (s *SchedulingService) ListFixtures(ctx context.Context, caller models.Caller, tournamentID int) ([]*models.Fixture, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := canView(caller, t); err != nil {
		return nil, err
	}
	return s.fixtures.ListByTournament(ctx, tournamentID)
}

type RescheduleParams struct {
	VenueID int
	Start   time.Time
}

// RescheduleFixture moves a fixture to a new venue/time. The move is
// all-or-nothing: when the target interval collides with another booking the
// call fails with a ConflictError listing every overlapping fixture, and the
// original slot stays booked.
func (s *SchedulingService) RescheduleFixture(ctx context.Context, caller models.Caller, fixtureID int, params RescheduleParams) (*models.Fixture, error) {
	fixture, err := s.fixtures.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	// Проверка конфликтов и перебронирование должны идти под тем же замком,
	// что и генерация: иначе два конкурентных переноса в один свободный
	// интервал оба проходят проверку.
	unlock := s.lockTournament(fixture.TournamentID)
	defer unlock()

	fixture, err = s.fixtures.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	t, err := s.tournaments.GetByID(ctx, fixture.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := canManage(caller, t); err != nil {
		return nil, err
	}
	if fixture.Status == models.FixtureStatusCompleted || fixture.Status == models.FixtureStatusCancelled {
		return nil, ErrFixtureNotReschedulable
	}

	current, err := s.slots.GetByFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	slotDur := current.End.Sub(current.Start)
	end := params.Start.Add(slotDur)

	onVenue, err := s.slots.ListByVenue(ctx, params.VenueID)
	if err != nil {
		return nil, err
	}
	if ids, blocked := schedule.OverlappingFixtures(onVenue, fixtureID, params.Start, end); len(ids) > 0 || blocked {
		return nil, &ConflictError{
			VenueID:               params.VenueID,
			OverlappingFixtureIDs: ids,
			Blocked:               blocked,
		}
	}

	if err := s.slots.Rebook(ctx, fixtureID, models.VenueSlot{
		VenueID: params.VenueID,
		Start:   params.Start,
		End:     end,
	}); err != nil {
		return nil, err
	}

	matchEnd := params.Start.Add(fixture.EndTime.Sub(*fixture.StartTime))
	if err := s.fixtures.UpdateSlot(ctx, fixtureID, params.VenueID, params.Start, matchEnd); err != nil {
		return nil, err
	}
	fixture.VenueID = &params.VenueID
	fixture.StartTime = &params.Start
	fixture.EndTime = &matchEnd

	s.bus.Emit(ctx, events.Event{
		Type:         events.TypeFixtureRescheduled,
		TournamentID: fixture.TournamentID,
		Payload:      fixture,
	})

	s.logger.Info("fixture rescheduled",
		slog.Int("fixture_id", fixtureID),
		slog.Int("venue_id", params.VenueID),
		slog.Time("start", params.Start))
	return fixture, nil
}
