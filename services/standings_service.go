package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/events"
	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
	"github.com/sportsync/matchday/standings"
)

const msgTypeStandingsUpdated = "standings_updated"

// UpdatePublisher is the slice of the broadcast hub the standings pipeline
// needs. Nil disables publishing, which keeps unit tests transport-free.
type UpdatePublisher interface {
	Publish(ctx context.Context, tournamentID int, topic broadcast.Topic, msgType string, data any) broadcast.UpdateMessage
}

type StandingsService struct {
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	results     repositories.ResultRepository
	standings   repositories.StandingRepository
	engine      *standings.Engine
	publisher   UpdatePublisher
	pool        *ants.Pool
	logger      *slog.Logger

	group singleflight.Group

	// mu guards the coalescing state: a tournament with a recompute in
	// flight only flips its dirty flag, and the running worker loops until
	// the flag stays clean. A burst of N result events therefore costs at
	// most two recomputes.
	mu      sync.Mutex
	running map[int]bool
	dirty   map[int]bool
}

func NewStandingsService(
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	results repositories.ResultRepository,
	standingRepo repositories.StandingRepository,
	engine *standings.Engine,
	publisher UpdatePublisher,
	pool *ants.Pool,
	logger *slog.Logger,
) *StandingsService {
	return &StandingsService{
		tournaments: tournaments,
		teams:       teams,
		results:     results,
		standings:   standingRepo,
		engine:      engine,
		publisher:   publisher,
		pool:        pool,
		logger:      logger,
		running:     make(map[int]bool),
		dirty:       make(map[int]bool),
	}
}

// HandleResultEvent schedules a standings recompute for the event's
// tournament. Recomputes run on the shared worker pool; when the pool is
// unavailable the recompute runs inline so the table never goes stale.
func (s *StandingsService) HandleResultEvent(ctx context.Context, event events.Event) error {
	tournamentID := event.TournamentID

	s.mu.Lock()
	s.dirty[tournamentID] = true
	if s.running[tournamentID] {
		s.mu.Unlock()
		return nil
	}
	s.running[tournamentID] = true
	s.mu.Unlock()

	job := func() { s.recomputeLoop(tournamentID) }
	if s.pool != nil {
		if err := s.pool.Submit(job); err == nil {
			return nil
		}
	}
	job()
	return nil
}

func (s *StandingsService) recomputeLoop(tournamentID int) {
	ctx := context.Background()
	for {
		s.mu.Lock()
		if !s.dirty[tournamentID] {
			delete(s.running, tournamentID)
			s.mu.Unlock()
			return
		}
		delete(s.dirty, tournamentID)
		s.mu.Unlock()

		if err := s.Recompute(ctx, tournamentID); err != nil {
			s.logger.Error("standings recompute failed",
				slog.Int("tournament_id", tournamentID),
				slog.Any("error", err))
		}
	}
}

// Recompute rebuilds the full table from the current result set, persists
// it and pushes the fresh table to results subscribers.
func (s *StandingsService) Recompute(ctx context.Context, tournamentID int) error {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	teams, err := s.teams.ListByIDs(ctx, tournament.TeamIDs)
	if err != nil {
		return err
	}
	results, err := s.results.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}

	entries := s.engine.Compute(tournament, teams, results)
	now := time.Now().UTC()
	for i := range entries {
		entries[i].TournamentID = tournamentID
		entries[i].UpdatedAt = now
	}

	if err := s.standings.ReplaceForTournament(ctx, tournamentID, entries); err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, tournamentID, broadcast.TopicResults, msgTypeStandingsUpdated, entries)
	}

	s.logger.Debug("standings recomputed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("entries", len(entries)))
	return nil
}

// GetStandings returns the persisted table. Concurrent reads for the same
// tournament are deduplicated; an empty table for a known tournament is a
// valid answer (all zero rows exist once fixtures are generated and a
// result arrives).
func (s *StandingsService) GetStandings(ctx context.Context, caller models.Caller, tournamentID int) ([]models.StandingsEntry, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := canView(caller, tournament); err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do(strconv.Itoa(tournamentID), func() (interface{}, error) {
		return s.standings.ListByTournament(ctx, tournamentID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.StandingsEntry), nil
}
