package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sportsync/matchday/events"
	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
)

type ResultService struct {
	tournaments repositories.TournamentRepository
	fixtures    repositories.FixtureRepository
	results     repositories.ResultRepository
	bus         *events.Bus
	logger      *slog.Logger
}

func NewResultService(
	tournaments repositories.TournamentRepository,
	fixtures repositories.FixtureRepository,
	results repositories.ResultRepository,
	bus *events.Bus,
	logger *slog.Logger,
) *ResultService {
	return &ResultService{
		tournaments: tournaments,
		fixtures:    fixtures,
		results:     results,
		bus:         bus,
		logger:      logger,
	}
}

type ScoreParams struct {
	HomeScore int
	AwayScore int
}

func (s *ResultService) loadFixture(ctx context.Context, caller models.Caller, fixtureID int) (*models.Fixture, error) {
	fixture, err := s.fixtures.GetByID(ctx, fixtureID)
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
	return fixture, nil
}

// FinalizeResult records the score of a fixture for the first time and
// marks the fixture completed. The result event fires only after the write
// has succeeded.
func (s *ResultService) FinalizeResult(ctx context.Context, caller models.Caller, fixtureID int, params ScoreParams) (*models.Result, error) {
	if params.HomeScore < 0 || params.AwayScore < 0 {
		return nil, ErrInvalidScore
	}
	fixture, err := s.loadFixture(ctx, caller, fixtureID)
	if err != nil {
		return nil, err
	}
	if fixture.Status == models.FixtureStatusCancelled {
		return nil, ErrFixtureNotReschedulable
	}
	if _, err := s.results.GetByFixture(ctx, fixtureID); err == nil {
		return nil, ErrResultAlreadyExists
	} else if !errors.Is(err, repositories.ErrResultNotFound) {
		return nil, err
	}

	result := &models.Result{
		FixtureID:    fixtureID,
		TournamentID: fixture.TournamentID,
		HomeTeamID:   fixture.HomeTeamID,
		AwayTeamID:   fixture.AwayTeamID,
		HomeScore:    params.HomeScore,
		AwayScore:    params.AwayScore,
		FinalizedAt:  time.Now().UTC(),
	}
	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, err
	}
	if err := s.fixtures.UpdateStatus(ctx, fixtureID, models.FixtureStatusCompleted); err != nil {
		return nil, err
	}

	s.bus.Emit(ctx, events.Event{
		Type:         events.TypeResultFinalized,
		TournamentID: fixture.TournamentID,
		Payload:      result,
	})

	s.logger.Info("result finalized",
		slog.Int("fixture_id", fixtureID),
		slog.Int("home_score", params.HomeScore),
		slog.Int("away_score", params.AwayScore))
	return result, nil
}

// CorrectResult overwrites an already finalized score in place.
func (s *ResultService) CorrectResult(ctx context.Context, caller models.Caller, fixtureID int, params ScoreParams) (*models.Result, error) {
	if params.HomeScore < 0 || params.AwayScore < 0 {
		return nil, ErrInvalidScore
	}
	fixture, err := s.loadFixture(ctx, caller, fixtureID)
	if err != nil {
		return nil, err
	}
	existing, err := s.results.GetByFixture(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrFixtureNotCompleted
		}
		return nil, err
	}

	existing.HomeScore = params.HomeScore
	existing.AwayScore = params.AwayScore
	existing.FinalizedAt = time.Now().UTC()
	if err := s.results.Upsert(ctx, existing); err != nil {
		return nil, err
	}

	s.bus.Emit(ctx, events.Event{
		Type:         events.TypeResultCorrected,
		TournamentID: fixture.TournamentID,
		Payload:      existing,
	})

	s.logger.Info("result corrected", slog.Int("fixture_id", fixtureID))
	return existing, nil
}

// DeleteResult voids a finalized score and returns the fixture to its
// published state; standings are recomputed without it.
func (s *ResultService) DeleteResult(ctx context.Context, caller models.Caller, fixtureID int) error {
	fixture, err := s.loadFixture(ctx, caller, fixtureID)
	if err != nil {
		return err
	}
	result, err := s.results.GetByFixture(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return ErrFixtureNotCompleted
		}
		return err
	}

	if err := s.results.Delete(ctx, fixtureID); err != nil {
		return err
	}
	if err := s.fixtures.UpdateStatus(ctx, fixtureID, models.FixtureStatusPublished); err != nil {
		return err
	}

	s.bus.Emit(ctx, events.Event{
		Type:         events.TypeResultDeleted,
		TournamentID: fixture.TournamentID,
		Payload:      result,
	})

	s.logger.Info("result deleted", slog.Int("fixture_id", fixtureID))
	return nil
}
