package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sportsync/matchday/models"
)

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Upsert(ctx context.Context, result *models.Result) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO results (fixture_id, tournament_id, home_team_id, away_team_id, home_score, away_score, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (fixture_id) DO UPDATE
		SET home_score = EXCLUDED.home_score,
		    away_score = EXCLUDED.away_score,
		    finalized_at = EXCLUDED.finalized_at`,
		result.FixtureID, result.TournamentID, result.HomeTeamID, result.AwayTeamID,
		result.HomeScore, result.AwayScore, result.FinalizedAt)
	if err != nil {
		return fmt.Errorf("result upsert for fixture %d: %w", result.FixtureID, err)
	}
	return nil
}

func (r *postgresResultRepository) Delete(ctx context.Context, fixtureID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM results WHERE fixture_id = $1`, fixtureID)
	if err != nil {
		return fmt.Errorf("result delete for fixture %d: %w", fixtureID, err)
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) GetByFixture(ctx context.Context, fixtureID int) (*models.Result, error) {
	var res models.Result
	err := r.db.QueryRowContext(ctx, `
		SELECT fixture_id, tournament_id, home_team_id, away_team_id, home_score, away_score, finalized_at
		FROM results WHERE fixture_id = $1`, fixtureID,
	).Scan(&res.FixtureID, &res.TournamentID, &res.HomeTeamID, &res.AwayTeamID,
		&res.HomeScore, &res.AwayScore, &res.FinalizedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("result get for fixture %d: %w", fixtureID, err)
	}
	return &res, nil
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Result, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fixture_id, tournament_id, home_team_id, away_team_id, home_score, away_score, finalized_at
		FROM results WHERE tournament_id = $1
		ORDER BY finalized_at, fixture_id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("results list for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var res models.Result
		err := rows.Scan(&res.FixtureID, &res.TournamentID, &res.HomeTeamID, &res.AwayTeamID,
			&res.HomeScore, &res.AwayScore, &res.FinalizedAt)
		if err != nil {
			return nil, fmt.Errorf("results list: scan: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
