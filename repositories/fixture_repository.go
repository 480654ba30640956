package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sportsync/matchday/models"
)

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

func (r *postgresFixtureRepository) CreateBatch(ctx context.Context, fixtures []*models.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fixtures create batch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO fixtures
			(tournament_id, round, home_team_id, away_team_id, venue_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	for _, f := range fixtures {
		err = tx.QueryRowContext(ctx, query,
			f.TournamentID, f.Round, f.HomeTeamID, f.AwayTeamID,
			f.VenueID, f.StartTime, f.EndTime, f.Status,
		).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("fixtures create batch: %w", err)
		}
	}
	return tx.Commit()
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	return scanFixture(r.db.QueryRowContext(ctx, `
		SELECT id, tournament_id, round, home_team_id, away_team_id, venue_id, start_time, end_time, status
		FROM fixtures WHERE id = $1`, id))
}

func scanFixture(row *sql.Row) (*models.Fixture, error) {
	var f models.Fixture
	err := row.Scan(&f.ID, &f.TournamentID, &f.Round, &f.HomeTeamID, &f.AwayTeamID,
		&f.VenueID, &f.StartTime, &f.EndTime, &f.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("fixture scan: %w", err)
	}
	return &f, nil
}

func (r *postgresFixtureRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tournament_id, round, home_team_id, away_team_id, venue_id, start_time, end_time, status
		FROM fixtures WHERE tournament_id = $1
		ORDER BY round, start_time NULLS LAST, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("fixtures list for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var fixtures []*models.Fixture
	for rows.Next() {
		var f models.Fixture
		err := rows.Scan(&f.ID, &f.TournamentID, &f.Round, &f.HomeTeamID, &f.AwayTeamID,
			&f.VenueID, &f.StartTime, &f.EndTime, &f.Status)
		if err != nil {
			return nil, fmt.Errorf("fixtures list: scan: %w", err)
		}
		fixtures = append(fixtures, &f)
	}
	return fixtures, rows.Err()
}

func (r *postgresFixtureRepository) UpdateSlot(ctx context.Context, id int, venueID int, start, end time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE fixtures SET venue_id = $1, start_time = $2, end_time = $3 WHERE id = $4`,
		venueID, start, end, id)
	if err != nil {
		return fmt.Errorf("fixture update slot %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE fixtures SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("fixture update status %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}
