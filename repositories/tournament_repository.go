package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/sportsync/matchday/models"
)

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tournament create: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO tournaments (name, format, points_win, points_draw, organizer_id, status, fixtures_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		tournament.Name, tournament.Format,
		tournament.Scoring.PointsWin, tournament.Scoring.PointsDraw,
		tournament.OrganizerID, tournament.Status, tournament.FixturesGenerated,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("tournament create: %w", err)
	}

	for _, teamID := range tournament.TeamIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tournament_teams (tournament_id, team_id) VALUES ($1, $2)`,
			tournament.ID, teamID)
		if err != nil {
			return fmt.Errorf("tournament create: team %d: %w", teamID, err)
		}
	}

	return tx.Commit()
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, format, points_win, points_draw, organizer_id, status, fixtures_generated, created_at
		FROM tournaments WHERE id = $1`
	var t models.Tournament
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format,
		&t.Scoring.PointsWin, &t.Scoring.PointsDraw,
		&t.OrganizerID, &t.Status, &t.FixturesGenerated, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("tournament get %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id FROM tournament_teams WHERE tournament_id = $1 ORDER BY team_id`, id)
	if err != nil {
		return nil, fmt.Errorf("tournament get %d: teams: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var teamID int
		if err := rows.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("tournament get %d: scan team: %w", id, err)
		}
		t.TeamIDs = append(t.TeamIDs, teamID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tournament get %d: teams: %w", id, err)
	}
	return &t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("tournament update status %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) MarkFixturesGenerated(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET fixtures_generated = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("tournament mark fixtures generated %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM teams WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("teams list: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("teams list: scan: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

type postgresVenueRepository struct {
	db *sql.DB
}

func NewPostgresVenueRepository(db *sql.DB) VenueRepository {
	return &postgresVenueRepository{db: db}
}

func (r *postgresVenueRepository) ListWindows(ctx context.Context, venueIDs []int) ([]models.VenueWindow, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT venue_id, start_time, end_time
		FROM venue_windows
		WHERE venue_id = ANY($1)
		ORDER BY venue_id, start_time`, pq.Array(venueIDs))
	if err != nil {
		return nil, fmt.Errorf("venue windows list: %w", err)
	}
	defer rows.Close()

	var windows []models.VenueWindow
	for rows.Next() {
		var w models.VenueWindow
		if err := rows.Scan(&w.VenueID, &w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("venue windows list: scan: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
