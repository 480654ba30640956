package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sportsync/matchday/models"
)

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) ReplaceForTournament(ctx context.Context, tournamentID int, entries []models.StandingsEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("standings replace: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("standings replace: clear: %w", err)
	}

	query := `
		INSERT INTO tournament_standings
			(tournament_id, team_id, team_name, played, won, drawn, lost,
			 goals_for, goals_against, goal_diff, points, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, e := range entries {
		_, err = tx.ExecContext(ctx, query,
			e.TournamentID, e.TeamID, e.TeamName, e.Played, e.Won, e.Drawn, e.Lost,
			e.GoalsFor, e.GoalsAgainst, e.GoalDiff, e.Points, e.Position, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("standings replace: team %d: %w", e.TeamID, err)
		}
	}
	return tx.Commit()
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tournament_id, team_id, team_name, played, won, drawn, lost,
		       goals_for, goals_against, goal_diff, points, position, updated_at
		FROM tournament_standings WHERE tournament_id = $1
		ORDER BY position`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("standings list for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var entries []models.StandingsEntry
	for rows.Next() {
		var e models.StandingsEntry
		err := rows.Scan(&e.TournamentID, &e.TeamID, &e.TeamName, &e.Played, &e.Won, &e.Drawn, &e.Lost,
			&e.GoalsFor, &e.GoalsAgainst, &e.GoalDiff, &e.Points, &e.Position, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("standings list: scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
