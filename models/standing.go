package models

import "time"

// StandingsEntry представляет строку турнирной таблицы. Position is a
// 1-based sequential rank; ties are broken deterministically by the engine,
// so two entries never share a position.
type StandingsEntry struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	TeamName     string    `json:"team_name" db:"team_name"`
	Played       int       `json:"played" db:"played"`
	Won          int       `json:"won" db:"won"`
	Drawn        int       `json:"drawn" db:"drawn"`
	Lost         int       `json:"lost" db:"lost"`
	GoalsFor     int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst int       `json:"goals_against" db:"goals_against"`
	GoalDiff     int       `json:"goal_diff" db:"goal_diff"`
	Points       int       `json:"points" db:"points"`
	Position     int       `json:"position" db:"position"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
