package models

import "time"

// Result is the finalized score of one fixture. Corrections overwrite the
// row in place; deletions remove it. Standings are always recomputed from
// the full set, so neither operation can leave stale deltas behind.
type Result struct {
	FixtureID    int       `json:"fixture_id" db:"fixture_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   int       `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int       `json:"away_team_id" db:"away_team_id"`
	HomeScore    int       `json:"home_score" db:"home_score"`
	AwayScore    int       `json:"away_score" db:"away_score"`
	FinalizedAt  time.Time `json:"finalized_at" db:"finalized_at"`
}
