package standings

import (
	"sort"
	"time"

	"github.com/sportsync/matchday/models"
)

// Engine computes a tournament table from the full set of finalized results.
// Compute is a pure function of its inputs: corrections and deletions are
// handled upstream by re-running it, never by patching deltas.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute accumulates per-team aggregates over results and ranks them by
// points desc, goal difference desc, goals for desc, team name asc. The
// tie-break chain ends on the name so the order is total; positions are
// sequential 1-based ranks, never shared. Every tournament team appears in
// the table, including teams with no finalized result yet.
func (e *Engine) Compute(tournament *models.Tournament, teams []models.Team, results []models.Result) []models.StandingsEntry {
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	entries := make(map[int]*models.StandingsEntry, len(tournament.TeamIDs))
	now := time.Now().UTC()
	for _, teamID := range tournament.TeamIDs {
		entries[teamID] = &models.StandingsEntry{
			TournamentID: tournament.ID,
			TeamID:       teamID,
			TeamName:     names[teamID],
			UpdatedAt:    now,
		}
	}

	for _, r := range results {
		home := entries[r.HomeTeamID]
		away := entries[r.AwayTeamID]
		if home == nil || away == nil {
			// Result references a team outside the tournament; skip rather
			// than corrupt the table.
			continue
		}

		home.Played++
		away.Played++
		home.GoalsFor += r.HomeScore
		home.GoalsAgainst += r.AwayScore
		away.GoalsFor += r.AwayScore
		away.GoalsAgainst += r.HomeScore

		switch {
		case r.HomeScore > r.AwayScore:
			home.Won++
			away.Lost++
		case r.HomeScore < r.AwayScore:
			away.Won++
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
		}
	}

	table := make([]models.StandingsEntry, 0, len(entries))
	for _, entry := range entries {
		entry.GoalDiff = entry.GoalsFor - entry.GoalsAgainst
		entry.Points = entry.Won*tournament.Scoring.PointsWin + entry.Drawn*tournament.Scoring.PointsDraw
		table = append(table, *entry)
	}

	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})

	for i := range table {
		table[i].Position = i + 1
	}
	return table
}
