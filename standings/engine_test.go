package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/models"
)

func fourTeamTournament() (*models.Tournament, []models.Team) {
	tournament := &models.Tournament{
		ID:      1,
		Format:  models.FormatSingleRoundRobin,
		Scoring: models.ScoringRule{PointsWin: 3, PointsDraw: 1},
		TeamIDs: []int{1, 2, 3, 4},
	}
	teams := []models.Team{
		{ID: 1, Name: "Alfa"},
		{ID: 2, Name: "Bravo"},
		{ID: 3, Name: "Charlie"},
		{ID: 4, Name: "Delta"},
	}
	return tournament, teams
}

func TestCompute_PointsAndTieBreaks(t *testing.T) {
	engine := NewEngine()
	tournament, teams := fourTeamTournament()

	// Alfa beats Bravo 2-1, Bravo and Charlie draw 0-0. Delta has not
	// played. Bravo and Charlie end level on one point each, but Bravo
	// carries the 1-2 loss, so Charlie's goal difference ranks it higher.
	results := []models.Result{
		{FixtureID: 1, TournamentID: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 1},
		{FixtureID: 2, TournamentID: 1, HomeTeamID: 2, AwayTeamID: 3, HomeScore: 0, AwayScore: 0},
	}

	entries := engine.Compute(tournament, teams, results)
	require.Len(t, entries, 4)

	assert.Equal(t, "Alfa", entries[0].TeamName)
	assert.Equal(t, 3, entries[0].Points)
	assert.Equal(t, 1, entries[0].Position)

	assert.Equal(t, "Charlie", entries[1].TeamName)
	assert.Equal(t, 1, entries[1].Points)
	assert.Equal(t, 0, entries[1].GoalDiff)

	assert.Equal(t, "Bravo", entries[2].TeamName)
	assert.Equal(t, 1, entries[2].Points)
	assert.Equal(t, -1, entries[2].GoalDiff)

	assert.Equal(t, "Delta", entries[3].TeamName)
	assert.Equal(t, 0, entries[3].Played)
	assert.Equal(t, 0, entries[3].Points)
	assert.Equal(t, 4, entries[3].Position)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Position)
	}
}

func TestCompute_GoalDifferenceBeforeName(t *testing.T) {
	engine := NewEngine()
	tournament, teams := fourTeamTournament()

	results := []models.Result{
		{FixtureID: 1, HomeTeamID: 1, AwayTeamID: 4, HomeScore: 3, AwayScore: 0},
		{FixtureID: 2, HomeTeamID: 2, AwayTeamID: 4, HomeScore: 1, AwayScore: 0},
	}

	entries := engine.Compute(tournament, teams, results)
	require.Len(t, entries, 4)

	// Both winners have 3 points; Alfa's +3 beats Bravo's +1.
	assert.Equal(t, "Alfa", entries[0].TeamName)
	assert.Equal(t, "Bravo", entries[1].TeamName)
}

func TestCompute_GoalsForBeforeName(t *testing.T) {
	engine := NewEngine()
	tournament, teams := fourTeamTournament()

	// Same points, same goal difference, different goals scored.
	results := []models.Result{
		{FixtureID: 1, HomeTeamID: 3, AwayTeamID: 4, HomeScore: 2, AwayScore: 2},
		{FixtureID: 2, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 0, AwayScore: 0},
	}

	entries := engine.Compute(tournament, teams, results)
	assert.Equal(t, "Charlie", entries[0].TeamName)
	assert.Equal(t, "Delta", entries[1].TeamName)
	assert.Equal(t, "Alfa", entries[2].TeamName)
	assert.Equal(t, "Bravo", entries[3].TeamName)
}

func TestCompute_Idempotent(t *testing.T) {
	engine := NewEngine()
	tournament, teams := fourTeamTournament()
	results := []models.Result{
		{FixtureID: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 1},
	}

	first := engine.Compute(tournament, teams, results)
	second := engine.Compute(tournament, teams, results)
	require.Equal(t, len(first), len(second))
	for i := range first {
		first[i].UpdatedAt = second[i].UpdatedAt
	}
	assert.Equal(t, first, second)
}

func TestCompute_ScoringRuleApplied(t *testing.T) {
	engine := NewEngine()
	tournament, teams := fourTeamTournament()
	tournament.Scoring = models.ScoringRule{PointsWin: 2, PointsDraw: 1}

	results := []models.Result{
		{FixtureID: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 1, AwayScore: 0},
		{FixtureID: 2, HomeTeamID: 3, AwayTeamID: 4, HomeScore: 1, AwayScore: 1},
	}

	entries := engine.Compute(tournament, teams, results)
	byTeam := make(map[int]models.StandingsEntry)
	for _, e := range entries {
		byTeam[e.TeamID] = e
	}
	assert.Equal(t, 2, byTeam[1].Points)
	assert.Equal(t, 0, byTeam[2].Points)
	assert.Equal(t, 1, byTeam[3].Points)
	assert.Equal(t, 1, byTeam[4].Points)
}

func TestCompute_IgnoresResultsOutsideTeamList(t *testing.T) {
	engine := NewEngine()
	tournament, teams := fourTeamTournament()

	results := []models.Result{
		{FixtureID: 1, HomeTeamID: 1, AwayTeamID: 99, HomeScore: 5, AwayScore: 0},
	}

	entries := engine.Compute(tournament, teams, results)
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Zero(t, e.Played)
		assert.Zero(t, e.Points)
	}
}
