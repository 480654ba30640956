package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/models"
)

func TestRoundRobinGenerate_FourTeams(t *testing.T) {
	gen := NewRoundRobinGenerator()

	pairings, err := gen.Generate(context.Background(), GenerateParams{
		TeamIDs: []int{10, 20, 30, 40},
		Format:  models.FormatSingleRoundRobin,
	})
	require.NoError(t, err)

	// N teams, N-1 rounds, N*(N-1)/2 fixtures, each team plays N-1 times.
	assert.Len(t, pairings, 6)

	rounds := make(map[int]int)
	perTeam := make(map[int]int)
	seen := make(map[[2]int]bool)
	for _, p := range pairings {
		rounds[p.Round]++
		perTeam[p.HomeID]++
		perTeam[p.AwayID]++

		pair := [2]int{p.HomeID, p.AwayID}
		if pair[0] > pair[1] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		assert.False(t, seen[pair], "pair %v generated twice", pair)
		seen[pair] = true
	}

	assert.Len(t, rounds, 3)
	for round, count := range rounds {
		assert.Equal(t, 2, count, "round %d", round)
	}
	for teamID, count := range perTeam {
		assert.Equal(t, 3, count, "team %d", teamID)
	}
}

func TestRoundRobinGenerate_OddTeamsHaveOneByePerRound(t *testing.T) {
	gen := NewRoundRobinGenerator()

	pairings, err := gen.Generate(context.Background(), GenerateParams{
		TeamIDs: []int{1, 2, 3, 4, 5},
		Format:  models.FormatSingleRoundRobin,
	})
	require.NoError(t, err)

	// 5 teams play C(5,2)=10 fixtures over 5 rounds, 2 per round.
	assert.Len(t, pairings, 10)

	playing := make(map[int]map[int]bool)
	for _, p := range pairings {
		if playing[p.Round] == nil {
			playing[p.Round] = make(map[int]bool)
		}
		playing[p.Round][p.HomeID] = true
		playing[p.Round][p.AwayID] = true
	}
	assert.Len(t, playing, 5)
	for round, teams := range playing {
		assert.Len(t, teams, 4, "round %d should rest exactly one team", round)
	}
}

func TestRoundRobinGenerate_Deterministic(t *testing.T) {
	gen := NewRoundRobinGenerator()
	params := GenerateParams{
		TeamIDs: []int{7, 3, 9, 1, 5, 2},
		Format:  models.FormatSingleRoundRobin,
	}

	first, err := gen.Generate(context.Background(), params)
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRoundRobinGenerate_DoubleMirrorsWithSwappedHomeAway(t *testing.T) {
	gen := NewRoundRobinGenerator()

	pairings, err := gen.Generate(context.Background(), GenerateParams{
		TeamIDs: []int{1, 2, 3, 4},
		Format:  models.FormatDoubleRoundRobin,
	})
	require.NoError(t, err)
	require.Len(t, pairings, 12)

	firstLeg := pairings[:6]
	secondLeg := pairings[6:]
	for i, p := range firstLeg {
		mirror := secondLeg[i]
		assert.Equal(t, p.Round+3, mirror.Round)
		assert.Equal(t, p.HomeID, mirror.AwayID)
		assert.Equal(t, p.AwayID, mirror.HomeID)
	}
}

func TestRoundRobinGenerate_NotEnoughTeams(t *testing.T) {
	gen := NewRoundRobinGenerator()

	_, err := gen.Generate(context.Background(), GenerateParams{
		TeamIDs: []int{42},
		Format:  models.FormatSingleRoundRobin,
	})
	assert.ErrorIs(t, err, ErrNotEnoughTeams)
}
