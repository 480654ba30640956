package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
)

func TestStandings_AccumulateAcrossResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	for _, f := range fixtures {
		var err error
		if f.HomeTeamID == 1 || f.AwayTeamID == 1 {
			// Team 1 wins everything.
			if f.HomeTeamID == 1 {
				_, err = env.results.FinalizeResult(ctx, organizer, f.ID, ScoreParams{HomeScore: 2, AwayScore: 0})
			} else {
				_, err = env.results.FinalizeResult(ctx, organizer, f.ID, ScoreParams{HomeScore: 0, AwayScore: 2})
			}
		} else {
			_, err = env.results.FinalizeResult(ctx, organizer, f.ID, ScoreParams{HomeScore: 1, AwayScore: 1})
		}
		require.NoError(t, err)
	}

	entries, err := env.standings.GetStandings(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, 1, entries[0].TeamID)
	assert.Equal(t, 3, entries[0].Played)
	assert.Equal(t, 9, entries[0].Points)
	for _, e := range entries[1:] {
		assert.Equal(t, 2, e.Points)
		assert.Equal(t, 3, e.Played)
	}
	for i, e := range entries {
		assert.Equal(t, i+1, e.Position)
	}
}

func TestRecompute_UnknownTournament(t *testing.T) {
	env := newTestEnv(t)

	err := env.standings.Recompute(context.Background(), 404)
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
}

func TestHandleResultEvent_CoalescesBursts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	// Finalize every fixture back to back. With the inline worker each
	// event still lands in a consistent table at the end.
	for _, f := range fixtures {
		_, err := env.results.FinalizeResult(ctx, organizer, f.ID, ScoreParams{HomeScore: 1, AwayScore: 0})
		require.NoError(t, err)
	}

	entries, err := env.standings.GetStandings(ctx, organizer, tournament.ID)
	require.NoError(t, err)

	totalPlayed := 0
	for _, e := range entries {
		totalPlayed += e.Played
	}
	assert.Equal(t, 2*len(fixtures), totalPlayed)
}

func TestGetStandings_RespectsVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)

	_, err := env.standings.GetStandings(ctx, models.Caller{}, tournament.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
