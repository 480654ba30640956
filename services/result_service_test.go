package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/models"
)

func TestFinalizeResult_UpdatesStandingsAndBroadcasts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	var target *models.Fixture
	for _, f := range fixtures {
		if f.HomeTeamID == 1 || f.AwayTeamID == 1 {
			target = f
			break
		}
	}
	require.NotNil(t, target)

	result, err := env.results.FinalizeResult(ctx, organizer, target.ID, ScoreParams{HomeScore: 2, AwayScore: 1})
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, result.TournamentID)

	fixture, err := env.store.Fixtures().GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixtureStatusCompleted, fixture.Status)

	// The recompute handler ran inline: the table is persisted and the
	// winner leads it.
	entries, err := env.standings.GetStandings(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, target.HomeTeamID, entries[0].TeamID)
	assert.Equal(t, 3, entries[0].Points)

	// Both the raw result event and the recomputed table reached the
	// results topic.
	updates := env.publisher.byTopic(broadcast.TopicResults)
	require.Len(t, updates, 2)
	assert.Equal(t, "result_finalized", updates[0].Type)
	assert.Equal(t, msgTypeStandingsUpdated, updates[1].Type)
}

func TestFinalizeResult_Twice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	_, err := env.results.FinalizeResult(ctx, organizer, fixtures[0].ID, ScoreParams{HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	_, err = env.results.FinalizeResult(ctx, organizer, fixtures[0].ID, ScoreParams{HomeScore: 2, AwayScore: 0})
	assert.ErrorIs(t, err, ErrResultAlreadyExists)
}

func TestFinalizeResult_NegativeScore(t *testing.T) {
	env := newTestEnv(t)
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	_, err := env.results.FinalizeResult(context.Background(), organizer, fixtures[0].ID, ScoreParams{HomeScore: -1, AwayScore: 0})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestFinalizeResult_PermissionDenied(t *testing.T) {
	env := newTestEnv(t)
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	stranger := models.Caller{UserID: 999, Role: models.RoleOrganizer}
	_, err := env.results.FinalizeResult(context.Background(), stranger, fixtures[0].ID, ScoreParams{HomeScore: 1, AwayScore: 0})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCorrectResult_RecomputesFromScratch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)
	target := fixtures[0]

	_, err := env.results.FinalizeResult(ctx, organizer, target.ID, ScoreParams{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	// Flip the outcome; the table must reflect only the corrected score.
	_, err = env.results.CorrectResult(ctx, organizer, target.ID, ScoreParams{HomeScore: 0, AwayScore: 3})
	require.NoError(t, err)

	entries, err := env.standings.GetStandings(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	byTeam := make(map[int]models.StandingsEntry)
	for _, e := range entries {
		byTeam[e.TeamID] = e
	}
	assert.Equal(t, 0, byTeam[target.HomeTeamID].Points)
	assert.Equal(t, 1, byTeam[target.HomeTeamID].Played)
	assert.Equal(t, 3, byTeam[target.AwayTeamID].Points)
}

func TestCorrectResult_WithoutFinalizedResult(t *testing.T) {
	env := newTestEnv(t)
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)

	_, err := env.results.CorrectResult(context.Background(), organizer, fixtures[0].ID, ScoreParams{HomeScore: 1, AwayScore: 1})
	assert.ErrorIs(t, err, ErrFixtureNotCompleted)
}

func TestDeleteResult_RemovesContribution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)
	fixtures := env.generateFixtures(t, tournament.ID)
	target := fixtures[0]

	_, err := env.results.FinalizeResult(ctx, organizer, target.ID, ScoreParams{HomeScore: 4, AwayScore: 2})
	require.NoError(t, err)

	require.NoError(t, env.results.DeleteResult(ctx, organizer, target.ID))

	fixture, err := env.store.Fixtures().GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixtureStatusPublished, fixture.Status)

	entries, err := env.standings.GetStandings(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Zero(t, e.Played)
		assert.Zero(t, e.Points)
	}
}
