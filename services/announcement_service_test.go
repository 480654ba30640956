package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/models"
)

func TestPostAnnouncement_ReachesAnnouncementsTopic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.createTournament(t)

	announcement, err := env.announcements.PostAnnouncement(ctx, organizer, tournament.ID, PostAnnouncementParams{
		Title: "Kickoff moved",
		Body:  "Round 1 starts an hour later.",
	})
	require.NoError(t, err)
	assert.Equal(t, organizer.UserID, announcement.PostedBy)
	assert.False(t, announcement.PostedAt.IsZero())

	updates := env.publisher.byTopic(broadcast.TopicAnnouncements)
	require.Len(t, updates, 1)
	assert.Equal(t, "announcement_posted", updates[0].Type)
	posted, ok := updates[0].Data.(*models.Announcement)
	require.True(t, ok)
	assert.Equal(t, "Kickoff moved", posted.Title)
}

func TestPostAnnouncement_RequiresContent(t *testing.T) {
	env := newTestEnv(t)
	tournament := env.createTournament(t)

	_, err := env.announcements.PostAnnouncement(context.Background(), organizer, tournament.ID, PostAnnouncementParams{})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPostAnnouncement_StrangerRejected(t *testing.T) {
	env := newTestEnv(t)
	tournament := env.createTournament(t)

	stranger := models.Caller{UserID: 777, Role: models.RoleOrganizer}
	_, err := env.announcements.PostAnnouncement(context.Background(), stranger, tournament.ID, PostAnnouncementParams{
		Title: "hijack",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, env.publisher.byTopic(broadcast.TopicAnnouncements))
}
