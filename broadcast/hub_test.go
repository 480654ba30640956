package broadcast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/models"
)

func newTestHub(opts ...func(*HubConfig)) *Hub {
	cfg := HubConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewHub(cfg)
}

func drainOne(t *testing.T, sub *Subscriber) UpdateMessage {
	t.Helper()
	select {
	case msg := <-sub.Out():
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return UpdateMessage{}
	}
}

func TestSubscribe_AckPrecedesFirstUpdate(t *testing.T) {
	hub := newTestHub()

	sub, err := hub.Subscribe(context.Background(), SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicResults,
		Transport:    TransportPush,
	})
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish(context.Background(), 1, TopicResults, "result_finalized", nil)

	ack := drainOne(t, sub)
	assert.Equal(t, MessageTypeSubscribed, ack.Type)
	assert.Zero(t, ack.Sequence)

	update := drainOne(t, sub)
	assert.Equal(t, "result_finalized", update.Type)
	assert.Equal(t, uint64(1), update.Sequence)
}

func TestPublish_SubscriberAtSequenceNGetsExactlyNPlusOne(t *testing.T) {
	hub := newTestHub()

	// Advance the group's sequence before the client subscribes.
	for i := 0; i < 5; i++ {
		hub.Publish(context.Background(), 1, TopicResults, "result_finalized", i)
	}

	sub, err := hub.Subscribe(context.Background(), SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicResults,
		Transport:    TransportPush,
	})
	require.NoError(t, err)
	defer sub.Close()

	ack := drainOne(t, sub)
	require.Equal(t, MessageTypeSubscribed, ack.Type)

	hub.Publish(context.Background(), 1, TopicResults, "result_finalized", "latest")

	msg := drainOne(t, sub)
	assert.Equal(t, uint64(6), msg.Sequence)

	select {
	case extra := <-sub.Out():
		t.Fatalf("unexpected extra message with sequence %d", extra.Sequence)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_DisconnectedSubscriberDoesNotAffectOthers(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	subscribe := func() *Subscriber {
		sub, err := hub.Subscribe(ctx, SubscribeRequest{
			TournamentID: 1,
			Topic:        TopicResults,
			Transport:    TransportPush,
		})
		require.NoError(t, err)
		drainOne(t, sub) // ack
		return sub
	}

	a := subscribe()
	b := subscribe()
	c := subscribe()
	defer a.Close()
	defer c.Close()

	hub.Publish(ctx, 1, TopicResults, "result_finalized", 1)
	for _, sub := range []*Subscriber{a, b, c} {
		assert.Equal(t, uint64(1), drainOne(t, sub).Sequence)
	}

	b.Close()

	for i := 2; i <= 4; i++ {
		hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
	}
	for _, sub := range []*Subscriber{a, c} {
		for i := 2; i <= 4; i++ {
			assert.Equal(t, uint64(i), drainOne(t, sub).Sequence)
		}
	}
}

func TestPublish_TopicsAreIsolated(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx, SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicSchedule,
		Transport:    TransportPush,
	})
	require.NoError(t, err)
	defer sub.Close()
	drainOne(t, sub) // ack

	hub.Publish(ctx, 1, TopicResults, "result_finalized", nil)
	hub.Publish(ctx, 2, TopicSchedule, "fixture_rescheduled", nil)
	hub.Publish(ctx, 1, TopicSchedule, "fixture_rescheduled", nil)

	msg := drainOne(t, sub)
	assert.Equal(t, "fixture_rescheduled", msg.Type)
	assert.Equal(t, 1, msg.TournamentID)
	assert.Equal(t, uint64(1), msg.Sequence)
}

func TestSubscribe_GateDenialHasNoSideEffects(t *testing.T) {
	denied := errors.New("not visible")
	hub := newTestHub(func(cfg *HubConfig) {
		cfg.Gate = GateFunc(func(ctx context.Context, caller models.Caller, tournamentID int) error {
			if caller.Anonymous() {
				return denied
			}
			return nil
		})
	})

	_, err := hub.Subscribe(context.Background(), SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicResults,
		Transport:    TransportPush,
	})
	assert.ErrorIs(t, err, denied)
	assert.Empty(t, hub.Stats())
}

func TestSubscribe_InvalidTopic(t *testing.T) {
	hub := newTestHub()

	_, err := hub.Subscribe(context.Background(), SubscribeRequest{
		TournamentID: 1,
		Topic:        Topic("weather"),
		Transport:    TransportPush,
	})
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestDeliver_OverflowDropsOldestAndSignalsResync(t *testing.T) {
	hub := newTestHub(func(cfg *HubConfig) {
		cfg.QueueSize = 2
	})
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx, SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicResults,
		Transport:    TransportPush,
	})
	require.NoError(t, err)
	defer sub.Close()

	// Queue of 2 already holds the ack; nobody drains, so the third
	// publish must evict the oldest entry instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber queue")
	}

	select {
	case <-sub.ResyncSignal():
	case <-time.After(time.Second):
		t.Fatal("expected a resync signal after overflow")
	}

	// The newest message survived the evictions.
	var last UpdateMessage
	for {
		select {
		case msg := <-sub.Out():
			last = msg
			continue
		default:
		}
		break
	}
	assert.Equal(t, uint64(4), last.Sequence)
}

func TestSubscribe_ReplaySinceWithinRetention(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
	}

	since := uint64(2)
	sub, err := hub.Subscribe(ctx, SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicResults,
		Transport:    TransportPush,
		Since:        &since,
	})
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, MessageTypeSubscribed, drainOne(t, sub).Type)
	for want := uint64(3); want <= 5; want++ {
		assert.Equal(t, want, drainOne(t, sub).Sequence)
	}
}

func TestSubscribe_GapBeyondRetentionForcesResync(t *testing.T) {
	hub := newTestHub(func(cfg *HubConfig) {
		cfg.Retention = 2
	})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
	}

	since := uint64(1)
	sub, err := hub.Subscribe(ctx, SubscribeRequest{
		TournamentID: 1,
		Topic:        TopicResults,
		Transport:    TransportPush,
		Since:        &since,
	})
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, MessageTypeSubscribed, drainOne(t, sub).Type)
	assert.Equal(t, MessageTypeResync, drainOne(t, sub).Type)
}

func TestPoll_SinceZeroActsAsAck(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
	}

	res, err := hub.Poll(ctx, 1, TopicResults, models.Caller{}, 0, time.Second)
	require.NoError(t, err)
	assert.True(t, res.Ack)
	assert.Equal(t, uint64(3), res.Sequence)
	assert.Empty(t, res.Messages)
}

func TestPoll_ReturnsBufferedMessages(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
	}

	res, err := hub.Poll(ctx, 1, TopicResults, models.Caller{}, 2, time.Second)
	require.NoError(t, err)
	require.Len(t, res.Messages, 3)
	assert.Equal(t, uint64(3), res.Messages[0].Sequence)
	assert.Equal(t, uint64(5), res.Messages[2].Sequence)
	assert.Equal(t, uint64(5), res.Sequence)
}

func TestPoll_HeartbeatOnTimeout(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	hub.Publish(ctx, 1, TopicResults, "result_finalized", nil)

	start := time.Now()
	res, err := hub.Poll(ctx, 1, TopicResults, models.Caller{}, 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.Heartbeat)
	assert.Equal(t, uint64(1), res.Sequence)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPoll_WakesOnPublish(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	hub.Publish(ctx, 1, TopicResults, "result_finalized", "first")

	type pollOutcome struct {
		res PollResult
		err error
	}
	outcome := make(chan pollOutcome, 1)
	go func() {
		res, err := hub.Poll(ctx, 1, TopicResults, models.Caller{}, 1, 5*time.Second)
		outcome <- pollOutcome{res, err}
	}()

	// Give the poller time to register its waiter before publishing.
	time.Sleep(20 * time.Millisecond)
	hub.Publish(ctx, 1, TopicResults, "result_finalized", "second")

	select {
	case got := <-outcome:
		require.NoError(t, got.err)
		require.Len(t, got.res.Messages, 1)
		assert.Equal(t, uint64(2), got.res.Messages[0].Sequence)
		assert.False(t, got.res.Heartbeat)
	case <-time.After(time.Second):
		t.Fatal("poll did not wake on publish")
	}
}

func TestPoll_GapBeyondRetention(t *testing.T) {
	hub := newTestHub(func(cfg *HubConfig) {
		cfg.Retention = 2
	})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		hub.Publish(ctx, 1, TopicResults, "result_finalized", i)
	}

	res, err := hub.Poll(ctx, 1, TopicResults, models.Caller{}, 3, time.Second)
	require.NoError(t, err)
	assert.True(t, res.Resync)
	assert.Empty(t, res.Messages)
	assert.Equal(t, uint64(10), res.Sequence)
}

func TestStats(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx, SubscribeRequest{
		TournamentID: 3,
		Topic:        TopicAnnouncements,
		Transport:    TransportPush,
	})
	require.NoError(t, err)
	defer sub.Close()
	hub.Publish(ctx, 3, TopicAnnouncements, "announcement_posted", nil)

	stats := hub.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].TournamentID)
	assert.Equal(t, TopicAnnouncements, stats[0].Topic)
	assert.Equal(t, 1, stats[0].Subscribers)
	assert.Equal(t, uint64(1), stats[0].Sequence)
}
