package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging/memory"
	"github.com/hilthontt/melody/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	domain.NotificationRepository
	created atomic.Int64
}

func (r *countingRepo) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.NotificationRepository.Create(ctx, n); err != nil {
		return err
	}
	r.created.Add(1)
	return nil
}

func TestPublishedTrackReachesNotifications(t *testing.T) {
	broker := memory.NewBroker()
	repo := &countingRepo{NotificationRepository: repository.NewNotificationRepository()}
	const queue = "notifications-queue"

	worker := messaging.NewWorker(messaging.WorkerConfig{
		Topology: messaging.Topology{
			Exchange:    messaging.DefaultExchange,
			Queue:       queue,
			BindingKeys: []string{"catalog.#"},
		},
		RetryDelay: 10 * time.Millisecond,
	}, NewProjector(repo, logging.NewNop()), logging.NewNop(), messaging.WithWorkerDialer(broker.Dial))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop")
		}
	})

	require.Eventually(t, func() bool {
		return worker.State() == messaging.StateConsuming
	}, 2*time.Second, 5*time.Millisecond)

	publisher := messaging.NewPublisher(messaging.PublisherConfig{AppID: "catalog"}, logging.NewNop(),
		messaging.WithPublisherDialer(broker.Dial))

	require.NoError(t, publisher.Publish(context.Background(), contracts.TrackPublished, contracts.NewPayload(
		contracts.F("track_id", "t1"),
		contracts.F("album_id", "a1"),
	)))
	require.Eventually(t, func() bool { return broker.Acked(queue) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, repo.created.Load())

	require.NoError(t, publisher.Publish(context.Background(), contracts.TrackPublished, contracts.NewPayload(
		contracts.F("user_id", "u1"),
		contracts.F("track_id", "t1"),
	)))
	require.Eventually(t, func() bool { return broker.Acked(queue) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, repo.created.Load())

	list, err := repo.List(context.Background(), "u1", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, `{"user_id":"u1","track_id":"t1"}`, list[0].Body)
	assert.Equal(t, "New track released", list[0].Title)
	assert.Zero(t, broker.Ready(queue))
	assert.Zero(t, broker.Unacked(queue))
}
