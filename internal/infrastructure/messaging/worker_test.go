package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler decodes JSON bodies and remembers what it saw.
type recordingHandler struct {
	mu       sync.Mutex
	seen     []messaging.Message
	failures int
}

func (h *recordingHandler) Handle(_ context.Context, msg messaging.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return errors.Join(messaging.ErrMalformedPayload, err)
	}
	if h.failures > 0 {
		h.failures--
		return errors.New("storage down")
	}

	h.seen = append(h.seen, msg)
	return nil
}

func (h *recordingHandler) Seen() []messaging.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]messaging.Message, len(h.seen))
	copy(out, h.seen)
	return out
}

func newTestWorker(broker *memory.Broker, cfg messaging.WorkerConfig, h messaging.Handler, opts ...messaging.WorkerOption) *messaging.Worker {
	if cfg.Topology.Exchange == "" {
		cfg.Topology = testTopology("#")
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 10 * time.Millisecond
	}
	opts = append([]messaging.WorkerOption{messaging.WithWorkerDialer(broker.Dial)}, opts...)
	return messaging.NewWorker(cfg, h, logging.NewNop(), opts...)
}

func TestWorker_RetriesWithConstantDelay(t *testing.T) {
	broker := memory.NewBroker()
	broker.FailNextDials(3)
	timer := newRecordingTimer()

	w := newTestWorker(broker, messaging.WorkerConfig{RetryDelay: 2 * time.Second}, &recordingHandler{},
		messaging.WithRetryTimer(timer))
	rw := startWorker(t, w)
	rw.waitConsuming(t)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, timer.Waits())
	assert.Equal(t, 4, broker.Dials())
	assert.Zero(t, w.Attempts(), "counter resets after a successful connect")
}

func TestWorker_RetryBudgetExhausted(t *testing.T) {
	broker := memory.NewBroker()
	broker.FailNextDials(10)
	timer := newRecordingTimer()

	w := newTestWorker(broker, messaging.WorkerConfig{MaxRetries: 3}, &recordingHandler{},
		messaging.WithRetryTimer(timer))

	err := w.Run(context.Background())

	require.ErrorIs(t, err, messaging.ErrRetriesExhausted)
	assert.Equal(t, 3, broker.Dials())
	assert.Len(t, timer.Waits(), 2)
	assert.Equal(t, messaging.StateAborted, w.State())
	assert.Equal(t, 3, w.Attempts())
}

func TestWorker_InvalidTopology(t *testing.T) {
	broker := memory.NewBroker()
	w := newTestWorker(broker, messaging.WorkerConfig{
		Topology: messaging.Topology{Exchange: testExchange, Queue: testQueue},
	}, &recordingHandler{})

	assert.Error(t, w.Run(context.Background()))
	assert.Zero(t, broker.Dials())
}

func TestWorker_StopsOnCancel(t *testing.T) {
	broker := memory.NewBroker()
	w := newTestWorker(broker, messaging.WorkerConfig{}, &recordingHandler{})
	rw := startWorker(t, w)
	rw.waitConsuming(t)

	require.NoError(t, rw.stop(t))
	assert.Equal(t, messaging.StateDisconnected, w.State())
	assert.Zero(t, broker.OpenConnections())
}

func TestWorker_StopsWhileRetrying(t *testing.T) {
	broker := memory.NewBroker()
	broker.FailNextDials(1000)
	w := newTestWorker(broker, messaging.WorkerConfig{RetryDelay: time.Hour}, &recordingHandler{})
	rw := startWorker(t, w)

	require.Eventually(t, func() bool { return broker.Dials() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rw.stop(t))
}

func TestWorker_DropsMalformedAndContinues(t *testing.T) {
	broker := memory.NewBroker()
	h := &recordingHandler{}
	rw := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{}, h))
	rw.waitConsuming(t)

	require.NoError(t, broker.Publish(testExchange, "catalog.track.published", []byte("not json")))
	require.NoError(t, broker.Publish(testExchange, "catalog.track.published", []byte(`{"user_id":"u1"}`)))

	require.Eventually(t, func() bool { return broker.Acked(testQueue) == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Len(t, h.Seen(), 1)
	assert.Equal(t, `{"user_id":"u1"}`, string(h.Seen()[0].Body))
	assert.Equal(t, messaging.StateConsuming, rw.worker.State())
}

func TestWorker_FailurePolicies(t *testing.T) {
	t.Run("ack", func(t *testing.T) {
		broker := memory.NewBroker()
		h := &recordingHandler{failures: 1}
		rw := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{}, h))
		rw.waitConsuming(t)

		require.NoError(t, broker.Publish(testExchange, "auth.user.registered", []byte(`{"user_id":"u1"}`)))

		require.Eventually(t, func() bool { return broker.Acked(testQueue) == 1 }, 2*time.Second, 5*time.Millisecond)
		assert.Empty(t, h.Seen())
		assert.Zero(t, broker.Ready(testQueue))
	})

	t.Run("requeue", func(t *testing.T) {
		broker := memory.NewBroker()
		h := &recordingHandler{failures: 1}
		rw := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{FailurePolicy: messaging.PolicyRequeue}, h))
		rw.waitConsuming(t)

		require.NoError(t, broker.Publish(testExchange, "auth.user.registered", []byte(`{"user_id":"u1"}`)))

		require.Eventually(t, func() bool { return len(h.Seen()) == 1 }, 2*time.Second, 5*time.Millisecond)
		assert.True(t, h.Seen()[0].Redelivered)
	})

	t.Run("dead-letter", func(t *testing.T) {
		broker := memory.NewBroker()
		h := &recordingHandler{failures: 1}
		topo := testTopology("#")
		topo.DeadLetterExchange = "music.events.dlx"
		rw := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{
			Topology:      topo,
			FailurePolicy: messaging.PolicyDeadLetter,
		}, h))
		rw.waitConsuming(t)

		require.NoError(t, broker.Publish(testExchange, "auth.user.registered", []byte(`{"user_id":"u1"}`)))

		require.Eventually(t, func() bool { return broker.Ready(topo.DeadLetterQueue()) == 1 }, 2*time.Second, 5*time.Millisecond)
		assert.Empty(t, h.Seen())
		assert.Equal(t, [][]byte{[]byte(`{"user_id":"u1"}`)}, broker.Messages(topo.DeadLetterQueue()))
	})
}

func TestWorker_ReconnectsAfterBrokerRestart(t *testing.T) {
	broker := memory.NewBroker()
	h := &recordingHandler{}
	w := newTestWorker(broker, messaging.WorkerConfig{}, h)
	rw := startWorker(t, w)
	rw.waitConsuming(t)

	broker.FailNextDials(2)
	broker.Disconnect()

	require.NoError(t, broker.Publish(testExchange, "playback.track.finished", []byte(`{"user_id":"u1"}`)))

	require.Eventually(t, func() bool { return len(h.Seen()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, messaging.StateConsuming, w.State())
	assert.Equal(t, 4, broker.Dials())
}

func TestWorker_EveryBoundQueueGetsOneCopy(t *testing.T) {
	broker := memory.NewBroker()
	notifications := &recordingHandler{}
	analytics := &recordingHandler{}

	first := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{
		Topology: testTopology("catalog.#", "catalog.track.published"),
	}, notifications))
	second := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{
		Topology: messaging.Topology{Exchange: testExchange, Queue: "analytics-queue", BindingKeys: []string{"catalog.*.published"}},
	}, analytics))
	first.waitConsuming(t)
	second.waitConsuming(t)

	require.NoError(t, broker.Publish(testExchange, "catalog.track.published", []byte(`{"user_id":"u1"}`)))

	require.Eventually(t, func() bool {
		return broker.Acked(testQueue) == 1 && broker.Acked("analytics-queue") == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, notifications.Seen(), 1)
	assert.Len(t, analytics.Seen(), 1)
}

// blockingHandler holds every message until its context is cancelled.
type blockingHandler struct {
	started chan struct{}
}

func (h *blockingHandler) Handle(ctx context.Context, _ messaging.Message) error {
	close(h.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestWorker_ShutdownLeavesInFlightMessageQueued(t *testing.T) {
	broker := memory.NewBroker()
	h := &blockingHandler{started: make(chan struct{})}
	rw := startWorker(t, newTestWorker(broker, messaging.WorkerConfig{}, h))
	rw.waitConsuming(t)

	require.NoError(t, broker.Publish(testExchange, "auth.user.registered", []byte(`{"user_id":"u1"}`)))

	select {
	case <-h.started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never received the message")
	}
	require.NoError(t, rw.stop(t))

	assert.Zero(t, broker.Acked(testQueue))
	assert.Zero(t, broker.Unacked(testQueue))
	assert.Equal(t, 1, broker.Ready(testQueue))
}
