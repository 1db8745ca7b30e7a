package messaging_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging/memory"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

const (
	testExchange = "music.events"
	testQueue    = "notifications-queue"
)

// recordingTimer fires immediately and remembers every requested wait.
type recordingTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{c: make(chan time.Time, 1)}
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func (t *recordingTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.waits))
	copy(out, t.waits)
	return out
}

func testTopology(keys ...string) messaging.Topology {
	return messaging.Topology{
		Exchange:    testExchange,
		Queue:       testQueue,
		BindingKeys: keys,
	}
}

type runningWorker struct {
	worker *messaging.Worker
	cancel context.CancelFunc
	done   chan error
}

func startWorker(t *testing.T, w *messaging.Worker) *runningWorker {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	rw := &runningWorker{worker: w, cancel: cancel, done: make(chan error, 1)}
	go func() { rw.done <- w.Run(ctx) }()

	t.Cleanup(func() { rw.stop(t) })
	return rw
}

func (rw *runningWorker) stop(t *testing.T) error {
	t.Helper()
	rw.cancel()
	select {
	case err := <-rw.done:
		rw.done <- err
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
		return nil
	}
}

func (rw *runningWorker) waitConsuming(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return rw.worker.State() == messaging.StateConsuming
	}, 2*time.Second, 5*time.Millisecond)
}

// consumeOne reads a single delivery from queue with auto-ack.
func consumeOne(t *testing.T, broker *memory.Broker, queue string) amqp.Delivery {
	t.Helper()

	conn, err := broker.Dial("", time.Second)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	deliveries, err := ch.Consume(queue, "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		return d
	case <-time.After(2 * time.Second):
		t.Fatalf("no delivery on %s", queue)
		return amqp.Delivery{}
	}
}
