package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/codes"
)

const DefaultRetryDelay = 5 * time.Second

type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateConsuming
	StateAborted
)

var stateNames = []string{"disconnected", "connected", "consuming", "aborted"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Message is the part of a delivery handlers get to see.
type Message struct {
	RoutingKey  string
	MessageID   string
	ContentType string
	Redelivered bool
	Timestamp   time.Time
	Body        []byte
}

type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error { return f(ctx, msg) }

type WorkerConfig struct {
	URL         string
	Topology    Topology
	ConsumerTag string
	DialTimeout time.Duration
	RetryDelay  time.Duration
	// MaxRetries bounds connection attempts per outage; 0 retries forever.
	MaxRetries    int
	FailurePolicy FailurePolicy
}

// Worker consumes one queue with manual acknowledgement, handing each
// delivery to its Handler before fetching the next. Transport failures
// restart the whole connect and declare sequence.
type Worker struct {
	cfg      WorkerConfig
	handler  Handler
	logger   logging.Logger
	metrics  *metrics.Metrics
	dial     Dialer
	declarer QueueTopologyDeclarer
	timer    backoff.Timer

	state    atomic.Int32
	attempts atomic.Int64
}

type WorkerOption func(*Worker)

func WithWorkerDialer(d Dialer) WorkerOption {
	return func(w *Worker) { w.dial = d }
}

func WithTopologyDeclarer(d QueueTopologyDeclarer) WorkerOption {
	return func(w *Worker) { w.declarer = d }
}

// WithRetryTimer replaces the timer used between connection attempts.
func WithRetryTimer(t backoff.Timer) WorkerOption {
	return func(w *Worker) { w.timer = t }
}

func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

func NewWorker(cfg WorkerConfig, handler Handler, logger logging.Logger, opts ...WorkerOption) *Worker {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = PolicyAck
	}

	w := &Worker{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		dial:     DialRabbitMQ,
		declarer: NewTopologyDeclarer(),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *Worker) State() State { return State(w.state.Load()) }

// Attempts is the number of failed connection attempts in the current outage.
func (w *Worker) Attempts() int { return int(w.attempts.Load()) }

func (w *Worker) setState(s State) {
	if State(w.state.Swap(int32(s))) == s {
		return
	}
	w.metrics.WorkerState(s.String(), stateNames...)
	w.logger.Debug(logging.RabbitMQ, logging.Consume, "worker state changed", map[logging.ExtraKey]any{
		logging.Queue: w.cfg.Topology.Queue,
		"state":       s.String(),
	})
}

// Run blocks until ctx is cancelled (returning nil) or the retry budget is
// exhausted (returning ErrRetriesExhausted).
func (w *Worker) Run(ctx context.Context) error {
	if err := w.cfg.Topology.Validate(); err != nil {
		return err
	}

	for {
		conn, ch, err := w.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.setState(StateDisconnected)
				return nil
			}
			w.setState(StateAborted)
			return err
		}

		err = w.consume(ctx, conn, ch)
		ch.Close()
		conn.Close()
		w.setState(StateDisconnected)

		if ctx.Err() != nil {
			w.logger.Info(logging.RabbitMQ, logging.Shutdown, "worker stopped", map[logging.ExtraKey]any{
				logging.Queue: w.cfg.Topology.Queue,
			})
			return nil
		}

		w.logger.Warn(logging.RabbitMQ, logging.Connect, "lost broker connection, reconnecting", map[logging.ExtraKey]any{
			logging.Queue:        w.cfg.Topology.Queue,
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (w *Worker) connect(ctx context.Context) (Connection, Channel, error) {
	var (
		conn Connection
		ch   Channel
	)

	w.attempts.Store(0)

	var b backoff.BackOff = backoff.NewConstantBackOff(w.cfg.RetryDelay)
	if w.cfg.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, uint64(w.cfg.MaxRetries-1))
	}
	b = backoff.WithContext(b, ctx)

	operation := func() error {
		attempt := w.attempts.Load() + 1
		w.logger.Info(logging.RabbitMQ, logging.Connect, "connecting to broker", map[logging.ExtraKey]any{
			logging.Attempt: attempt,
			logging.Queue:   w.cfg.Topology.Queue,
		})

		c, channel, err := openChannel(w.dial, w.cfg.URL, w.cfg.DialTimeout)
		if err != nil {
			w.attempts.Store(attempt)
			w.metrics.ConnectAttempt("failed")
			return err
		}

		if err := w.declarer.DeclareTopology(channel, w.cfg.Topology); err != nil {
			channel.Close()
			c.Close()
			w.attempts.Store(attempt)
			w.metrics.ConnectAttempt("failed")
			return fmt.Errorf("%w: %w", ErrConnectivity, err)
		}

		conn, ch = c, channel
		return nil
	}

	notify := func(err error, next time.Duration) {
		w.logger.Warn(logging.RabbitMQ, logging.Connect, "broker connection attempt failed", map[logging.ExtraKey]any{
			logging.Attempt:      w.attempts.Load(),
			logging.Queue:        w.cfg.Topology.Queue,
			logging.ErrorMessage: err.Error(),
			"retry_in":           next.String(),
		})
	}

	if err := backoff.RetryNotifyWithTimer(operation, b, notify, w.timer); err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		w.logger.Error(logging.RabbitMQ, logging.Connect, "giving up on broker connection", map[logging.ExtraKey]any{
			logging.Attempt:      w.attempts.Load(),
			logging.ErrorMessage: err.Error(),
		})
		return nil, nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, w.attempts.Load(), err)
	}

	w.attempts.Store(0)
	w.metrics.ConnectAttempt("ok")
	w.setState(StateConnected)
	w.logger.Info(logging.RabbitMQ, logging.Topology, "topology declared", map[logging.ExtraKey]any{
		logging.Exchange: w.cfg.Topology.Exchange,
		logging.Queue:    w.cfg.Topology.Queue,
		"binding_keys":   w.cfg.Topology.BindingKeys,
	})

	return conn, ch, nil
}

func (w *Worker) consume(ctx context.Context, conn Connection, ch Channel) error {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("%w: failed to set QoS: %w", ErrConnectivity, err)
	}

	deliveries, err := ch.Consume(
		w.cfg.Topology.Queue, // queue
		w.cfg.ConsumerTag,    // consumer
		false,                // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return fmt.Errorf("%w: failed to register consumer: %w", ErrConnectivity, err)
	}

	w.setState(StateConsuming)
	w.logger.Info(logging.RabbitMQ, logging.Consume, "consuming", map[logging.ExtraKey]any{
		logging.Queue: w.cfg.Topology.Queue,
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-connClosed:
			return fmt.Errorf("%w: connection closed: %v", ErrConnectivity, amqpErr)
		case amqpErr := <-chClosed:
			return fmt.Errorf("%w: channel closed: %v", ErrConnectivity, amqpErr)
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%w: delivery stream closed", ErrConnectivity)
			}
			if err := w.handle(ctx, d); err != nil {
				return err
			}
		}
	}
}

// handle runs the handler and settles the delivery. Only settlement failures
// are returned.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) error {
	ctx, span := startConsumeSpan(extractTraceContext(ctx, d.Headers), w.cfg.Topology.Queue, d)
	defer span.End()

	extra := map[logging.ExtraKey]any{
		logging.RoutingKey:  d.RoutingKey,
		logging.DeliveryTag: d.DeliveryTag,
		"message_id":        d.MessageId,
		"redelivered":       d.Redelivered,
	}

	herr := w.handler.Handle(ctx, Message{
		RoutingKey:  d.RoutingKey,
		MessageID:   d.MessageId,
		ContentType: d.ContentType,
		Redelivered: d.Redelivered,
		Timestamp:   d.Timestamp,
		Body:        d.Body,
	})

	var (
		settleErr error
		outcome   string
	)
	switch {
	case herr == nil:
		settleErr = d.Ack(false)
		outcome = "processed"
	case errors.Is(herr, ErrMalformedPayload):
		extra[logging.ErrorMessage] = herr.Error()
		w.logger.Warn(logging.RabbitMQ, logging.Consume, "dropping malformed message", extra)
		settleErr = d.Ack(false)
		outcome = "dropped"
	case ctx.Err() != nil:
		// Shutting down mid-message: leave it unsettled so closing the
		// channel returns it to the queue.
		extra[logging.ErrorMessage] = herr.Error()
		w.logger.Warn(logging.RabbitMQ, logging.Consume, "handler interrupted by shutdown, leaving message for redelivery", extra)
		w.metrics.MessageHandled(d.RoutingKey, "interrupted")
		return nil
	default:
		span.RecordError(herr)
		span.SetStatus(codes.Error, herr.Error())
		extra[logging.ErrorMessage] = herr.Error()
		extra["policy"] = string(w.cfg.FailurePolicy)
		w.logger.Error(logging.RabbitMQ, logging.Consume, "message handler failed", extra)
		settleErr = w.cfg.FailurePolicy.settle(d)
		outcome = w.cfg.FailurePolicy.outcome()
	}

	if settleErr != nil {
		return fmt.Errorf("%w: failed to settle delivery %d: %w", ErrConnectivity, d.DeliveryTag, settleErr)
	}

	w.metrics.MessageHandled(d.RoutingKey, outcome)
	return nil
}
