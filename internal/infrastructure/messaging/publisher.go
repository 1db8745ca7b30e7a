package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/codes"
)

// EventPublisher appends an event to the shared exchange.
type EventPublisher interface {
	Publish(ctx context.Context, key contracts.RoutingKey, payload contracts.Payload) error
}

type PublisherConfig struct {
	URL         string
	Exchange    string
	DialTimeout time.Duration
	AppID       string
}

// Publisher opens a dedicated connection for every event and releases it
// before returning. It never retries; callers decide what a failure means.
type Publisher struct {
	cfg     PublisherConfig
	dial    Dialer
	logger  logging.Logger
	metrics *metrics.Metrics
}

type PublisherOption func(*Publisher)

func WithPublisherDialer(d Dialer) PublisherOption {
	return func(p *Publisher) { p.dial = d }
}

func WithPublisherMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

func NewPublisher(cfg PublisherConfig, logger logging.Logger, opts ...PublisherOption) *Publisher {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}

	p := &Publisher{
		cfg:    cfg,
		dial:   DialRabbitMQ,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Publisher) Publish(ctx context.Context, key contracts.RoutingKey, payload contracts.Payload) (err error) {
	event, err := contracts.NewEvent(key, payload)
	if err != nil {
		return err
	}

	body, err := event.Body()
	if err != nil {
		return err
	}

	ctx, span := startPublishSpan(ctx, p.cfg.Exchange, key.String())
	defer func() {
		result := "ok"
		if err != nil {
			result = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		p.metrics.EventPublished(key.String(), result)
		span.End()
	}()

	conn, ch, err := openChannel(p.dial, p.cfg.URL, p.cfg.DialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer ch.Close()

	if err := declareExchange(ch, p.cfg.Exchange); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	msg := amqp.Publishing{
		ContentType:  event.ContentType(),
		DeliveryMode: event.DeliveryMode(),
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		AppId:        p.cfg.AppID,
		Headers:      injectTraceContext(ctx, nil),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, p.cfg.Exchange, key.String(), false, false, msg); err != nil {
		return fmt.Errorf("%w: failed to publish %s: %w", ErrConnectivity, key, err)
	}

	p.logger.Debug(logging.RabbitMQ, logging.Publish, "event published", map[logging.ExtraKey]any{
		logging.RoutingKey: key.String(),
		logging.Exchange:   p.cfg.Exchange,
		"message_id":       msg.MessageId,
	})

	return nil
}

// PublishOrLog publishes and logs a failure instead of returning it. Services
// use it after their local write has committed, when there is nothing left to
// roll back.
func PublishOrLog(ctx context.Context, pub EventPublisher, logger logging.Logger, key contracts.RoutingKey, payload contracts.Payload) bool {
	if err := pub.Publish(ctx, key, payload); err != nil {
		logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish event", map[logging.ExtraKey]any{
			logging.RoutingKey:   key.String(),
			logging.ErrorMessage: err.Error(),
		})
		return false
	}
	return true
}
