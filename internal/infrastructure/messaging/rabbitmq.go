// Package messaging carries domain events over a RabbitMQ topic exchange:
// the publisher side used by every producing service and the reconnecting
// worker that feeds consumer handlers.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange   = "music.events"
	ExchangeKindTopic = "topic"

	DefaultDialTimeout = 5 * time.Second
)

var (
	// ErrConnectivity marks failures reaching or talking to the broker.
	ErrConnectivity = errors.New("broker unreachable")

	// ErrMalformedPayload is returned by handlers for bodies that can never be
	// processed. Such deliveries are always acknowledged.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrRetriesExhausted is returned by Worker.Run once a configured retry
	// budget is spent.
	ErrRetriesExhausted = errors.New("broker connection retries exhausted")
)

// Channel is the subset of *amqp.Channel used here.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

type Connection interface {
	Channel() (Channel, error)
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

// Dialer opens a broker connection within timeout.
type Dialer func(url string, timeout time.Duration) (Connection, error)

type rabbitConnection struct {
	*amqp.Connection
}

func (c rabbitConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// DialRabbitMQ is the production Dialer.
func DialRabbitMQ(url string, timeout time.Duration) (Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return rabbitConnection{Connection: conn}, nil
}

// openChannel dials and opens a channel, closing the connection when the
// channel cannot be created.
func openChannel(dial Dialer, url string, timeout time.Duration) (Connection, Channel, error) {
	conn, err := dial(url, timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("%w: failed to create channel: %w", ErrConnectivity, err)
	}

	return conn, ch, nil
}
