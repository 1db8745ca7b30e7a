package messaging

import (
	"fmt"

	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology describes one consumer group's queue and the keys it listens to.
type Topology struct {
	Exchange           string
	Queue              string
	BindingKeys        []string
	DeadLetterExchange string
}

// DeadLetterQueue is the queue that collects rejected deliveries, or "" when
// no dead-letter exchange is configured.
func (t Topology) DeadLetterQueue() string {
	if t.DeadLetterExchange == "" {
		return ""
	}
	return t.Queue + ".dead"
}

func (t Topology) Validate() error {
	if t.Exchange == "" {
		return fmt.Errorf("topology: exchange is required")
	}
	if t.Queue == "" {
		return fmt.Errorf("topology: queue is required")
	}
	if len(t.BindingKeys) == 0 {
		return fmt.Errorf("topology: queue %s has no binding keys", t.Queue)
	}
	for _, key := range t.BindingKeys {
		if !contracts.ValidPattern(key) {
			return fmt.Errorf("topology: invalid binding key %q", key)
		}
	}
	return nil
}

// QueueTopologyDeclarer declares exchange, queue, and bindings on a channel.
// Implementations must be idempotent.
type QueueTopologyDeclarer interface {
	DeclareTopology(ch Channel, t Topology) error
}

type topicDeclarer struct{}

func NewTopologyDeclarer() QueueTopologyDeclarer {
	return topicDeclarer{}
}

func (topicDeclarer) DeclareTopology(ch Channel, t Topology) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := declareExchange(ch, t.Exchange); err != nil {
		return err
	}

	var args amqp.Table
	if t.DeadLetterExchange != "" {
		if err := declareDeadLetter(ch, t); err != nil {
			return err
		}
		args = amqp.Table{
			"x-dead-letter-exchange": t.DeadLetterExchange,
		}
	}

	return declareAndBindQueue(ch, t.Queue, t.BindingKeys, t.Exchange, args)
}

func declareExchange(ch Channel, name string) error {
	if err := ch.ExchangeDeclare(
		name,              // name
		ExchangeKindTopic, // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}
	return nil
}

func declareDeadLetter(ch Channel, t Topology) error {
	if err := ch.ExchangeDeclare(t.DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter exchange %s: %w", t.DeadLetterExchange, err)
	}
	return declareAndBindQueue(ch, t.DeadLetterQueue(), []string{""}, t.DeadLetterExchange, nil)
}

func declareAndBindQueue(ch Channel, queueName string, bindingKeys []string, exchange string, args amqp.Table) error {
	q, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		args,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	for _, key := range bindingKeys {
		if err := ch.QueueBind(
			q.Name,   // queue name
			key,      // routing key
			exchange, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind queue %s to %s: %w", queueName, key, err)
		}
	}

	return nil
}
