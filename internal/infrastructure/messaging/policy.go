package messaging

import (
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// FailurePolicy settles a delivery whose handler failed for a reason other
// than a malformed payload.
type FailurePolicy string

const (
	// PolicyAck drops the message after logging it.
	PolicyAck FailurePolicy = "ack"
	// PolicyRequeue returns the message to the queue for redelivery.
	PolicyRequeue FailurePolicy = "requeue"
	// PolicyDeadLetter rejects the message so the broker routes it to the
	// queue's dead-letter exchange.
	PolicyDeadLetter FailurePolicy = "dead-letter"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyAck:
		return PolicyAck, nil
	case PolicyRequeue, PolicyDeadLetter:
		return p, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (supported: ack, requeue, dead-letter)", s)
}

func (p FailurePolicy) settle(d amqp.Delivery) error {
	switch p {
	case PolicyRequeue:
		return d.Nack(false, true)
	case PolicyDeadLetter:
		return d.Nack(false, false)
	default:
		return d.Ack(false)
	}
}

func (p FailurePolicy) outcome() string {
	switch p {
	case PolicyRequeue:
		return "requeued"
	case PolicyDeadLetter:
		return "dead_lettered"
	default:
		return "failed"
	}
}
