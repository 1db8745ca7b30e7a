package contracts

import (
	"encoding/json"
	"fmt"
)

const (
	ContentTypeJSON = "application/json"

	// DeliveryPersistent matches the AMQP delivery mode 2.
	DeliveryPersistent uint8 = 2
)

// Event is one published domain occurrence. It is built once by a producer
// and never modified afterwards.
type Event struct {
	routingKey   RoutingKey
	payload      Payload
	contentType  string
	deliveryMode uint8
}

func NewEvent(key RoutingKey, payload Payload) (Event, error) {
	if !key.Known() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownRoutingKey, string(key))
	}

	fields := make(Payload, len(payload))
	copy(fields, payload)

	return Event{
		routingKey:   key,
		payload:      fields,
		contentType:  ContentTypeJSON,
		deliveryMode: DeliveryPersistent,
	}, nil
}

func (e Event) RoutingKey() RoutingKey { return e.routingKey }
func (e Event) ContentType() string    { return e.contentType }
func (e Event) DeliveryMode() uint8    { return e.deliveryMode }

// Payload returns a copy of the event fields.
func (e Event) Payload() Payload {
	out := make(Payload, len(e.payload))
	copy(out, e.payload)
	return out
}

// Body is the UTF-8 JSON encoding sent on the wire.
func (e Event) Body() ([]byte, error) {
	body, err := json.Marshal(e.payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", e.routingKey, err)
	}
	return body, nil
}
