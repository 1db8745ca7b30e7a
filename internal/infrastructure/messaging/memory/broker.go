// Package memory is an in-process broker implementing the messaging
// Connection and Channel interfaces. It follows topic exchange routing,
// prefetch limits, manual acknowledgement and dead-lettering closely
// enough to exercise the worker without a RabbitMQ server.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrDialRefused   = errors.New("memory broker: connection refused")
	ErrClosed        = errors.New("memory broker: closed")
	ErrNotFound      = errors.New("memory broker: not found")
	ErrPrecondition  = errors.New("memory broker: precondition failed")
	ErrUnknownTag    = errors.New("memory broker: unknown delivery tag")
	errForcedClosure = &amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED - closed by test", Server: true}
)

type message struct {
	exchange    string
	routingKey  string
	publishing  amqp.Publishing
	redelivered bool
}

type queue struct {
	name    string
	args    amqp.Table
	ready   []message
	unacked int
	acked   int
}

type binding struct {
	queue string
	key   string
}

type Broker struct {
	mu   sync.Mutex
	cond *sync.Cond

	exchanges map[string]string
	queues    map[string]*queue
	bindings  map[string]map[binding]struct{}
	conns     map[*Connection]struct{}

	failDials int
	dials     int
}

func NewBroker() *Broker {
	b := &Broker{
		exchanges: make(map[string]string),
		queues:    make(map[string]*queue),
		bindings:  make(map[string]map[binding]struct{}),
		conns:     make(map[*Connection]struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Dial satisfies messaging.Dialer.
func (b *Broker) Dial(_ string, _ time.Duration) (messaging.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dials++
	if b.failDials > 0 {
		b.failDials--
		return nil, ErrDialRefused
	}

	conn := &Connection{broker: b, channels: make(map[*Channel]struct{})}
	b.conns[conn] = struct{}{}
	return conn, nil
}

// FailNextDials makes the next n dials fail.
func (b *Broker) FailNextDials(n int) {
	b.mu.Lock()
	b.failDials = n
	b.mu.Unlock()
}

func (b *Broker) Dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *Broker) OpenConnections() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

// Disconnect drops every open connection the way a broker restart would.
// Declared exchanges, queues and their messages survive.
func (b *Broker) Disconnect() {
	b.mu.Lock()
	conns := make([]*Connection, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		c.shutdown(errForcedClosure)
	}
}

// Publish routes a message without going through a client connection.
func (b *Broker) Publish(exchange, key string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route(exchange, key, amqp.Publishing{
		ContentType:  contracts.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (b *Broker) ExchangeKind(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind, ok := b.exchanges[name]
	return kind, ok
}

func (b *Broker) QueueArgs(name string) (amqp.Table, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		return nil, false
	}
	return q.args, true
}

// Bindings lists the keys bound from exchange to queue, sorted.
func (b *Broker) Bindings(exchange, queue string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	for bd := range b.bindings[exchange] {
		if bd.queue == queue {
			keys = append(keys, bd.key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Ready is the number of messages waiting in the queue.
func (b *Broker) Ready(name string) int {
	return b.stat(name, func(q *queue) int { return len(q.ready) })
}

func (b *Broker) Unacked(name string) int {
	return b.stat(name, func(q *queue) int { return q.unacked })
}

func (b *Broker) Acked(name string) int {
	return b.stat(name, func(q *queue) int { return q.acked })
}

// Messages returns the bodies waiting in the queue, oldest first.
func (b *Broker) Messages(name string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[name]
	if !ok {
		return nil
	}
	out := make([][]byte, 0, len(q.ready))
	for _, m := range q.ready {
		out = append(out, m.publishing.Body)
	}
	return out
}

func (b *Broker) stat(name string, f func(*queue) int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		return 0
	}
	return f(q)
}

// route must be called with mu held.
func (b *Broker) route(exchange, key string, p amqp.Publishing) error {
	kind, ok := b.exchanges[exchange]
	if !ok {
		return fmt.Errorf("%w: exchange %q", ErrNotFound, exchange)
	}

	targets := make(map[string]struct{})
	for bd := range b.bindings[exchange] {
		if matches(kind, bd.key, key) {
			targets[bd.queue] = struct{}{}
		}
	}

	for name := range targets {
		q := b.queues[name]
		q.ready = append(q.ready, message{exchange: exchange, routingKey: key, publishing: p})
	}
	if len(targets) > 0 {
		b.cond.Broadcast()
	}
	return nil
}

func matches(kind, pattern, key string) bool {
	switch kind {
	case amqp.ExchangeFanout:
		return true
	case amqp.ExchangeDirect:
		return pattern == key
	default:
		return contracts.Match(pattern, key)
	}
}

// deadLetter must be called with mu held.
func (b *Broker) deadLetter(q *queue, m message) {
	dlx, _ := q.args["x-dead-letter-exchange"].(string)
	if dlx == "" {
		return
	}
	_ = b.route(dlx, m.routingKey, m.publishing)
}

type Connection struct {
	broker   *Broker
	channels map[*Channel]struct{}
	notify   []chan *amqp.Error
	closed   bool
}

func (c *Connection) Channel() (messaging.Channel, error) {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	ch := &Channel{
		conn:    c,
		done:    make(chan struct{}),
		unacked: make(map[uint64]pending),
	}
	c.channels[ch] = struct{}{}
	return ch, nil
}

func (c *Connection) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.closed {
		close(receiver)
		return receiver
	}
	c.notify = append(c.notify, receiver)
	return receiver
}

func (c *Connection) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *Connection) shutdown(reason *amqp.Error) {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	delete(b.conns, c)

	for ch := range c.channels {
		ch.closeLocked(reason)
	}
	notifyClosed(c.notify, reason)
	c.notify = nil
}

type pending struct {
	queue *queue
	msg   message
}

type Channel struct {
	conn *Connection

	prefetch int
	nextTag  uint64
	unacked  map[uint64]pending
	notify   []chan *amqp.Error
	done     chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

func (ch *Channel) broker() *Broker { return ch.conn.broker }

func (ch *Channel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return ErrClosed
	}
	if existing, ok := b.exchanges[name]; ok && existing != kind {
		return fmt.Errorf("%w: exchange %q is %s, not %s", ErrPrecondition, name, existing, kind)
	}
	b.exchanges[name] = kind
	return nil
}

func (ch *Channel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return amqp.Queue{}, ErrClosed
	}

	q, ok := b.queues[name]
	if !ok {
		q = &queue{name: name, args: args}
		b.queues[name] = q
	}

	return amqp.Queue{Name: name, Messages: len(q.ready)}, nil
}

func (ch *Channel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return ErrClosed
	}
	if _, ok := b.queues[name]; !ok {
		return fmt.Errorf("%w: queue %q", ErrNotFound, name)
	}
	if _, ok := b.exchanges[exchange]; !ok {
		return fmt.Errorf("%w: exchange %q", ErrNotFound, exchange)
	}

	set, ok := b.bindings[exchange]
	if !ok {
		set = make(map[binding]struct{})
		b.bindings[exchange] = set
	}
	set[binding{queue: name, key: key}] = struct{}{}
	return nil
}

func (ch *Channel) Qos(prefetchCount, prefetchSize int, global bool) error {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return ErrClosed
	}
	ch.prefetch = prefetchCount
	return nil
}

func (ch *Channel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return ErrClosed
	}
	return b.route(exchange, key, msg)
}

func (ch *Channel) Consume(queueName, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return nil, ErrClosed
	}
	q, ok := b.queues[queueName]
	if !ok {
		return nil, fmt.Errorf("%w: queue %q", ErrNotFound, queueName)
	}

	out := make(chan amqp.Delivery)
	ch.wg.Add(1)
	go ch.deliver(q, consumer, autoAck, out)
	return out, nil
}

func (ch *Channel) deliver(q *queue, consumer string, autoAck bool, out chan<- amqp.Delivery) {
	defer ch.wg.Done()
	defer close(out)

	b := ch.broker()
	for {
		b.mu.Lock()
		for !ch.closed && (len(q.ready) == 0 || (!autoAck && ch.prefetch > 0 && len(ch.unacked) >= ch.prefetch)) {
			b.cond.Wait()
		}
		if ch.closed {
			b.mu.Unlock()
			return
		}

		m := q.ready[0]
		q.ready = q.ready[1:]
		ch.nextTag++
		tag := ch.nextTag
		if autoAck {
			q.acked++
		} else {
			ch.unacked[tag] = pending{queue: q, msg: m}
			q.unacked++
		}
		b.mu.Unlock()

		d := amqp.Delivery{
			Acknowledger: ch,
			Headers:      m.publishing.Headers,
			ContentType:  m.publishing.ContentType,
			DeliveryMode: m.publishing.DeliveryMode,
			MessageId:    m.publishing.MessageId,
			Timestamp:    m.publishing.Timestamp,
			AppId:        m.publishing.AppId,
			ConsumerTag:  consumer,
			DeliveryTag:  tag,
			Redelivered:  m.redelivered,
			Exchange:     m.exchange,
			RoutingKey:   m.routingKey,
			Body:         m.publishing.Body,
		}

		select {
		case out <- d:
		case <-ch.done:
			return
		}
	}
}

func (ch *Channel) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		close(receiver)
		return receiver
	}
	ch.notify = append(ch.notify, receiver)
	return receiver
}

func (ch *Channel) Close() error {
	b := ch.broker()
	b.mu.Lock()
	ch.closeLocked(nil)
	delete(ch.conn.channels, ch)
	b.mu.Unlock()

	ch.wg.Wait()
	return nil
}

// closeLocked returns unacknowledged messages to their queues, flagged as
// redelivered. mu must be held.
func (ch *Channel) closeLocked(reason *amqp.Error) {
	if ch.closed {
		return
	}
	ch.closed = true
	close(ch.done)

	for tag, p := range ch.unacked {
		p.msg.redelivered = true
		p.queue.ready = append([]message{p.msg}, p.queue.ready...)
		p.queue.unacked--
		delete(ch.unacked, tag)
	}

	notifyClosed(ch.notify, reason)
	ch.notify = nil
	ch.broker().cond.Broadcast()
}

func (ch *Channel) Ack(tag uint64, multiple bool) error {
	return ch.settle(tag, multiple, func(b *Broker, p pending) {
		p.queue.acked++
	})
}

func (ch *Channel) Nack(tag uint64, multiple, requeue bool) error {
	return ch.settle(tag, multiple, func(b *Broker, p pending) {
		if requeue {
			p.msg.redelivered = true
			p.queue.ready = append([]message{p.msg}, p.queue.ready...)
			return
		}
		b.deadLetter(p.queue, p.msg)
	})
}

func (ch *Channel) Reject(tag uint64, requeue bool) error {
	return ch.Nack(tag, false, requeue)
}

func (ch *Channel) settle(tag uint64, multiple bool, apply func(*Broker, pending)) error {
	b := ch.broker()
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch.closed {
		return ErrClosed
	}

	tags := []uint64{tag}
	if multiple {
		tags = tags[:0]
		for t := range ch.unacked {
			if t <= tag {
				tags = append(tags, t)
			}
		}
	}

	for _, t := range tags {
		p, ok := ch.unacked[t]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTag, t)
		}
		delete(ch.unacked, t)
		p.queue.unacked--
		apply(b, p)
	}

	b.cond.Broadcast()
	return nil
}

func notifyClosed(receivers []chan *amqp.Error, reason *amqp.Error) {
	for _, r := range receivers {
		if reason != nil {
			select {
			case r <- reason:
			default:
			}
		}
		close(r)
	}
}
