// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/order"
)

const Topic = "marketplace.orders"

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w       messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		timeout: 5 * time.Second,
	}
}

// Publish writes ev keyed by order id, so every event of one order lands on
// the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, ev order.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: data,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Nop is used when no brokers are configured. It logs events at debug level.
type Nop struct{ Log *logrus.Logger }

func (n Nop) Publish(_ context.Context, ev order.Event) error {
	if n.Log != nil {
		n.Log.WithFields(logrus.Fields{"event": ev.Type, "order_id": ev.OrderID}).Debug("event not published: kafka disabled")
	}
	return nil
}

func (Nop) Close() error { return nil }

// Publisher is what main wires into the order service.
type Publisher interface {
	order.Publisher
	Close() error
}

const (
	QueueSize    = 1024
	drainTimeout = 10 * time.Second
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event publisher closed")
)

// Async hands events to a single background worker, so a slow or
// unreachable broker never holds up the request that produced them. Events
// reach next in publish order. When the queue is full Publish drops the
// event and returns ErrQueueFull.
type Async struct {
	next  Publisher
	log   *logrus.Logger
	queue chan order.Event
	done  chan struct{}
	drain time.Duration

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next Publisher, size int, log *logrus.Logger) *Async {
	a := &Async{
		next:  next,
		log:   log,
		queue: make(chan order.Event, size),
		done:  make(chan struct{}),
		drain: drainTimeout,
	}
	go a.run()
	return a
}

func (a *Async) Publish(_ context.Context, ev order.Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		if err := a.next.Publish(context.Background(), ev); err != nil {
			a.log.WithError(err).WithFields(logrus.Fields{"order_id": ev.OrderID, "event": ev.Type}).
				Warn("publish order event failed")
		}
	}
}

// Close stops accepting events and waits up to the drain timeout for the
// queued ones before closing next.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(a.drain):
		a.log.WithField("pending", len(a.queue)).Warn("event queue not drained before shutdown")
	}
	return a.next.Close()
}

// New returns an asynchronous Kafka publisher for brokers, or Nop when the
// list is empty.
func New(brokers []string, log *logrus.Logger) Publisher {
	if len(brokers) == 0 {
		return Nop{Log: log}
	}
	return NewAsync(NewKafkaPublisher(brokers, Topic), QueueSize, log)
}
