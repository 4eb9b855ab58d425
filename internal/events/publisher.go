// Package events delivers domain events to downstream consumers. Delivery
// is best-effort: producers hand events to an in-process queue and move on;
// transport failures are logged and never surface to the request that
// triggered them.
package events

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicTaskEvents = "task_events"

	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
)

// Event is the envelope written to the transport.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"event_type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Publisher is the producer-side contract. Publish must not block the
// caller on network I/O.
type Publisher interface {
	Publish(topic, eventType string, payload map[string]interface{})
	Close() error
}

// Sink is the transport an AsyncPublisher drains into.
type Sink interface {
	Send(ctx context.Context, topic string, event *Event) error
	Close() error
}

type delivery struct {
	topic string
	event *Event
}

// AsyncPublisher queues events and drains them with worker goroutines.
// The queue is bounded; when it is full the event is dropped with a log
// line, which is the accepted failure mode for best-effort notification.
type AsyncPublisher struct {
	sink    Sink
	queue   chan delivery
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

// NewAsyncPublisher starts the worker pool immediately. The publisher is
// constructed once at process start and injected; there is no lazy global.
func NewAsyncPublisher(sink Sink, workers, queueSize int) *AsyncPublisher {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	p := &AsyncPublisher{
		sink:    sink,
		queue:   make(chan delivery, queueSize),
		timeout: 10 * time.Second,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *AsyncPublisher) worker() {
	defer p.wg.Done()
	for d := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.sink.Send(ctx, d.topic, d.event); err != nil {
			log.Printf("events: publish %s to %s failed: %v", d.event.Type, d.topic, err)
		}
		cancel()
	}
}

func (p *AsyncPublisher) Publish(topic, eventType string, payload map[string]interface{}) {
	event := &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}

	// The read lock is held across the send so Close cannot close the
	// queue between the closed check and the enqueue.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("events: publisher closed, dropping %s", eventType)
		return
	}

	select {
	case p.queue <- delivery{topic: topic, event: event}:
	default:
		log.Printf("events: queue full, dropping %s", eventType)
	}
}

// Close drains the queue, stops the workers, and closes the sink.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return p.sink.Close()
}

// NopPublisher discards everything. Used when eventing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(string, string, map[string]interface{}) {}
func (NopPublisher) Close() error                                  { return nil }
