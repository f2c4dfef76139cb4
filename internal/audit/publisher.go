package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher captures structured audit events. It is append-only; the store
// keeps queryable history and extra sinks (Kafka) receive a copy.
type Publisher struct {
	store  Store
	sinks  []Sink
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
	onDrop func()
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events and persists them from a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for sink failures and dropped events.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithDropHook is called for every event the publisher fails to persist or
// has to drop because the buffer is full.
func WithDropHook(fn func()) PublisherOption {
	return func(p *Publisher) {
		p.onDrop = fn
	}
}

// WithSink adds a write-only destination.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		_ = p.write(context.Background(), event)
	}
}

// write appends to the store first; sink failures are logged, never returned.
func (p *Publisher) write(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		p.logError(ctx, "failed to persist audit event", err, event)
		p.dropped()
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.logError(ctx, "failed to forward audit event", err, event)
		}
	}
	return nil
}

func (p *Publisher) logError(ctx context.Context, msg string, err error, event Event) {
	if p.logger == nil {
		return
	}
	p.logger.ErrorContext(ctx, msg,
		"error", err,
		"action", event.Action,
		"actor_id", event.ActorID,
	)
}

func (p *Publisher) dropped() {
	if p.onDrop != nil {
		p.onDrop()
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	if p.async {
		// Drop instead of blocking the request path when the buffer is full.
		select {
		case p.events <- base:
			return nil
		default:
			p.dropped()
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit buffer full, event dropped",
					"action", base.Action,
					"actor_id", base.ActorID,
				)
			}
			return nil
		}
	}
	return p.write(ctx, base)
}

func (p *Publisher) List(ctx context.Context, actorID string) ([]Event, error) {
	return p.store.ListByActor(ctx, actorID)
}

// History returns the retained events about subject, oldest first. Events
// still queued by an async publisher are not included.
func (p *Publisher) History(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
