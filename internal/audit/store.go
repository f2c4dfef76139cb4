package audit

import "context"

// Sink is a write-only destination for events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store keeps events queryable by the actor who acted and by the record they
// acted on.
type Store interface {
	Sink
	ListByActor(ctx context.Context, actorID string) ([]Event, error)
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
