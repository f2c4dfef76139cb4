// Package tracer is a small tracing abstraction so services can emit spans
// without depending on OpenTelemetry APIs directly.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start opens a span; the returned context carries it to child calls.
	//
	//   ctx, span := t.Start(ctx, "census.store.insert",
	//       tracer.String("territory", string(record.Territory)),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }
func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }
func Int64(key string, value int64) Attribute { return Attribute{Key: key, Value: value} }
func Float64(key string, value float64) Attribute { return Attribute{Key: key, Value: value} }

// Duration records d in milliseconds.
func Duration(key string, d time.Duration) Attribute {
	return Attribute{Key: key, Value: float64(d.Microseconds()) / 1000}
}

// HashIdentity returns a short stable digest of an identity number so spans can
// correlate requests on the same document without carrying the number itself.
func HashIdentity(number string) string {
	if number == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(number))
	return hex.EncodeToString(sum[:8])
}
