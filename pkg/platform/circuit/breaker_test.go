package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("redis", WithFailureThreshold(3))

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	assert.Equal(t, StateClosed, b.State(), "a success resets the failure streak")

	b.Failure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var transitions []string
	b := New("redis",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithCooldown(10*time.Second),
		WithClock(clock.now),
		WithStateChange(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)

	b.Failure()
	require.Equal(t, StateOpen, b.State())

	clock.advance(9 * time.Second)
	assert.False(t, b.Allow())

	clock.advance(time.Second)
	require.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "only one probe at a time")

	b.Success()
	assert.Equal(t, StateHalfOpen, b.State())
	require.True(t, b.Allow())
	b.Success()
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("redis", WithFailureThreshold(1), WithCooldown(time.Second), WithClock(clock.now))

	b.Failure()
	clock.advance(time.Second)
	require.True(t, b.Allow())
	b.Failure()

	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	b.Reset()
	assert.True(t, b.Allow())
}
