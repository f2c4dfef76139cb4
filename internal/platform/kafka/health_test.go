package kafka

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	brokers []string
	err     error
}

func (s stubLister) Brokers(context.Context) ([]string, error) { return s.brokers, s.err }

func TestHealthChecker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	t.Run("reachable seed", func(t *testing.T) {
		h := NewHealthChecker("127.0.0.1:1,"+ln.Addr().String(), time.Second)
		assert.NoError(t, h.Check(context.Background()))
		assert.Equal(t, "kafka", h.Name())
	})

	t.Run("no brokers configured", func(t *testing.T) {
		assert.Error(t, NewHealthChecker(" , ", 0).Check(context.Background()))
	})

	t.Run("metadata lists brokers", func(t *testing.T) {
		h := NewHealthChecker("kafka:9092", time.Second, WithBrokerLister(stubLister{brokers: []string{"kafka:9092"}}))
		assert.NoError(t, h.Check(context.Background()))
	})

	t.Run("metadata failure", func(t *testing.T) {
		h := NewHealthChecker("kafka:9092", time.Second, WithBrokerLister(stubLister{err: errors.New("boom")}))
		assert.ErrorContains(t, h.Check(context.Background()), "kafka metadata")
	})

	t.Run("empty metadata", func(t *testing.T) {
		h := NewHealthChecker("kafka:9092", time.Second, WithBrokerLister(stubLister{}))
		assert.Error(t, h.Check(context.Background()))
	})
}
