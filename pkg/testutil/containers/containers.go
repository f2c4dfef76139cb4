//go:build integration

// Package containers starts Postgres, Redis and a Kafka-compatible broker for
// integration tests. Each is started on first use and shared by every suite in
// the test binary.
package containers

import (
	"sync"
	"testing"
)

// shared starts its value once per process. A failed start is retried by the
// next caller because start fails the test instead of returning an error.
type shared[T any] struct {
	mu sync.Mutex
	v  *T
}

func (s *shared[T]) get(t *testing.T, start func(*testing.T) *T) *T {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v == nil {
		s.v = start(t)
	}
	return s.v
}

type Manager struct {
	postgres shared[PostgresContainer]
	redis    shared[RedisContainer]
	kafka    shared[KafkaContainer]
}

var manager = &Manager{}

func GetManager() *Manager { return manager }

// GetPostgres returns a migrated Postgres container.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return m.postgres.get(t, NewPostgresContainer)
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	return m.redis.get(t, NewRedisContainer)
}

// GetKafka returns a Redpanda broker speaking the Kafka protocol.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t, NewKafkaContainer)
}
