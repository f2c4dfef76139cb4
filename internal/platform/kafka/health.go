package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"censusdesk/internal/platform/kafka/producer"
)

// BrokerLister reads broker membership from cluster metadata.
// *producer.Producer implements it.
type BrokerLister interface {
	Brokers(ctx context.Context) ([]string, error)
}

// HealthChecker reports whether the audit stream can reach the cluster.
// With a BrokerLister it asks the cluster for its brokers; otherwise it falls
// back to dialing the configured seeds.
type HealthChecker struct {
	seeds   []string
	timeout time.Duration
	lister  BrokerLister
}

type HealthOption func(*HealthChecker)

func WithBrokerLister(l BrokerLister) HealthOption {
	return func(h *HealthChecker) { h.lister = l }
}

func NewHealthChecker(brokers string, timeout time.Duration, opts ...HealthOption) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	h := &HealthChecker{
		seeds:   producer.SplitBrokers(brokers),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.seeds) == 0 {
		return errors.New("kafka brokers not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if h.lister != nil {
		brokers, err := h.lister.Brokers(ctx)
		if err != nil {
			return fmt.Errorf("kafka metadata: %w", err)
		}
		if len(brokers) == 0 {
			return errors.New("kafka metadata lists no brokers")
		}
		return nil
	}
	return h.dialAny(ctx)
}

func (h *HealthChecker) dialAny(ctx context.Context) error {
	var errs []error
	var dialer net.Dialer
	for _, seed := range h.seeds {
		conn, err := dialer.DialContext(ctx, "tcp", seed)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka seed reachable: %w", errors.Join(errs...))
}

func (h *HealthChecker) Name() string {
	return "kafka"
}
