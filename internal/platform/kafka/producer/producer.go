package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrClosed is returned by Produce after Close.
var ErrClosed = errors.New("producer is closed")

// Message is one record to publish.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Config holds producer settings. An empty Brokers list disables Kafka.
type Config struct {
	Brokers         string        `env:"KAFKA_BROKERS"`
	Acks            string        `env:"KAFKA_ACKS" envDefault:"all"`
	Retries         int           `env:"KAFKA_RETRIES" envDefault:"3"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"30s"`
	DialTimeout     time.Duration `env:"KAFKA_DIAL_TIMEOUT" envDefault:"5s"`
	AuditTopic      string        `env:"KAFKA_AUDIT_TOPIC" envDefault:"censusdesk.audit"`
}

// Producer wraps the franz-go client with a narrower interface.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// New creates a Kafka producer.
func New(cfg Config, logger *slog.Logger) (*Producer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	var acks kgo.Acks
	switch cfg.Acks {
	case "0":
		acks = kgo.NoAck()
	case "1":
		acks = kgo.LeaderAck()
	default:
		acks = kgo.AllISRAcks()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(SplitBrokers(cfg.Brokers)...),
		kgo.RequiredAcks(acks),
		kgo.RecordRetries(cfg.Retries),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.AllowAutoTopicCreation(),
	}
	if acks != kgo.AllISRAcks() {
		// Idempotent writes require acks=all.
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}
	if cfg.DialTimeout > 0 {
		opts = append(opts, kgo.Dialer(Dialer(cfg.DialTimeout)))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		client: client,
		logger: logger,
	}, nil
}

func toRecord(msg *Message) *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return &kgo.Record{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

func (p *Producer) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Produce sends msg and waits for the broker acknowledgement.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if p.isClosed() {
		return ErrClosed
	}
	if err := p.client.ProduceSync(ctx, toRecord(msg)).FirstErr(); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}
	return nil
}

// ProduceAsync buffers msg for background delivery. Failures are logged.
func (p *Producer) ProduceAsync(msg *Message) error {
	if p.isClosed() {
		return ErrClosed
	}
	p.client.Produce(context.Background(), toRecord(msg), func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("kafka delivery failed",
				"topic", r.Topic,
				"partition", r.Partition,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records for up to timeout and shuts the client down.
func (p *Producer) Close(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := p.client.Flush(ctx)
	if err != nil && p.logger != nil {
		p.logger.Warn("kafka producer closed with unflushed messages", "error", err)
	}
	p.client.Close()
	return err
}

// Health pings the brokers. Registered as a readiness check.
func (p *Producer) Health(ctx context.Context) error {
	if p.isClosed() {
		return ErrClosed
	}
	return p.client.Ping(ctx)
}

// Brokers lists the brokers in the cluster metadata as host:port.
func (p *Producer) Brokers(ctx context.Context) ([]string, error) {
	if p.isClosed() {
		return nil, ErrClosed
	}
	// The admin client shares p.client and must not be closed here.
	details, err := kadm.NewClient(p.client).ListBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brokers: %w", err)
	}
	out := make([]string, 0, len(details))
	for _, b := range details {
		out = append(out, net.JoinHostPort(b.Host, strconv.Itoa(int(b.Port))))
	}
	return out, nil
}

// Len returns the number of buffered, undelivered records.
func (p *Producer) Len() int {
	return int(p.client.BufferedProduceRecords())
}

// NoopProducer discards every message. It stands in when Kafka is disabled.
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer { return &NoopProducer{} }

func (NoopProducer) Produce(context.Context, *Message) error { return nil }
func (NoopProducer) ProduceAsync(*Message) error { return nil }
func (NoopProducer) Close(time.Duration) error { return nil }
func (NoopProducer) Health(context.Context) error { return nil }

// SplitBrokers parses a comma-separated broker list, dropping blanks.
func SplitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Dialer returns a dial function with a connect timeout for the Kafka client.
func Dialer(timeout time.Duration) func(ctx context.Context, network, address string) (net.Conn, error) {
	return (&net.Dialer{Timeout: timeout}).DialContext
}
