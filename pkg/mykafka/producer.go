package mykafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON events to Kafka. Writes go through a circuit breaker
// so an unreachable cluster fails fast instead of holding requests for the
// full write timeout.
type Producer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

type Options struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func NewProducer(brokers []string, opts Options) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return newProducer(w, opts), nil
}

func newProducer(w messageWriter, opts Options) *Producer {
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	threshold := opts.FailureThreshold

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-producer",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
	})
	return &Producer{writer: w, breaker: cb}
}

func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) State() gobreaker.State {
	return p.breaker.State()
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
