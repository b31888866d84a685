// Package kafka publishes memory events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
)

// Config configures the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap brokers.
	Brokers []string

	// Topic receives every memory event.
	Topic string

	// WriteTimeout bounds a single publish. Defaults to 10s.
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes events keyed by user id so that a user's events stay
// ordered within one partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewPublisher creates a Kafka publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, cfg.WriteTimeout), nil
}

func newPublisher(w messageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{writer: w, timeout: timeout}
}

// PublishMemory implements eventstream.Publisher.
func (p *Publisher) PublishMemory(ctx context.Context, event *eventstream.MemoryEvent) error {
	if event == nil {
		return eventstream.ErrNilMemoryEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding memory event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
		Time: event.EmittedAt,
	})
	if err != nil {
		return fmt.Errorf("writing memory event: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
