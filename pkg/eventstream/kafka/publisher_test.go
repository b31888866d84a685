package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
	"github.com/jasonzFong/aura-editor/pkg/journal"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		w *recordingWriter
		p *Publisher
	)

	BeforeEach(func() {
		w = &recordingWriter{}
		p = newPublisher(w, 0)
	})

	It("keys messages by user and encodes the event as JSON", func() {
		fact := &journal.Fact{ID: "f1", UserID: "u1", Key: "pet_cat"}
		event := eventstream.NewMemoryEvent(eventstream.EventTypeMemoryCreated, journal.ProvenanceSystem, fact, time.Now())

		Expect(p.PublishMemory(context.Background(), event)).To(Succeed())
		Expect(w.msgs).To(HaveLen(1))
		Expect(string(w.msgs[0].Key)).To(Equal("u1"))
		Expect(w.msgs[0].Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte("aura.memory.created")}))

		var decoded eventstream.MemoryEvent
		Expect(json.Unmarshal(w.msgs[0].Value, &decoded)).To(Succeed())
		Expect(decoded.Fact.Key).To(Equal("pet_cat"))
	})

	It("rejects nil events", func() {
		Expect(p.PublishMemory(context.Background(), nil)).To(MatchError(eventstream.ErrNilMemoryEvent))
	})

	It("wraps writer errors", func() {
		w.err = errors.New("leader not available")
		err := p.PublishMemory(context.Background(), &eventstream.MemoryEvent{UserID: "u1"})
		Expect(err).To(MatchError(ContainSubstring("leader not available")))
	})

	It("closes the writer", func() {
		Expect(p.Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})

	It("validates config", func() {
		_, err := NewPublisher(Config{Topic: "aura.memory"})
		Expect(err).To(HaveOccurred())
		_, err = NewPublisher(Config{Brokers: []string{"localhost:9092"}})
		Expect(err).To(HaveOccurred())
	})

	It("parses comma separated brokers", func() {
		Expect(ParseBrokers(" a:9092, ,b:9092 ")).To(Equal([]string{"a:9092", "b:9092"}))
	})
})
