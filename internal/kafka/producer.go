package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"cheflink/internal/logger"
	"cheflink/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events asynchronously. Publish never blocks on the
// broker: when the buffer is full the event is dropped and logged.
type Producer struct {
	w       messageWriter
	service string
	inbox   chan kafka.Message

	// mu guards closed and sends on inbox against Close.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewProducer(brokers []string, service string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}, service, buf)
}

func newProducer(w messageWriter, service string, buf int) *Producer {
	return &Producer{
		w:       w,
		service: service,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				log.Error().Err(err).Str("topic", m.Topic).Str("order_id", string(m.Key)).Msg("failed to publish order event")
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka writer")
		}
	}()
}

func (p *Producer) Publish(ctx context.Context, eventType, orderID string, payload any) {
	topic, ok := TopicFor(eventType)
	if !ok {
		log.Warn().Str("event_type", eventType).Msg("no topic for event type")
		return
	}

	ev, err := NewEnvelope(p.service, eventType, orderID, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to encode order event")
		return
	}
	ev.TraceID = logger.RequestID(ctx)
	value, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to encode order event")
		return
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(orderID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Warn().Str("event_type", eventType).Str("order_id", orderID).Msg("producer closed, dropping order event")
		return
	}

	select {
	case p.inbox <- msg:
	default:
		log.Warn().Str("event_type", eventType).Str("order_id", orderID).Msg("event buffer full, dropping order event")
	}
}

// Close stops accepting events and waits until the buffered ones are flushed.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
}

var _ services.EventPublisher = (*Producer)(nil)
