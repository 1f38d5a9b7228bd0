package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"cheflink/internal/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducerPublishesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "cheflink-orders", 8)
	p.Start()

	ctx := logger.WithRequestID(context.Background(), "req-123")
	p.Publish(ctx, "OrderCreated", "ORD-20250301-0001", map[string]string{"id": "ORD-20250301-0001"})
	p.Publish(ctx, "SomethingElse", "ORD-20250301-0001", nil)
	p.Close()

	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)

	msg := w.msgs[0]
	assert.Equal(t, TopicOrderCreated, msg.Topic)
	assert.Equal(t, "ORD-20250301-0001", string(msg.Key))
	assert.Equal(t, "x-event-type", msg.Headers[0].Key)
	assert.Equal(t, "OrderCreated", string(msg.Headers[0].Value))

	var ev Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "OrderCreated", ev.EventType)
	assert.Equal(t, 1, ev.EventVersion)
	assert.Equal(t, "cheflink-orders", ev.Producer)
	assert.Equal(t, "req-123", ev.TraceID)
	assert.Equal(t, "ORD-20250301-0001", ev.CorrelationID)
	assert.NotEmpty(t, ev.EventID)
	assert.JSONEq(t, `{"id":"ORD-20250301-0001"}`, string(ev.Payload))
}

func TestProducerSurvivesWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newProducer(w, "cheflink-orders", 8)
	p.Start()

	p.Publish(context.Background(), "OrderDeleted", "ORD-20250301-0001", struct{}{})
	p.Publish(context.Background(), "OrderUpdated", "ORD-20250301-0002", struct{}{})
	p.Close()
	p.Close()

	assert.Len(t, w.msgs, 2)
}

func TestProducerDropsWhenBufferFull(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "cheflink-orders", 1)

	// Not started yet, so the single slot fills and the second event is dropped.
	p.Publish(context.Background(), "OrderCreated", "ORD-20250301-0001", struct{}{})
	p.Publish(context.Background(), "OrderCreated", "ORD-20250301-0002", struct{}{})

	p.Start()
	p.Close()
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "ORD-20250301-0001", string(w.msgs[0].Key))
}

func TestTopicFor(t *testing.T) {
	topic, ok := TopicFor("OrderPaymentStatusChanged")
	assert.True(t, ok)
	assert.Equal(t, TopicOrderPaymentChange, topic)

	_, ok = TopicFor("Unknown")
	assert.False(t, ok)
}

func TestProducerDropsEventsAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "cheflink-orders", 8)
	p.Start()
	p.Close()

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), "OrderCreated", "ORD-20250301-0001", struct{}{})
	})
	assert.Empty(t, w.msgs)
}

func TestProducerCloseRacesWithPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "cheflink-orders", 64)
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Publish(context.Background(), "OrderUpdated", "ORD-20250301-0001", struct{}{})
			}
		}()
	}
	p.Close()
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.LessOrEqual(t, len(w.msgs), 8*50)
}
