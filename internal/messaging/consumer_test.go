package messaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type fakeAck struct {
	mu     sync.Mutex
	acked  int
	nacked int
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *fakeAck) Nack(uint64, bool, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	return nil
}

func (a *fakeAck) Reject(uint64, bool) error { return nil }

type fakeSource struct {
	ch chan amqp.Delivery
}

func (s *fakeSource) ConsumeQueue(string) (<-chan amqp.Delivery, error) { return s.ch, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestConsumer() *Consumer {
	c := NewConsumer(testLogger(), &fakeSource{})
	c.delay = time.Millisecond
	return c
}

func TestConsumer_Process_AckOnSuccess(t *testing.T) {
	t.Parallel()

	c := newTestConsumer()
	ack := &fakeAck{}

	c.process(context.Background(), c.logger, amqp.Delivery{Acknowledger: ack, Body: []byte("{}")}, func(context.Context, []byte) error {
		return nil
	})

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
}

func TestConsumer_Process_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	c := newTestConsumer()
	ack := &fakeAck{}
	calls := 0

	c.process(context.Background(), c.logger, amqp.Delivery{Acknowledger: ack}, func(context.Context, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("db down")
		}
		return nil
	})

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, ack.acked)
}

func TestConsumer_Process_PermanentErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	c := newTestConsumer()
	ack := &fakeAck{}
	calls := 0

	c.process(context.Background(), c.logger, amqp.Delivery{Acknowledger: ack}, func(context.Context, []byte) error {
		calls++
		return e.ErrNotFound
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, 0, ack.acked)
}

func TestConsumer_Process_ExhaustedRetriesDeadLetter(t *testing.T) {
	t.Parallel()

	c := newTestConsumer()
	ack := &fakeAck{}
	calls := 0

	c.process(context.Background(), c.logger, amqp.Delivery{Acknowledger: ack}, func(context.Context, []byte) error {
		calls++
		return errors.New("still down")
	})

	assert.Equal(t, maxRetryAttempts, calls)
	assert.Equal(t, 1, ack.nacked)
}

func TestConsumer_Process_ReviewedIncidentDeadLettersAtOnce(t *testing.T) {
	t.Parallel()

	c := newTestConsumer()
	ack := &fakeAck{}
	calls := 0

	c.process(context.Background(), c.logger, amqp.Delivery{Acknowledger: ack}, func(context.Context, []byte) error {
		calls++
		return fmt.Errorf("postgres.Incident.MergeClassification: %w", e.ErrAlreadyReviewed)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, 0, ack.acked)
}

func TestClassificationHandler(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var got domain.ClassificationResult
	h := ClassificationHandler(func(_ context.Context, res domain.ClassificationResult) error {
		got = res
		return nil
	})

	body := []byte(`{"incident_id":"` + id.String() + `","is_emergency":true,"primary_service":"Ambulance","confidence":"High"}`)
	require.NoError(t, h(context.Background(), body))
	assert.Equal(t, id, got.IncidentID)
	assert.True(t, got.IsEmergency)
	require.NotNil(t, got.PrimaryService)
	assert.Equal(t, domain.ServiceAmbulance, *got.PrimaryService)

	err := h(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestConsumer_Run_StopsOnCancel(t *testing.T) {
	t.Parallel()

	src := &fakeSource{ch: make(chan amqp.Delivery, 1)}
	c := NewConsumer(testLogger(), src)
	ack := &fakeAck{}

	handled := make(chan struct{}, 1)
	c.Handle(QueueSOSClassified, func(context.Context, []byte) error {
		handled <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	src.ch <- amqp.Delivery{Acknowledger: ack, Body: []byte("{}")}

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("message was not handled")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
