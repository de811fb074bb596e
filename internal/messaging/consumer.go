package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const (
	maxRetryAttempts = 3
	initialDelay     = 1 * time.Second
	maxDelay         = 30 * time.Second
)

// Handler processes one message body. Errors wrapping e.ErrInvalidInput or e.ErrNotFound are
// final and go straight to the dead-letter queue; anything else is retried with backoff.
type Handler func(ctx context.Context, body []byte) error

type Source interface {
	ConsumeQueue(queueName string) (<-chan amqp.Delivery, error)
}

type Consumer struct {
	logger   *slog.Logger
	source   Source
	handlers map[string]Handler
	delay    time.Duration
	wg       sync.WaitGroup
}

func NewConsumer(logger *slog.Logger, source Source) *Consumer {
	return &Consumer{
		logger:   logger,
		source:   source,
		handlers: make(map[string]Handler),
		delay:    initialDelay,
	}
}

func (c *Consumer) Handle(queueName string, h Handler) {
	c.handlers[queueName] = h
}

// Run consumes every registered queue until ctx is done, then waits for in-flight messages.
func (c *Consumer) Run(ctx context.Context) {
	for queue, h := range c.handlers {
		c.wg.Add(1)
		go c.consumeQueue(ctx, queue, h)
	}
	c.logger.Info("consumers started", slog.Int("queues", len(c.handlers)))

	<-ctx.Done()
	c.wg.Wait()
	c.logger.Info("consumers stopped")
}

func (c *Consumer) consumeQueue(ctx context.Context, queue string, h Handler) {
	defer c.wg.Done()
	l := c.logger.With(slog.String("queue", queue))

	for {
		if ctx.Err() != nil {
			return
		}

		msgs, err := c.source.ConsumeQueue(queue)
		if err != nil {
			l.Warn("consume failed, retrying", slog.Any("error", err), slog.Duration("in", reconnectDelay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		l.Info("listening for messages")
		c.processQueue(ctx, l, msgs, h)
	}
}

func (c *Consumer) processQueue(ctx context.Context, l *slog.Logger, msgs <-chan amqp.Delivery, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				l.Warn("delivery channel closed, reconnecting")
				return
			}
			c.process(ctx, l, msg, h)
		}
	}
}

func (c *Consumer) process(ctx context.Context, l *slog.Logger, msg amqp.Delivery, h Handler) {
	err := retry.Do(
		func() error {
			err := h(ctx, msg.Body)
			if err != nil && permanent(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts),
		retry.Delay(c.delay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.Warn("handler retry", slog.Uint64("attempt", uint64(n+1)), slog.Any("error", err))
		}),
	)

	if err != nil {
		l.Error("message failed, dead-lettering", slog.String("message_id", msg.MessageId), slog.Any("error", err))
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}

func permanent(err error) bool {
	return errors.Is(err, e.ErrInvalidInput) ||
		errors.Is(err, e.ErrNotFound) ||
		errors.Is(err, e.ErrAlreadyReviewed)
}

// ClassificationHandler applies sos.classified results through apply.
func ClassificationHandler(apply func(context.Context, domain.ClassificationResult) error) Handler {
	return func(ctx context.Context, body []byte) error {
		var res domain.ClassificationResult
		if err := json.Unmarshal(body, &res); err != nil {
			return fmt.Errorf("decode classification: %w: %s", e.ErrInvalidInput, err.Error())
		}
		return apply(ctx, res)
	}
}
