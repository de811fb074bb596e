package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

const (
	ExchangeName    = "sos.events"
	DLXExchangeName = "sos.events.dlx"

	QueueSOSCreated    = "queue.sos_created"
	QueueSOSClassified = "queue.sos_classified"

	QueueSOSCreatedDLQ    = "queue.sos_created.dlq"
	QueueSOSClassifiedDLQ = "queue.sos_classified.dlq"

	RoutingKeySOSCreated    = "sos.created"
	RoutingKeySOSClassified = "sos.classified"

	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
	prefetchCount  = 10
)

var ErrChannelUnavailable = errors.New("rabbitmq channel not available")

type QueueConfig struct {
	QueueName     string
	RoutingKey    string
	DLQName       string
	DLQRoutingKey string
}

var QueueConfigs = []QueueConfig{
	{
		QueueName:     QueueSOSCreated,
		RoutingKey:    RoutingKeySOSCreated,
		DLQName:       QueueSOSCreatedDLQ,
		DLQRoutingKey: "dlq.sos_created",
	},
	{
		QueueName:     QueueSOSClassified,
		RoutingKey:    RoutingKeySOSClassified,
		DLQName:       QueueSOSClassifiedDLQ,
		DLQRoutingKey: "dlq.sos_classified",
	},
}

type RabbitMQ struct {
	logger  *slog.Logger
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRabbitMQ(url string, logger *slog.Logger) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		logger: logger,
		url:    url,
		done:   make(chan struct{}),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	go rmq.handleReconnect()

	return rmq, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	r.conn, r.channel = conn, ch
	r.logger.Info("rabbitmq connected", slog.String("exchange", ExchangeName))
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	for _, name := range []string{ExchangeName, DLXExchangeName} {
		err := ch.ExchangeDeclare(
			name,
			"topic",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("exchange declare %s: %w", name, err)
		}
	}

	for _, qc := range QueueConfigs {
		_, err := ch.QueueDeclare(
			qc.DLQName,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			amqp.Table{"x-message-ttl": int64(7 * 24 * time.Hour / time.Millisecond)},
		)
		if err != nil {
			return fmt.Errorf("dlq declare %s: %w", qc.DLQName, err)
		}
		if err := ch.QueueBind(qc.DLQName, qc.DLQRoutingKey, DLXExchangeName, false, nil); err != nil {
			return fmt.Errorf("dlq bind %s: %w", qc.DLQName, err)
		}

		_, err = ch.QueueDeclare(
			qc.QueueName,
			true,
			false,
			false,
			false,
			amqp.Table{
				"x-dead-letter-exchange":    DLXExchangeName,
				"x-dead-letter-routing-key": qc.DLQRoutingKey,
			},
		)
		if err != nil {
			return fmt.Errorf("queue declare %s: %w", qc.QueueName, err)
		}
		if err := ch.QueueBind(qc.QueueName, qc.RoutingKey, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %s->%s: %w", qc.QueueName, qc.RoutingKey, err)
		}
	}
	return nil
}

func (r *RabbitMQ) handleReconnect() {
	for {
		r.mu.RLock()
		closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
		r.mu.RUnlock()

		select {
		case <-r.done:
			return
		case err := <-closed:
			if err != nil {
				r.logger.Warn("rabbitmq disconnected", slog.String("reason", err.Error()))
			}
		}

		r.mu.Lock()
		for {
			select {
			case <-r.done:
				r.mu.Unlock()
				return
			default:
			}
			if err := r.connect(); err != nil {
				r.logger.Error("rabbitmq reconnect failed", slog.Any("error", err))
				time.Sleep(reconnectDelay)
				continue
			}
			break
		}
		r.mu.Unlock()
	}
}

func (r *RabbitMQ) publish(ctx context.Context, routingKey string, message any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.channel == nil {
		return ErrChannelUnavailable
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	r.logger.Debug("event published", slog.String("routing_key", routingKey))
	return nil
}

func (r *RabbitMQ) PublishSOSCreated(ctx context.Context, ev domain.SOSCreated) error {
	return r.publish(ctx, RoutingKeySOSCreated, ev)
}

func (r *RabbitMQ) PublishClassified(ctx context.Context, res domain.ClassificationResult) error {
	return r.publish(ctx, RoutingKeySOSClassified, res)
}

func (r *RabbitMQ) ConsumeQueue(queueName string) (<-chan amqp.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.channel == nil {
		return nil, ErrChannelUnavailable
	}

	msgs, err := r.channel.Consume(
		queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queueName, err)
	}
	return msgs, nil
}

func (r *RabbitMQ) Close() error {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
