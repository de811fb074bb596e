// Package push delivers alerts as Firebase Cloud Messaging notifications.
package push

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify"
)

// FCM accepts at most 500 messages per SendEach call.
const maxBatch = 500

// Messenger is the subset of *messaging.Client the adapter uses.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

type FCM struct {
	client Messenger
	logger *slog.Logger
}

func New(client Messenger, logger *slog.Logger) *FCM {
	return &FCM{client: client, logger: logger}
}

func NewFromCredentials(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCM, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("push.NewFromCredentials: firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push.NewFromCredentials: messaging client: %w", err)
	}
	return New(client, logger), nil
}

func (f *FCM) Channel() domain.Channel { return domain.ChannelPush }

func (f *FCM) Send(ctx context.Context, to string, p notify.Payload) (notify.Result, error) {
	env := notify.Envelope{To: to, Payload: p}
	if err := env.Validate(); err != nil {
		return notify.Result{}, err
	}

	id, err := f.client.Send(ctx, toMessage(env))
	if err != nil {
		f.logger.Warn("fcm send failed", slog.String("reason", describe(err)))
		return notify.Failed(describe(err)), nil
	}
	return notify.Result{Success: true, ProviderMessageID: id}, nil
}

func (f *FCM) SendBatch(ctx context.Context, envs []notify.Envelope) ([]notify.Result, error) {
	for i := range envs {
		if err := envs[i].Validate(); err != nil {
			return nil, fmt.Errorf("envelope %d: %w", i, err)
		}
	}

	results := make([]notify.Result, len(envs))
	for start := 0; start < len(envs); start += maxBatch {
		end := start + maxBatch
		if end > len(envs) {
			end = len(envs)
		}

		msgs := make([]*messaging.Message, 0, end-start)
		for _, env := range envs[start:end] {
			msgs = append(msgs, toMessage(env))
		}

		resp, err := f.client.SendEach(ctx, msgs)
		if err != nil {
			f.logger.Warn("fcm batch failed",
				slog.Int("size", len(msgs)),
				slog.String("reason", describe(err)),
			)
			copy(results[start:end], notify.FailAll(end-start, describe(err)))
			continue
		}

		for i := start; i < end; i++ {
			idx := i - start
			if resp == nil || idx >= len(resp.Responses) || resp.Responses[idx] == nil {
				results[i] = notify.Failed("missing response")
				continue
			}
			r := resp.Responses[idx]
			if r.Success {
				results[i] = notify.Result{Success: true, ProviderMessageID: r.MessageID}
			} else {
				results[i] = notify.Failed(describe(r.Error))
			}
		}
	}

	return results, nil
}

func toMessage(env notify.Envelope) *messaging.Message {
	return &messaging.Message{
		Token: env.To,
		Notification: &messaging.Notification{
			Title: env.Payload.Title,
			Body:  env.Payload.Body,
		},
		Data: env.Payload.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
		},
	}
}

func describe(err error) string {
	switch {
	case err == nil:
		return "unknown error"
	case messaging.IsUnregistered(err):
		return "push token unregistered"
	case messaging.IsInvalidArgument(err):
		return "invalid push token or payload"
	case messaging.IsQuotaExceeded(err):
		return "push quota exceeded"
	case messaging.IsUnavailable(err):
		return "push service unavailable"
	default:
		return err.Error()
	}
}
