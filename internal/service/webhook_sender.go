package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const webhookMaxRetries = 3

// WebhookSender drains the emergency dispatch queue and posts each approved incident to the
// emergency-services endpoint.
type WebhookSender struct {
	logger  *slog.Logger
	cfg     config.WebhookConfig
	queue   EmergencyQueue
	http    *http.Client
	backoff time.Duration
}

func NewWebhookSender(logger *slog.Logger, cfg config.WebhookConfig, q EmergencyQueue) *WebhookSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSender{
		logger:  logger,
		cfg:     cfg,
		queue:   q,
		http:    &http.Client{Timeout: timeout},
		backoff: time.Second,
	}
}

func (s *WebhookSender) Run(ctx context.Context) {
	s.logger.Info("emergency webhook sender started", slog.String("url", s.cfg.URL))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("emergency webhook sender stopped", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		payload, err := s.queue.BRPop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrEmergencyQueueEmpty) || ctx.Err() != nil {
				continue
			}
			s.logger.Error("emergency queue pop failed", slog.Any("error", err))
			time.Sleep(500 * time.Millisecond)
			continue
		}

		s.logger.Info("sending emergency dispatch", slog.String("incident_id", payload.IncidentID.String()))
		if err := s.sendWithRetry(ctx, payload); err != nil {
			s.logger.Error("emergency dispatch dropped",
				slog.String("incident_id", payload.IncidentID.String()),
				slog.Any("error", err),
			)
		}
	}
}

func (s *WebhookSender) sendWithRetry(ctx context.Context, p domain.EmergencyDispatch) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal emergency dispatch: %w", err)
	}

	var fatal error
	err = retry.Do(
		func() error {
			reason, err := s.post(ctx, body)
			if err != nil {
				fatal = err
				return retry.Unrecoverable(err)
			}
			if reason != "" {
				return errors.New(reason)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(webhookMaxRetries),
		retry.Delay(s.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("emergency webhook failed",
				slog.Uint64("attempt", uint64(n+1)),
				slog.String("url", s.cfg.URL),
				slog.String("reason", err.Error()),
			)
		}),
	)
	switch {
	case err == nil:
		return nil
	case fatal != nil:
		return fatal
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %s", e.ErrUpstreamUnavailable, err.Error())
	}
}

// post returns a non-empty reason for a retryable failure and an error for a request that can never succeed.
func (s *WebhookSender) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err.Error(), nil
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return "", nil
	}
	return resp.Status, nil
}
