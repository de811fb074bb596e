package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type Classifier interface {
	Classify(ctx context.Context, ev domain.SOSCreated) (domain.Classification, error)
}

type ClassifiedPublisher interface {
	PublishClassified(ctx context.Context, res domain.ClassificationResult) error
}

// ClassifyWorker turns sos.created events into sos.classified results.
type ClassifyWorker struct {
	logger     *slog.Logger
	classifier Classifier
	publisher  ClassifiedPublisher
	timeout    time.Duration
}

func NewClassifyWorker(logger *slog.Logger, classifier Classifier, publisher ClassifiedPublisher, timeout time.Duration) *ClassifyWorker {
	return &ClassifyWorker{
		logger:     logger,
		classifier: classifier,
		publisher:  publisher,
		timeout:    timeout,
	}
}

func (w *ClassifyWorker) Handle(ctx context.Context, body []byte) error {
	const op = "workers.ClassifyWorker.Handle"

	var ev domain.SOSCreated
	if err := json.Unmarshal(body, &ev); err != nil {
		return e.Validation(op, err)
	}
	if ev.IncidentID == uuid.Nil {
		return e.Validation(op, fmt.Errorf("incident_id is required"))
	}

	l := w.logger.With(slog.String("op", op), slog.String("incident_id", ev.IncidentID.String()))

	callCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	c, err := w.classifier.Classify(callCtx, ev)
	if err != nil {
		l.Warn("classification failed", slog.Any("error", err))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w: %s", op, e.ErrUpstreamUnavailable, err.Error())
		}
		return e.Wrap(op, err)
	}
	if err := c.Validate(); err != nil {
		l.Warn("classifier returned invalid result", slog.Any("error", err))
		return e.Validation(op, err)
	}

	if err := w.publisher.PublishClassified(ctx, domain.ClassificationResult{IncidentID: ev.IncidentID, Classification: c}); err != nil {
		return e.Wrap(op, err)
	}

	l.Info("incident classified", slog.Bool("is_emergency", c.IsEmergency))
	return nil
}
