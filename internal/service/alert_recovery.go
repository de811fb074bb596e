package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const recoveryBatch = 20

// AlertRecovery finishes alerts that stayed in the sending state, e.g. when the process died
// mid fan-out, and records the incident's alert outcome if the review never got to it.
type AlertRecovery struct {
	logger     *slog.Logger
	incidents  IncidentRepository
	alerts     AlertRepository
	resumer    AlertResumer
	staleAfter time.Duration
	interval   time.Duration
	now        func() time.Time
}

func NewAlertRecovery(
	logger *slog.Logger,
	incidents IncidentRepository,
	alerts AlertRepository,
	resumer AlertResumer,
	staleAfter time.Duration,
	interval time.Duration,
) *AlertRecovery {
	return &AlertRecovery{
		logger:     logger,
		incidents:  incidents,
		alerts:     alerts,
		resumer:    resumer,
		staleAfter: staleAfter,
		interval:   interval,
		now:        time.Now,
	}
}

func (r *AlertRecovery) Run(ctx context.Context) {
	r.logger.Info("alert recovery started",
		slog.Duration("stale_after", r.staleAfter),
		slog.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RecoverOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("alert recovery pass failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			r.logger.Info("alert recovery stopped")
			return
		case <-ticker.C:
		}
	}
}

// RecoverOnce resumes up to one batch of stale alerts and returns how many were completed.
func (r *AlertRecovery) RecoverOnce(ctx context.Context) (int, error) {
	const op = "service.AlertRecovery.RecoverOnce"

	stale, err := r.alerts.ListStale(ctx, r.now().Add(-r.staleAfter).UTC(), recoveryBatch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, upstream(err))
	}

	done := 0
	for _, a := range stale {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}

		l := r.logger.With(
			slog.String("op", op),
			slog.String("alert_id", a.ID.String()),
			slog.String("incident_id", a.IncidentID.String()),
		)

		inc, err := r.incidents.Get(ctx, a.IncidentID)
		if err != nil {
			l.Error("load incident failed", slog.Any("error", err))
			continue
		}

		summary, err := r.resumer.Resume(ctx, inc, a)
		if err != nil {
			l.Error("resume alert failed", slog.Any("error", err))
			continue
		}
		done++

		r.recordOutcome(ctx, l, inc, summary)
	}

	if done > 0 {
		r.logger.Info("stale alerts recovered", slog.Int("count", done), slog.Int("found", len(stale)))
	}
	return done, nil
}

func (r *AlertRecovery) recordOutcome(ctx context.Context, l *slog.Logger, inc *domain.Incident, summary domain.DispatchSummary) {
	if inc.AlertOutcome != nil {
		return
	}
	err := r.incidents.SetAlertOutcome(ctx, inc.ID, outcomeOf(summary, nil))
	switch {
	case err == nil:
		l.Info("alert outcome recorded", slog.Int("recipient_count", summary.RecipientCount))
	case errors.Is(err, e.ErrConflict):
		// the review finished writing it meanwhile
	default:
		l.Error("store alert outcome failed", slog.Any("error", err))
	}
}
