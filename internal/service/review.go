package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const maxAdminNotes = 1000

type ReviewWorkflow struct {
	logger     *slog.Logger
	incidents  IncidentRepository
	dispatcher AlertDispatcher
	emergency  EmergencyQueue
	stats      StatsCache
	now        func() time.Time
}

func NewReviewWorkflow(
	logger *slog.Logger,
	incidents IncidentRepository,
	dispatcher AlertDispatcher,
	emergency EmergencyQueue,
	stats StatsCache,
) *ReviewWorkflow {
	return &ReviewWorkflow{
		logger:     logger,
		incidents:  incidents,
		dispatcher: dispatcher,
		emergency:  emergency,
		stats:      stats,
		now:        time.Now,
	}
}

// SubmitReview moves a pending incident to approved or rejected. The transition is a single
// conditional update, so of two concurrent reviewers exactly one wins and the other gets
// e.ErrAlreadyReviewed. An approval triggers the alert fan-out; its outcome is recorded on the
// incident and never rolls the review back.
func (w *ReviewWorkflow) SubmitReview(ctx context.Context, id, reviewerID uuid.UUID, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	const op = "service.ReviewWorkflow.SubmitReview"

	if !req.Decision.IsDecision() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidDecision)
	}
	if utf8.RuneCountInString(req.AdminNotes) > maxAdminNotes {
		return nil, e.Validation(op, fmt.Errorf("adminNotes must be at most %d characters", maxAdminNotes))
	}

	inc, err := w.incidents.Review(ctx, id, domain.Review{
		ReviewerID: reviewerID,
		ReviewedAt: w.now().UTC(),
		Decision:   req.Decision,
		Notes:      req.AdminNotes,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l := w.logger.With(slog.String("op", op), slog.String("incident_id", id.String()))
	l.Info("incident reviewed", slog.String("decision", string(req.Decision)), slog.String("reviewer_id", reviewerID.String()))

	w.invalidateStats(ctx)

	result := &domain.ReviewResult{Incident: inc}
	if req.Decision != domain.StatusApproved {
		return result, nil
	}

	// the fan-out must finish even if the admin's request goes away
	dispatchCtx := context.WithoutCancel(ctx)

	summary, dispatchErr := w.dispatcher.DispatchAlert(dispatchCtx, inc)
	outcome := outcomeOf(summary, dispatchErr)
	if dispatchErr != nil {
		if errors.Is(dispatchErr, e.ErrNoRecipients) {
			l.Info("approved without recipients")
		} else {
			l.Error("alert dispatch failed", slog.Any("error", dispatchErr))
		}
	} else {
		result.Alert = &summary
	}

	if err := w.incidents.SetAlertOutcome(dispatchCtx, inc.ID, outcome); err != nil {
		l.Error("store alert outcome failed", slog.Any("error", err))
	}
	inc.AlertOutcome = &outcome

	w.notifyEmergencyServices(dispatchCtx, l, inc, outcome)

	return result, nil
}

func outcomeOf(summary domain.DispatchSummary, err error) domain.AlertOutcome {
	out := domain.AlertOutcome{Attempted: true}
	if err != nil {
		msg := err.Error()
		if errors.Is(err, e.ErrNoRecipients) {
			msg = e.ErrNoRecipients.Error()
		}
		out.Error = &msg
		return out
	}
	id := summary.AlertID
	out.AlertID = &id
	out.RecipientCount = summary.RecipientCount
	return out
}

func (w *ReviewWorkflow) notifyEmergencyServices(ctx context.Context, l *slog.Logger, inc *domain.Incident, outcome domain.AlertOutcome) {
	if w.emergency == nil {
		return
	}
	p := domain.EmergencyDispatch{
		IncidentID:     inc.ID,
		AlertID:        outcome.AlertID,
		Category:       inc.Category,
		Priority:       inc.Priority,
		Lat:            inc.Location.Latitude,
		Lng:            inc.Location.Longitude,
		Address:        inc.Location.Address,
		Message:        inc.Message,
		VideoURL:       inc.VideoURL,
		RecipientCount: outcome.RecipientCount,
		ApprovedAt:     w.now().UTC(),
	}
	if inc.Review != nil {
		p.ApprovedAt = inc.Review.ReviewedAt
	}
	if inc.Classification != nil {
		p.PrimaryService = inc.Classification.PrimaryService
	}
	if err := w.emergency.Enqueue(ctx, p); err != nil {
		l.Warn("enqueue emergency dispatch failed", slog.Any("error", err))
	}
}

func (w *ReviewWorkflow) invalidateStats(ctx context.Context) {
	if w.stats == nil {
		return
	}
	if err := w.stats.Invalidate(ctx); err != nil {
		w.logger.Warn("stats cache invalidate failed", slog.Any("error", err))
	}
}
