package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type ClassificationIntake struct {
	logger    *slog.Logger
	incidents IncidentRepository
	now       func() time.Time
}

func NewClassificationService(logger *slog.Logger, incidents IncidentRepository) *ClassificationIntake {
	return &ClassificationIntake{logger: logger, incidents: incidents, now: time.Now}
}

// Apply merges an advisory classification into the incident. Review state, priority and
// category are left untouched.
func (s *ClassificationIntake) Apply(ctx context.Context, res domain.ClassificationResult) error {
	const op = "service.ClassificationIntake.Apply"

	if res.IncidentID == uuid.Nil {
		return e.Validation(op, fmt.Errorf("incident_id is required"))
	}
	if err := res.Classification.Validate(); err != nil {
		return e.Validation(op, err)
	}
	if res.ClassifiedAt.IsZero() {
		res.ClassifiedAt = s.now().UTC()
	}

	if err := s.incidents.MergeClassification(ctx, res.IncidentID, res.Classification); err != nil {
		return err
	}

	attrs := []any{
		slog.String("op", op),
		slog.String("incident_id", res.IncidentID.String()),
		slog.Bool("is_emergency", res.IsEmergency),
	}
	if res.PrimaryService != nil {
		attrs = append(attrs, slog.String("primary_service", string(*res.PrimaryService)))
	}
	s.logger.Info("classification applied", attrs...)
	return nil
}
