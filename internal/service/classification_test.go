package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func TestClassificationApply_MergesWithoutTouchingReview(t *testing.T) {
	t.Parallel()

	inc := pendingIncident(uuid.New())
	store := newMemIncidents(inc)
	svc := service.NewClassificationService(newTestLogger(), store)

	fire := domain.ServiceFireBrigade
	high := domain.ConfidenceHigh
	err := svc.Apply(context.Background(), domain.ClassificationResult{
		IncidentID: inc.ID,
		Classification: domain.Classification{
			IsEmergency:    true,
			PrimaryService: &fire,
			Confidence:     &high,
			Reason:         "visible flames",
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, _ := store.Get(context.Background(), inc.ID)
	if got.Classification == nil || *got.Classification.PrimaryService != fire {
		t.Fatalf("classification not stored: %+v", got.Classification)
	}
	if got.Classification.ClassifiedAt.IsZero() {
		t.Fatalf("classified_at must default to now")
	}
	if got.Status != domain.StatusPending || got.Priority != domain.PriorityHigh || got.Category != domain.CategoryFire {
		t.Fatalf("review state or tags changed: %+v", got)
	}
}

func TestClassificationApply_ReviewedIncidentUnchanged(t *testing.T) {
	t.Parallel()

	inc := pendingIncident(uuid.New())
	inc.Status = domain.StatusApproved
	store := newMemIncidents(inc)
	svc := service.NewClassificationService(newTestLogger(), store)

	err := svc.Apply(context.Background(), domain.ClassificationResult{
		IncidentID:     inc.ID,
		Classification: domain.Classification{IsEmergency: false, Reason: "arrived after approval"},
	})
	if !errors.Is(err, e.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	got, _ := store.Get(context.Background(), inc.ID)
	if got.Classification != nil {
		t.Fatalf("classification written after review: %+v", got.Classification)
	}
}

func TestClassificationApply_Errors(t *testing.T) {
	t.Parallel()

	police := domain.ServicePolice
	svc := service.NewClassificationService(newTestLogger(), newMemIncidents())

	err := svc.Apply(context.Background(), domain.ClassificationResult{
		IncidentID:     uuid.New(),
		Classification: domain.Classification{IsEmergency: false, PrimaryService: &police},
	})
	if !errors.Is(err, e.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	err = svc.Apply(context.Background(), domain.ClassificationResult{Classification: domain.Classification{}})
	if !errors.Is(err, e.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing id, got %v", err)
	}

	err = svc.Apply(context.Background(), domain.ClassificationResult{IncidentID: uuid.New()})
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
