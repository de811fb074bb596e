package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go
type IncidentRepository interface {
	Create(ctx context.Context, inc *domain.Incident) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	List(ctx context.Context, req domain.ListSOSRequest) ([]*domain.Incident, int64, error)
	Pending(ctx context.Context, limit int) ([]*domain.Incident, error)
	// Review applies the decision only while the incident is pending.
	// Returns e.ErrNotFound or e.ErrAlreadyReviewed when nothing was updated.
	Review(ctx context.Context, id uuid.UUID, review domain.Review) (*domain.Incident, error)
	SetAlertOutcome(ctx context.Context, id uuid.UUID, outcome domain.AlertOutcome) error
	// MergeClassification only touches pending incidents; otherwise e.ErrAlreadyReviewed.
	MergeClassification(ctx context.Context, id uuid.UUID, c domain.Classification) error
}

type RecipientRepository interface {
	// FindEligible returns active users within radiusM that have a push token or phone, excluding exclude.
	FindEligible(ctx context.Context, lat, lng, radiusM float64, exclude uuid.UUID) ([]domain.Recipient, error)
	FindInRadius(ctx context.Context, lat, lng, radiusM float64) ([]domain.Recipient, error)
	// FindByIDs reloads active users from an alert's recipient snapshot.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Recipient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type AlertRepository interface {
	Create(ctx context.Context, a *domain.Alert) error
	Complete(ctx context.Context, id uuid.UUID, status domain.AlertStatus, counts domain.DeliveryCounts, recipientCount int) error
	// ListStale returns alerts still sending that were dispatched before the given instant, oldest first.
	ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.Alert, error)
}

type StatsRepository interface {
	Stats(ctx context.Context, since time.Time) (*domain.SOSStats, error)
}

type StatsCache interface {
	Get(ctx context.Context, tf domain.Timeframe) (*domain.SOSStats, error)
	Set(ctx context.Context, tf domain.Timeframe, stats *domain.SOSStats) error
	Invalidate(ctx context.Context) error
}

// DeliveryLedger records (incident, recipient, channel) sends so a delivery is attempted at most once.
type DeliveryLedger interface {
	Claim(ctx context.Context, incidentID, recipientID uuid.UUID, ch domain.Channel) (bool, error)
	Release(ctx context.Context, incidentID, recipientID uuid.UUID, ch domain.Channel) error
}

type EmergencyQueue interface {
	Enqueue(ctx context.Context, p domain.EmergencyDispatch) error
	BRPop(ctx context.Context, timeout time.Duration) (domain.EmergencyDispatch, error)
}

type EventPublisher interface {
	PublishSOSCreated(ctx context.Context, ev domain.SOSCreated) error
	PublishClassified(ctx context.Context, res domain.ClassificationResult) error
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, ev domain.SOSCreated) (domain.Classification, error)
}

// Use cases

type ReportService interface {
	Create(ctx context.Context, req domain.CreateSOSRequest) (domain.CreateSOSResponse, error)
}

type AdminSOSService interface {
	Pending(ctx context.Context, limit int) ([]*domain.Incident, error)
	List(ctx context.Context, req domain.ListSOSRequest) (*domain.ListSOSResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	SubmitReview(ctx context.Context, id, reviewerID uuid.UUID, req domain.ReviewRequest) (*domain.ReviewResult, error)
	UsersInRadius(ctx context.Context, req domain.UsersInRadiusRequest) (*domain.UsersInRadiusResponse, error)
}

type AlertDispatcher interface {
	DispatchAlert(ctx context.Context, inc *domain.Incident) (domain.DispatchSummary, error)
}

type AlertResumer interface {
	Resume(ctx context.Context, inc *domain.Incident, alert *domain.Alert) (domain.DispatchSummary, error)
}

type StatsService interface {
	GetStats(ctx context.Context, tf domain.Timeframe) (*domain.SOSStats, error)
}

type ClassificationService interface {
	Apply(ctx context.Context, res domain.ClassificationResult) error
}

type Service struct {
	ReportService         ReportService
	AdminSOSService       AdminSOSService
	StatsService          StatsService
	ClassificationService ClassificationService
}

func NewService(
	reportService ReportService,
	adminSOSService AdminSOSService,
	statsService StatsService,
	classificationService ClassificationService,
) *Service {
	return &Service{
		ReportService:         reportService,
		AdminSOSService:       adminSOSService,
		StatsService:          statsService,
		ClassificationService: classificationService,
	}
}
