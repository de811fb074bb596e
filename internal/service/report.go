package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/geo"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/tagging"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/validator"
)

type ReportIntake struct {
	logger          *slog.Logger
	incidents       IncidentRepository
	users           RecipientRepository
	geocoder        Geocoder
	events          EventPublisher
	stats           StatsCache
	defaultDuration int
	now             func() time.Time
}

func NewReportService(
	logger *slog.Logger,
	incidents IncidentRepository,
	users RecipientRepository,
	geocoder Geocoder,
	events EventPublisher,
	stats StatsCache,
	defaultDuration int,
) *ReportIntake {
	return &ReportIntake{
		logger:          logger,
		incidents:       incidents,
		users:           users,
		geocoder:        geocoder,
		events:          events,
		stats:           stats,
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

// Create stores a new pending report. Coordinates are validated before anything is written;
// out-of-range values are rejected, never clamped.
func (s *ReportIntake) Create(ctx context.Context, req domain.CreateSOSRequest) (domain.CreateSOSResponse, error) {
	const op = "service.ReportIntake.Create"

	if req.Location.Latitude == nil || req.Location.Longitude == nil {
		return domain.CreateSOSResponse{}, e.Wrap(op, e.ErrInvalidCoordinates)
	}
	lat, lng := *req.Location.Latitude, *req.Location.Longitude
	if !geo.ValidCoordinates(lat, lng) {
		return domain.CreateSOSResponse{}, e.Wrap(op, e.ErrInvalidCoordinates)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return domain.CreateSOSResponse{}, e.Validation(op, err)
	}

	reporterID, err := uuid.Parse(req.UserID)
	if err != nil {
		return domain.CreateSOSResponse{}, e.Wrap(op, e.ErrInvalidUserID)
	}
	ok, err := s.users.Exists(ctx, reporterID)
	if err != nil {
		return domain.CreateSOSResponse{}, err
	}
	if !ok {
		return domain.CreateSOSResponse{}, fmt.Errorf("%s: user %s: %w", op, reporterID, e.ErrNotFound)
	}

	now := s.now().UTC()
	message := strings.TrimSpace(req.Message)
	priority, category := tagging.Classify(message)

	inc := &domain.Incident{
		ID:           uuid.New(),
		ReporterID:   reporterID,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		DurationSec:  s.defaultDuration,
		Message:      message,
		Location: domain.Location{
			Latitude:  lat,
			Longitude: lng,
			Address:   s.address(ctx, lat, lng),
			Accuracy:  req.Location.Accuracy,
		},
		CapturedAt: now,
		DeviceInfo: req.DeviceInfo,
		Priority:   priority,
		Category:   category,
		Status:     domain.StatusPending,
		CreatedAt:  now,
	}
	if req.Duration != nil {
		inc.DurationSec = *req.Duration
	}
	if req.CapturedAt != nil {
		inc.CapturedAt = req.CapturedAt.UTC()
	}

	if err := s.incidents.Create(ctx, inc); err != nil {
		return domain.CreateSOSResponse{}, err
	}

	l := s.logger.With(slog.String("op", op), slog.String("incident_id", inc.ID.String()))
	l.Info("sos report created",
		slog.String("priority", string(inc.Priority)),
		slog.String("category", string(inc.Category)),
	)

	s.publishCreated(ctx, l, inc)
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			l.Warn("stats cache invalidate failed", slog.Any("error", err))
		}
	}

	return domain.CreateSOSResponse{
		SOSID:               inc.ID,
		Status:              string(inc.Status),
		EstimatedReviewTime: EstimatedReviewTime(inc.Priority),
	}, nil
}

// address falls back to the raw coordinates when the geocoder is missing or fails.
func (s *ReportIntake) address(ctx context.Context, lat, lng float64) string {
	if s.geocoder == nil {
		return geo.FormatCoordinates(lat, lng)
	}
	addr, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil || strings.TrimSpace(addr) == "" {
		if err != nil {
			s.logger.Warn("reverse geocoding failed", slog.Any("error", err))
		}
		return geo.FormatCoordinates(lat, lng)
	}
	return addr
}

func (s *ReportIntake) publishCreated(ctx context.Context, l *slog.Logger, inc *domain.Incident) {
	if s.events == nil {
		return
	}
	err := s.events.PublishSOSCreated(ctx, domain.SOSCreated{
		IncidentID: inc.ID,
		VideoURL:   inc.VideoURL,
		Message:    inc.Message,
		CreatedAt:  inc.CreatedAt,
	})
	if err != nil {
		l.Warn("publish sos.created failed", slog.Any("error", err))
	}
}

func EstimatedReviewTime(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "2-5 minutes"
	case domain.PriorityMedium:
		return "5-10 minutes"
	default:
		return "10-15 minutes"
	}
}
