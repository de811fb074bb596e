package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/geo"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/validator"
)

const defaultPendingLimit = 50

type AdminService struct {
	incidents  IncidentRepository
	recipients RecipientRepository
	review     *ReviewWorkflow
}

func NewAdminSOSService(incidents IncidentRepository, recipients RecipientRepository, review *ReviewWorkflow) *AdminService {
	return &AdminService{incidents: incidents, recipients: recipients, review: review}
}

func (s *AdminService) Pending(ctx context.Context, limit int) ([]*domain.Incident, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPendingLimit
	}
	return s.incidents.Pending(ctx, limit)
}

func (s *AdminService) List(ctx context.Context, req domain.ListSOSRequest) (*domain.ListSOSResponse, error) {
	const op = "service.AdminService.List"

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Validation(op, err)
	}
	if err := validateFilters(req); err != nil {
		return nil, e.Validation(op, err)
	}

	items, total, err := s.incidents.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return &domain.ListSOSResponse{Reports: items, Page: req.Page, Limit: req.Limit, Total: total}, nil
}

func validateFilters(req domain.ListSOSRequest) error {
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("unknown status %q", *req.Status)
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", *req.Priority)
	}
	if req.Category != nil && !req.Category.Valid() {
		return fmt.Errorf("unknown category %q", *req.Category)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return errors.New("endDate is before startDate")
	}
	return nil
}

func (s *AdminService) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return s.incidents.Get(ctx, id)
}

func (s *AdminService) SubmitReview(ctx context.Context, id, reviewerID uuid.UUID, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	return s.review.SubmitReview(ctx, id, reviewerID, req)
}

func (s *AdminService) UsersInRadius(ctx context.Context, req domain.UsersInRadiusRequest) (*domain.UsersInRadiusResponse, error) {
	const op = "service.AdminService.UsersInRadius"

	if !geo.ValidCoordinates(req.Latitude, req.Longitude) {
		return nil, e.Wrap(op, e.ErrInvalidCoordinates)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Validation(op, err)
	}

	users, err := s.recipients.FindInRadius(ctx, req.Latitude, req.Longitude, req.RadiusM)
	if err != nil {
		return nil, err
	}
	return &domain.UsersInRadiusResponse{Users: users, Count: len(users), RadiusM: req.RadiusM}, nil
}
