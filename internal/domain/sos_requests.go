package domain

import (
	"time"

	"github.com/google/uuid"
)

type LocationInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,lat"`
	Longitude *float64 `json:"longitude" validate:"required,lng"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,min=0"`
}

type CreateSOSRequest struct {
	UserID       string        `json:"userId" validate:"required,uuid"`
	VideoURL     string        `json:"videoUrl" validate:"required,media_url"`
	ThumbnailURL *string       `json:"thumbnailUrl" validate:"omitempty,media_url"`
	Duration     *int          `json:"duration" validate:"omitempty,min=1,max=30"`
	Location     LocationInput `json:"location" validate:"required"`
	Message      string        `json:"message" validate:"max=500"`
	CapturedAt   *time.Time    `json:"timestamp"`
	DeviceInfo   *DeviceInfo   `json:"deviceInfo" validate:"omitempty"`
}

type CreateSOSResponse struct {
	SOSID               uuid.UUID `json:"sosId"`
	Status              string    `json:"status"`
	EstimatedReviewTime string    `json:"estimatedReviewTime"`
}

type ReviewRequest struct {
	Decision   ReviewStatus `json:"decision"`
	AdminNotes string       `json:"adminNotes" validate:"max=1000"`
}

type ListSOSRequest struct {
	Status    *ReviewStatus
	Priority  *Priority
	Category  *Category
	StartDate *time.Time
	EndDate   *time.Time
	Page      int `validate:"min=1"`
	Limit     int `validate:"min=1,max=100"`
}

type ListSOSResponse struct {
	Reports []*Incident `json:"reports"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Total   int64       `json:"total"`
}

type UsersInRadiusRequest struct {
	Latitude  float64 `validate:"lat"`
	Longitude float64 `validate:"lng"`
	RadiusM   float64 `validate:"radius_m"`
}

type UsersInRadiusResponse struct {
	Users   []Recipient `json:"users"`
	Count   int         `json:"count"`
	RadiusM float64     `json:"radius"`
}
