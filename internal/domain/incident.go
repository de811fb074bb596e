package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a terminal review decision.
func (s ReviewStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Category string

const (
	CategoryStampede Category = "stampede"
	CategoryFire     Category = "fire"
	CategoryViolence Category = "violence"
	CategoryMedical  Category = "medical"
	CategoryOther    Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStampede, CategoryFire, CategoryViolence, CategoryMedical, CategoryOther:
		return true
	}
	return false
}

type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Address   string   `json:"address,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type DeviceInfo struct {
	Platform   string `json:"platform,omitempty" validate:"max=32"`
	Model      string `json:"model,omitempty" validate:"max=64"`
	OSVersion  string `json:"osVersion,omitempty" validate:"max=32"`
	AppVersion string `json:"appVersion,omitempty" validate:"max=32"`
}

type Review struct {
	ReviewerID uuid.UUID    `json:"reviewerId"`
	ReviewedAt time.Time    `json:"reviewedAt"`
	Decision   ReviewStatus `json:"decision"`
	Notes      string       `json:"adminNotes,omitempty"`
}

// AlertOutcome is written once, after an approval triggered the fan-out.
type AlertOutcome struct {
	Attempted      bool       `json:"attempted"`
	RecipientCount int        `json:"recipientCount"`
	AlertID        *uuid.UUID `json:"alertId"`
	Error          *string    `json:"error"`
}

type Incident struct {
	ID             uuid.UUID       `json:"id"`
	ReporterID     uuid.UUID       `json:"reporterId"`
	VideoURL       string          `json:"videoUrl"`
	ThumbnailURL   *string         `json:"thumbnailUrl,omitempty"`
	DurationSec    int             `json:"duration"`
	Message        string          `json:"message"`
	Location       Location        `json:"location"`
	CapturedAt     time.Time       `json:"timestamp"`
	DeviceInfo     *DeviceInfo     `json:"deviceInfo,omitempty"`
	Priority       Priority        `json:"priority"`
	Category       Category        `json:"category"`
	Classification *Classification `json:"aiAnalysis,omitempty"`
	Status         ReviewStatus    `json:"status"`
	Review         *Review         `json:"review,omitempty"`
	AlertOutcome   *AlertOutcome   `json:"alertsSent,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}
