package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyDispatch is posted to the emergency-services webhook for every approved report.
type EmergencyDispatch struct {
	IncidentID     uuid.UUID       `json:"incident_id"`
	AlertID        *uuid.UUID      `json:"alert_id,omitempty"`
	Category       Category        `json:"category"`
	Priority       Priority        `json:"priority"`
	PrimaryService *PrimaryService `json:"primary_service,omitempty"`
	Lat            float64         `json:"lat"`
	Lng            float64         `json:"lng"`
	Address        string          `json:"address"`
	Message        string          `json:"message"`
	VideoURL       string          `json:"video_url"`
	RecipientCount int             `json:"recipient_count"`
	ApprovedAt     time.Time       `json:"approved_at"`
}

// SOSCreated is published after a report is stored so the classifier can pick it up.
type SOSCreated struct {
	IncidentID uuid.UUID `json:"incident_id"`
	VideoURL   string    `json:"video_url"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
