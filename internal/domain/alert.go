package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertStatus string

const (
	AlertSending AlertStatus = "sending"
	AlertSent    AlertStatus = "sent"
	AlertFailed  AlertStatus = "failed"
)

type DeliveryCounts struct {
	PushSent       int `json:"pushSent"`
	PushFailed     int `json:"pushFailed"`
	WhatsAppSent   int `json:"whatsappSent"`
	WhatsAppFailed int `json:"whatsappFailed"`
}

func (c DeliveryCounts) Failed() int { return c.PushFailed + c.WhatsAppFailed }
func (c DeliveryCounts) Sent() int   { return c.PushSent + c.WhatsAppSent }

// Alert is the single record written per approved incident that had reachable recipients.
type Alert struct {
	ID             uuid.UUID      `json:"id"`
	IncidentID     uuid.UUID      `json:"incidentId"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	RecipientIDs   []uuid.UUID    `json:"recipients"`
	Message        string         `json:"message"`
	Status         AlertStatus    `json:"status"`
	Counts         DeliveryCounts `json:"counts"`
	RecipientCount int            `json:"recipientCount"`
	DispatchedAt   time.Time      `json:"dispatchedAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

type DispatchSummary struct {
	RecipientCount int       `json:"recipientCount"`
	AlertID        uuid.UUID `json:"alertId"`
	DeliveryCounts
}

type ReviewResult struct {
	Incident *Incident       `json:"sos"`
	Alert    *DispatchSummary `json:"alert,omitempty"`
}
