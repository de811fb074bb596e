package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type PrimaryService string

const (
	ServicePolice      PrimaryService = "Police"
	ServiceAmbulance   PrimaryService = "Ambulance"
	ServiceFireBrigade PrimaryService = "Fire Brigade"
)

func (s PrimaryService) Valid() bool {
	return s == ServicePolice || s == ServiceAmbulance || s == ServiceFireBrigade
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Classification is advisory output of the video classifier. It never changes review state.
type Classification struct {
	IsEmergency    bool            `json:"is_emergency"`
	PrimaryService *PrimaryService `json:"primary_service"`
	Confidence     *Confidence     `json:"confidence"`
	Reason         string          `json:"reason,omitempty"`
	Model          string          `json:"model,omitempty"`
	ClassifiedAt   time.Time       `json:"classified_at"`
}

var (
	errServiceRequired = errors.New("primary_service must be one of Police, Ambulance, Fire Brigade when is_emergency is true")
	errConfidence      = errors.New("confidence must be one of High, Medium, Low when is_emergency is true")
	errNotEmergency    = errors.New("primary_service and confidence must be null when is_emergency is false")
)

func (c Classification) Validate() error {
	if !c.IsEmergency {
		if c.PrimaryService != nil || c.Confidence != nil {
			return errNotEmergency
		}
		return nil
	}
	if c.PrimaryService == nil || !c.PrimaryService.Valid() {
		return errServiceRequired
	}
	if c.Confidence == nil || !c.Confidence.Valid() {
		return errConfidence
	}
	return nil
}

type ClassificationResult struct {
	IncidentID uuid.UUID `json:"incident_id"`
	Classification
}
