package events

import (
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventValetCreated       EventType = "valet_created"
	EventValetStatusChanged EventType = "valet_status_changed"
	EventValetPromoted      EventType = "valet_promoted"
	EventValetDemoted       EventType = "valet_demoted"
	EventValetDeleted       EventType = "valet_deleted"
	EventSessionTerminated  EventType = "session_terminated"
	EventClockRecorded      EventType = "clock_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ValetStatusChangedPayload payload.
type ValetStatusChangedPayload struct {
	IsActive bool `json:"is_active"`
}

// SessionTerminatedPayload payload.
type SessionTerminatedPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// ClockRecordedPayload payload.
type ClockRecordedPayload struct {
	EventID string                `json:"event_id"`
	Type    domain.ClockEventType `json:"type"`
}
