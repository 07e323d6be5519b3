package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Timesheet events
	EventTimeEventRecorded = "timesheet.event.recorded"
	EventTimeEventUpdated  = "timesheet.event.updated"
	EventTimeEventDeleted  = "timesheet.event.deleted"

	// Kiosk events
	EventKioskClockRecorded = "kiosk.clock.recorded"
)

// Exchange names
const (
	ExchangeTimesheetEvents = "timesheet.events"
	ExchangeKioskEvents     = "kiosk.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Timesheet Events

// TimeEventRecordedEvent is published when a punch is stored
type TimeEventRecordedEvent struct {
	EventID    string    `json:"event_id"`
	EmployeeID string    `json:"employee_id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Date       string    `json:"date"`
	Source     string    `json:"source"`

	// Workday state after the punch, so dashboards need no round trip
	Status             string  `json:"status"`
	TotalWorkedMinutes float64 `json:"total_worked_minutes"`
	TotalBreakMinutes  float64 `json:"total_break_minutes"`

	TenantID string `json:"tenant_id"`
}

// TimeEventUpdatedEvent is published when a manager corrects a punch
type TimeEventUpdatedEvent struct {
	EventID    string         `json:"event_id"`
	EmployeeID string         `json:"employee_id"`
	Date       string         `json:"date"`
	Fields     map[string]any `json:"fields"`
	UpdatedBy  string         `json:"updated_by,omitempty"`
	TenantID   string         `json:"tenant_id"`
}

// TimeEventDeletedEvent is published when a punch is soft deleted
type TimeEventDeletedEvent struct {
	EventID    string `json:"event_id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	TenantID   string `json:"tenant_id"`
}

// Kiosk Events

// KioskClockRecordedEvent is published by a kiosk terminal for every badge or PIN punch
type KioskClockRecordedEvent struct {
	EmployeeID string    `json:"employee_id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	DeviceID   string    `json:"device_id"`

	// Tenant context, kiosks are provisioned per tenant
	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
