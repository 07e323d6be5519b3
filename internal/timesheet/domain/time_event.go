// Package domain holds the time tracking records shared by the aggregator,
// the event store and the transports.
package domain

import "time"

// DateLayout is the calendar-day format used for event attribution
const DateLayout = "2006-01-02"

// EventType is the kind of punch recorded by a clock
type EventType string

const (
	EventClockIn    EventType = "clock-in"
	EventClockOut   EventType = "clock-out"
	EventBreakStart EventType = "break-start"
	EventBreakEnd   EventType = "break-end"
)

// Valid reports whether t is one of the four known punch types
func (t EventType) Valid() bool {
	switch t {
	case EventClockIn, EventClockOut, EventBreakStart, EventBreakEnd:
		return true
	}
	return false
}

// Status is the derived state of a workday
type Status string

const (
	StatusWorking   Status = "working"
	StatusOnBreak   Status = "on-break"
	StatusCompleted Status = "completed"
)

// Event sources
const (
	SourceWeb    = "web"
	SourceKiosk  = "kiosk"
	SourceManual = "manual"
)

// TimeEvent is a single punch. Date is the calendar day the punch is
// attributed to and may differ from the local date of Timestamp.
type TimeEvent struct {
	ID         string     `db:"id" json:"id"`
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	Type       EventType  `db:"event_type" json:"type"`
	Timestamp  time.Time  `db:"occurred_at" json:"timestamp"`
	Date       string     `db:"event_date" json:"date"`
	Source     string     `db:"source" json:"source,omitempty"`
	DeviceID   *string    `db:"device_id" json:"device_id,omitempty"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
	CreatedBy  *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy  *string    `db:"updated_by" json:"updated_by,omitempty"`
}

// WorkdaySummary is derived from one employee-day of events and never stored
type WorkdaySummary struct {
	EmployeeID         string     `json:"employee_id"`
	Date               string     `json:"date"`
	ClockIn            *time.Time `json:"clock_in,omitempty"`
	ClockOut           *time.Time `json:"clock_out,omitempty"`
	TotalWorkedMinutes float64    `json:"total_worked_minutes"`
	TotalBreakMinutes  float64    `json:"total_break_minutes"`
	NetWorkedMinutes   float64    `json:"net_worked_minutes"`
	Status             Status     `json:"status"`
}

// PeriodSummary rolls workday summaries up over a date range
type PeriodSummary struct {
	EmployeeID         string           `json:"employee_id"`
	StartDate          string           `json:"start_date"`
	EndDate            string           `json:"end_date"`
	Days               []WorkdaySummary `json:"days"`
	TotalWorkedMinutes float64          `json:"total_worked_minutes"`
	TotalBreakMinutes  float64          `json:"total_break_minutes"`
	DaysWorked         int              `json:"days_worked"`
	AverageDailyHours  float64          `json:"average_daily_hours"`
}

// DateOf returns the calendar day of t in loc, formatted with DateLayout
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses a DateLayout string
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
