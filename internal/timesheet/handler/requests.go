package handler

import (
	"time"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/aggregator"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
)

// RecordEventRequest is the body of POST /events
type RecordEventRequest struct {
	EmployeeID string     `json:"employee_id" validate:"required,uuid"`
	Type       string     `json:"type" validate:"required,oneof=clock-in clock-out break-start break-end"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Date       string     `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Source     string     `json:"source,omitempty" validate:"omitempty,oneof=web kiosk manual"`
	DeviceID   *string    `json:"device_id,omitempty" validate:"omitempty,max=100"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// UpdateEventRequest is the body of PATCH /events/{id}
type UpdateEventRequest struct {
	Type      *string    `json:"type,omitempty" validate:"omitempty,oneof=clock-in clock-out break-start break-end"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Date      *string    `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// WorkdayResponse is a workday summary with display values for clients
type WorkdayResponse struct {
	domain.WorkdaySummary
	WorkedDisplay string `json:"worked_display"`
	WorkedHours   string `json:"worked_hours"`
	BreakDisplay  string `json:"break_display"`
}

// PeriodResponse is a period summary with display values for clients
type PeriodResponse struct {
	EmployeeID         string            `json:"employee_id"`
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	Days               []WorkdayResponse `json:"days"`
	TotalWorkedMinutes float64           `json:"total_worked_minutes"`
	TotalBreakMinutes  float64           `json:"total_break_minutes"`
	DaysWorked         int               `json:"days_worked"`
	AverageDailyHours  float64           `json:"average_daily_hours"`
	WorkedDisplay      string            `json:"worked_display"`
	WorkedHours        string            `json:"worked_hours"`
}

// RecordEventResponse is the stored punch with its workday
type RecordEventResponse struct {
	Event   *domain.TimeEvent `json:"event"`
	Workday WorkdayResponse   `json:"workday"`
}

func newWorkdayResponse(s domain.WorkdaySummary) WorkdayResponse {
	return WorkdayResponse{
		WorkdaySummary: s,
		WorkedDisplay:  aggregator.FormatMinutes(s.TotalWorkedMinutes),
		WorkedHours:    aggregator.FormatHours(s.TotalWorkedMinutes),
		BreakDisplay:   aggregator.FormatMinutes(s.TotalBreakMinutes),
	}
}

func newPeriodResponse(p domain.PeriodSummary) PeriodResponse {
	days := make([]WorkdayResponse, 0, len(p.Days))
	for _, d := range p.Days {
		days = append(days, newWorkdayResponse(d))
	}
	return PeriodResponse{
		EmployeeID:         p.EmployeeID,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		Days:               days,
		TotalWorkedMinutes: p.TotalWorkedMinutes,
		TotalBreakMinutes:  p.TotalBreakMinutes,
		DaysWorked:         p.DaysWorked,
		AverageDailyHours:  p.AverageDailyHours,
		WorkedDisplay:      aggregator.FormatMinutes(p.TotalWorkedMinutes),
		WorkedHours:        aggregator.FormatHours(p.TotalWorkedMinutes),
	}
}
