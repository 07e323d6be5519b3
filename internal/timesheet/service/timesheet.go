package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/aggregator"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/pkg/config"
	"github.com/shiftclock/shiftclock-backend/pkg/errors"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
)

// maxClockSkew is how far a punch may lie in the future of the server clock
const maxClockSkew = 5 * time.Minute

// EventStore is the persistence the service needs
type EventStore interface {
	ListForEmployeeOnDate(ctx context.Context, employeeID, date string) ([]domain.TimeEvent, error)
	ListByDate(ctx context.Context, date string) ([]domain.TimeEvent, error)
	ListForEmployeeInRange(ctx context.Context, employeeID, from, to string) ([]domain.TimeEvent, error)
	GetByID(ctx context.Context, id string) (*domain.TimeEvent, error)
	Create(ctx context.Context, event *domain.TimeEvent) error
	Update(ctx context.Context, event *domain.TimeEvent) error
	SoftDelete(ctx context.Context, id string) error
}

// EventNotifier announces changes to the event log. Implementations must not block
// the caller on delivery failures.
type EventNotifier interface {
	EventRecorded(ctx context.Context, event *domain.TimeEvent, workday domain.WorkdaySummary)
	EventUpdated(ctx context.Context, event *domain.TimeEvent, fields map[string]any)
	EventDeleted(ctx context.Context, event *domain.TimeEvent)
}

// RecordEventInput is a punch as submitted by a client or kiosk
type RecordEventInput struct {
	EmployeeID string
	Type       domain.EventType
	// Timestamp defaults to the service clock
	Timestamp *time.Time
	// Date defaults to the calendar day of Timestamp in the configured time zone
	Date      string
	Source    string
	DeviceID  *string
	Notes     *string
	CreatedBy *string
}

// UpdateEventInput carries a manager correction; nil fields are left unchanged
type UpdateEventInput struct {
	Type      *domain.EventType
	Timestamp *time.Time
	Date      *string
	Notes     *string
}

// RecordedEvent is a stored punch together with the workday it belongs to
type RecordedEvent struct {
	Event   *domain.TimeEvent     `json:"event"`
	Workday domain.WorkdaySummary `json:"workday"`
}

// TimesheetService records punches and derives workday summaries from them
type TimesheetService struct {
	store         EventStore
	notifier      EventNotifier
	clock         func() time.Time
	location      *time.Location
	maxPeriodDays int
	logger        *logger.Logger
}

// NewTimesheetService creates a new timesheet service
func NewTimesheetService(
	store EventStore,
	notifier EventNotifier,
	cfg config.TimesheetConfig,
	log *logger.Logger,
) *TimesheetService {
	maxDays := cfg.MaxPeriodDays
	if maxDays <= 0 {
		maxDays = 62
	}
	return &TimesheetService{
		store:         store,
		notifier:      notifier,
		clock:         time.Now,
		location:      cfg.Location(),
		maxPeriodDays: maxDays,
		logger:        log.WithComponent("timesheet"),
	}
}

// WithClock replaces the wall clock, used for "now" and default timestamps
func (s *TimesheetService) WithClock(clock func() time.Time) *TimesheetService {
	s.clock = clock
	return s
}

// RecordEvent validates and stores a punch, then returns the updated workday
func (s *TimesheetService) RecordEvent(ctx context.Context, in RecordEventInput) (*RecordedEvent, error) {
	now := s.clock()

	details := map[string]string{}
	if in.EmployeeID == "" {
		details["employee_id"] = "is required"
	}
	if !in.Type.Valid() {
		details["type"] = "must be one of: clock-in, clock-out, break-start, break-end"
	}
	if in.Source == "" {
		in.Source = domain.SourceWeb
	}
	if !validSource(in.Source) {
		details["source"] = "must be one of: web, kiosk, manual"
	}

	ts := now
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	if ts.After(now.Add(maxClockSkew)) {
		details["timestamp"] = "must not be in the future"
	}

	date := in.Date
	if date == "" {
		date = domain.DateOf(ts, s.location)
	} else if _, err := domain.ParseDate(date); err != nil {
		details["date"] = "must be a date in YYYY-MM-DD format"
	}

	if len(details) > 0 {
		return nil, errors.Validation(details)
	}

	event := &domain.TimeEvent{
		EmployeeID: in.EmployeeID,
		Type:       in.Type,
		Timestamp:  ts.UTC(),
		Date:       date,
		Source:     in.Source,
		DeviceID:   in.DeviceID,
		Notes:      in.Notes,
		CreatedBy:  in.CreatedBy,
	}
	if err := s.store.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", event.ID).
		Str("employee_id", event.EmployeeID).
		Str("type", string(event.Type)).
		Str("date", event.Date).
		Str("source", event.Source).
		Msg("time event recorded")

	workday, err := s.workday(ctx, event.EmployeeID, event.Date, now)
	if err != nil {
		// the punch is stored; a failed read-back must not fail the request
		s.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to summarize workday after punch")
		workday = domain.WorkdaySummary{EmployeeID: event.EmployeeID, Date: event.Date}
	}

	s.notifier.EventRecorded(ctx, event, workday)

	return &RecordedEvent{Event: event, Workday: workday}, nil
}

// UpdateEvent applies a manager correction to a stored punch
func (s *TimesheetService) UpdateEvent(ctx context.Context, id string, in UpdateEventInput, actorID string) (*domain.TimeEvent, error) {
	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	details := map[string]string{}

	if in.Type != nil {
		if !in.Type.Valid() {
			details["type"] = "must be one of: clock-in, clock-out, break-start, break-end"
		}
		event.Type = *in.Type
		fields["type"] = *in.Type
	}
	if in.Timestamp != nil {
		if in.Timestamp.After(s.clock().Add(maxClockSkew)) {
			details["timestamp"] = "must not be in the future"
		}
		event.Timestamp = in.Timestamp.UTC()
		fields["timestamp"] = event.Timestamp
		if in.Date == nil {
			event.Date = domain.DateOf(event.Timestamp, s.location)
			fields["date"] = event.Date
		}
	}
	if in.Date != nil {
		if _, err := domain.ParseDate(*in.Date); err != nil {
			details["date"] = "must be a date in YYYY-MM-DD format"
		}
		event.Date = *in.Date
		fields["date"] = *in.Date
	}
	if in.Notes != nil {
		event.Notes = in.Notes
		fields["notes"] = *in.Notes
	}

	if len(details) > 0 {
		return nil, errors.Validation(details)
	}
	if len(fields) == 0 {
		return nil, errors.BadRequest("no changes provided")
	}

	if actorID != "" {
		event.UpdatedBy = &actorID
	}

	if err := s.store.Update(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", event.ID).
		Str("employee_id", event.EmployeeID).
		Str("actor_id", actorID).
		Msg("time event corrected")

	s.notifier.EventUpdated(ctx, event, fields)

	return event, nil
}

// DeleteEvent soft deletes a punch
func (s *TimesheetService) DeleteEvent(ctx context.Context, id string) error {
	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.notifier.EventDeleted(ctx, event)
	return nil
}

// ListEvents returns the raw punches of one employee-day
func (s *TimesheetService) ListEvents(ctx context.Context, employeeID, date string) ([]domain.TimeEvent, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	return s.store.ListForEmployeeOnDate(ctx, employeeID, date)
}

// GetWorkday summarizes one employee-day as of the service clock
func (s *TimesheetService) GetWorkday(ctx context.Context, employeeID, date string) (domain.WorkdaySummary, error) {
	if err := validateDate("date", date); err != nil {
		return domain.WorkdaySummary{}, err
	}
	return s.workday(ctx, employeeID, date, s.clock())
}

func (s *TimesheetService) workday(ctx context.Context, employeeID, date string, now time.Time) (domain.WorkdaySummary, error) {
	events, err := s.store.ListForEmployeeOnDate(ctx, employeeID, date)
	if err != nil {
		return domain.WorkdaySummary{}, err
	}

	summary := aggregator.Aggregate(events, now)
	summary.EmployeeID = employeeID
	summary.Date = date
	return summary, nil
}

// GetDayBoard summarizes every employee with punches on date
func (s *TimesheetService) GetDayBoard(ctx context.Context, date string) (map[string]domain.WorkdaySummary, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}

	events, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return aggregator.SummarizeDay(events, date, s.clock()), nil
}

// GetPeriod summarizes an employee's workdays in [from, to]
func (s *TimesheetService) GetPeriod(ctx context.Context, employeeID, from, to string) (domain.PeriodSummary, error) {
	start, err := domain.ParseDate(from)
	if err != nil {
		return domain.PeriodSummary{}, errors.Validation(map[string]string{"from": "must be a date in YYYY-MM-DD format"})
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return domain.PeriodSummary{}, errors.Validation(map[string]string{"to": "must be a date in YYYY-MM-DD format"})
	}
	if end.Before(start) {
		return domain.PeriodSummary{}, errors.BadRequest("to must not be before from")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.maxPeriodDays {
		return domain.PeriodSummary{}, errors.BadRequest(fmt.Sprintf("period must not exceed %d days", s.maxPeriodDays))
	}

	events, err := s.store.ListForEmployeeInRange(ctx, employeeID, from, to)
	if err != nil {
		return domain.PeriodSummary{}, err
	}

	return aggregator.SummarizePeriod(employeeID, events, from, to, s.clock()), nil
}

func validateDate(field, value string) error {
	if _, err := domain.ParseDate(value); err != nil {
		return errors.Validation(map[string]string{field: "must be a date in YYYY-MM-DD format"})
	}
	return nil
}

func validSource(source string) bool {
	switch source {
	case domain.SourceWeb, domain.SourceKiosk, domain.SourceManual:
		return true
	}
	return false
}

// Today is the current calendar day in the configured time zone
func (s *TimesheetService) Today() string {
	return domain.DateOf(s.clock(), s.location)
}
