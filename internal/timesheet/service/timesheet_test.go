package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/pkg/config"
	"github.com/shiftclock/shiftclock-backend/pkg/errors"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory EventStore
type memStore struct {
	events  map[string]*domain.TimeEvent
	seq     int
	listErr error
}

func newMemStore() *memStore {
	return &memStore{events: make(map[string]*domain.TimeEvent)}
}

func (m *memStore) filter(keep func(e *domain.TimeEvent) bool) ([]domain.TimeEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.TimeEvent{}
	for _, e := range m.events {
		if e.DeletedAt == nil && keep(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListForEmployeeOnDate(ctx context.Context, employeeID, date string) ([]domain.TimeEvent, error) {
	return m.filter(func(e *domain.TimeEvent) bool { return e.EmployeeID == employeeID && e.Date == date })
}

func (m *memStore) ListByDate(ctx context.Context, date string) ([]domain.TimeEvent, error) {
	return m.filter(func(e *domain.TimeEvent) bool { return e.Date == date })
}

func (m *memStore) ListForEmployeeInRange(ctx context.Context, employeeID, from, to string) ([]domain.TimeEvent, error) {
	return m.filter(func(e *domain.TimeEvent) bool {
		return e.EmployeeID == employeeID && e.Date >= from && e.Date <= to
	})
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.TimeEvent, error) {
	e, ok := m.events[id]
	if !ok || e.DeletedAt != nil {
		return nil, errors.NotFound("time_event")
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) Create(ctx context.Context, event *domain.TimeEvent) error {
	m.seq++
	event.ID = fmt.Sprintf("evt-%03d", m.seq)
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *memStore) Update(ctx context.Context, event *domain.TimeEvent) error {
	if _, ok := m.events[event.ID]; !ok {
		return errors.NotFound("time_event")
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *memStore) SoftDelete(ctx context.Context, id string) error {
	e, ok := m.events[id]
	if !ok || e.DeletedAt != nil {
		return errors.NotFound("time_event")
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

type notification struct {
	kind    string
	event   domain.TimeEvent
	workday domain.WorkdaySummary
	fields  map[string]any
}

type recordingNotifier struct {
	sent []notification
}

func (r *recordingNotifier) EventRecorded(ctx context.Context, event *domain.TimeEvent, workday domain.WorkdaySummary) {
	r.sent = append(r.sent, notification{kind: "recorded", event: *event, workday: workday})
}

func (r *recordingNotifier) EventUpdated(ctx context.Context, event *domain.TimeEvent, fields map[string]any) {
	r.sent = append(r.sent, notification{kind: "updated", event: *event, fields: fields})
}

func (r *recordingNotifier) EventDeleted(ctx context.Context, event *domain.TimeEvent) {
	r.sent = append(r.sent, notification{kind: "deleted", event: *event})
}

var fixedNow = time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, cfg config.TimesheetConfig) (*TimesheetService, *memStore, *recordingNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewTimesheetService(store, notifier, cfg, logger.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return svc, store, notifier
}

func tsAt(hour, minute int) *time.Time {
	ts := time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
	return &ts
}

func TestRecordEvent_DefaultsAndWorkday(t *testing.T) {
	svc, store, notifier := newTestService(t, config.TimesheetConfig{Timezone: "UTC"})
	ctx := context.Background()

	_, err := svc.RecordEvent(ctx, RecordEventInput{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)})
	require.NoError(t, err)

	// no timestamp: the service clock is used
	rec, err := svc.RecordEvent(ctx, RecordEventInput{EmployeeID: "emp-1", Type: domain.EventBreakStart})
	require.NoError(t, err)

	assert.Equal(t, fixedNow, rec.Event.Timestamp)
	assert.Equal(t, "2024-03-04", rec.Event.Date)
	assert.Equal(t, domain.SourceWeb, rec.Event.Source)
	assert.Len(t, store.events, 2)

	assert.Equal(t, 120.0, rec.Workday.TotalWorkedMinutes)
	assert.Equal(t, domain.StatusOnBreak, rec.Workday.Status)
	assert.Equal(t, "emp-1", rec.Workday.EmployeeID)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "recorded", notifier.sent[1].kind)
	assert.Equal(t, domain.StatusOnBreak, notifier.sent[1].workday.Status)
}

func TestRecordEvent_DateFromConfiguredZone(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{Timezone: "Europe/Berlin"})

	// 23:30 UTC on the 3rd is 00:30 on the 4th in Berlin
	late := time.Date(2024, 3, 3, 23, 30, 0, 0, time.UTC)
	rec, err := svc.RecordEvent(context.Background(), RecordEventInput{
		EmployeeID: "emp-night",
		Type:       domain.EventClockOut,
		Timestamp:  &late,
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", rec.Event.Date)
}

func TestRecordEvent_ExplicitDateWins(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{})

	// night shift punch attributed to the day the shift started
	rec, err := svc.RecordEvent(context.Background(), RecordEventInput{
		EmployeeID: "emp-night",
		Type:       domain.EventClockOut,
		Timestamp:  tsAt(2, 0),
		Date:       "2024-03-03",
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", rec.Event.Date)
}

func TestRecordEvent_Validation(t *testing.T) {
	svc, store, notifier := newTestService(t, config.TimesheetConfig{})
	future := fixedNow.Add(time.Hour)

	_, err := svc.RecordEvent(context.Background(), RecordEventInput{
		Type:      "lunch",
		Timestamp: &future,
		Date:      "04.03.2024",
		Source:    "fax",
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "employee_id")
	assert.Contains(t, appErr.Details, "type")
	assert.Contains(t, appErr.Details, "timestamp")
	assert.Contains(t, appErr.Details, "date")
	assert.Contains(t, appErr.Details, "source")

	assert.Empty(t, store.events)
	assert.Empty(t, notifier.sent)
}

func TestRecordEvent_SummaryFailureStillStores(t *testing.T) {
	svc, store, notifier := newTestService(t, config.TimesheetConfig{})
	store.listErr = fmt.Errorf("replica lag")

	rec, err := svc.RecordEvent(context.Background(), RecordEventInput{EmployeeID: "emp-1", Type: domain.EventClockIn})

	require.NoError(t, err)
	assert.Len(t, store.events, 1)
	assert.Equal(t, "emp-1", rec.Workday.EmployeeID)
	assert.Len(t, notifier.sent, 1)
}

func TestUpdateEvent(t *testing.T) {
	svc, _, notifier := newTestService(t, config.TimesheetConfig{})
	ctx := context.Background()

	rec, err := svc.RecordEvent(ctx, RecordEventInput{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)})
	require.NoError(t, err)

	corrected := time.Date(2024, 3, 3, 8, 45, 0, 0, time.UTC)
	note := "badge reader failed"
	updated, err := svc.UpdateEvent(ctx, rec.Event.ID, UpdateEventInput{Timestamp: &corrected, Notes: &note}, "mgr-1")

	require.NoError(t, err)
	assert.Equal(t, corrected, updated.Timestamp)
	assert.Equal(t, "2024-03-03", updated.Date, "date follows the corrected timestamp")
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "mgr-1", *updated.UpdatedBy)

	last := notifier.sent[len(notifier.sent)-1]
	assert.Equal(t, "updated", last.kind)
	assert.Contains(t, last.fields, "timestamp")
	assert.Contains(t, last.fields, "date")
	assert.Contains(t, last.fields, "notes")
}

func TestUpdateEvent_Errors(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{})
	ctx := context.Background()

	_, err := svc.UpdateEvent(ctx, "evt-missing", UpdateEventInput{}, "mgr-1")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	rec, err := svc.RecordEvent(ctx, RecordEventInput{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)})
	require.NoError(t, err)

	_, err = svc.UpdateEvent(ctx, rec.Event.ID, UpdateEventInput{}, "mgr-1")
	assert.ErrorIs(t, err, errors.ErrBadRequest)

	bad := domain.EventType("nap")
	_, err = svc.UpdateEvent(ctx, rec.Event.ID, UpdateEventInput{Type: &bad}, "mgr-1")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestDeleteEvent(t *testing.T) {
	svc, _, notifier := newTestService(t, config.TimesheetConfig{})
	ctx := context.Background()

	rec, err := svc.RecordEvent(ctx, RecordEventInput{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, rec.Event.ID))
	assert.Equal(t, "deleted", notifier.sent[len(notifier.sent)-1].kind)

	assert.ErrorIs(t, svc.DeleteEvent(ctx, rec.Event.ID), errors.ErrNotFound)

	workday, err := svc.GetWorkday(ctx, "emp-1", "2024-03-04")
	require.NoError(t, err)
	assert.Nil(t, workday.ClockIn, "deleted punches no longer count")
}

func TestGetWorkday(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{})
	ctx := context.Background()

	for _, in := range []RecordEventInput{
		{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)},
		{EmployeeID: "emp-1", Type: domain.EventBreakStart, Timestamp: tsAt(10, 0)},
		{EmployeeID: "emp-1", Type: domain.EventBreakEnd, Timestamp: tsAt(10, 15)},
	} {
		_, err := svc.RecordEvent(ctx, in)
		require.NoError(t, err)
	}

	workday, err := svc.GetWorkday(ctx, "emp-1", "2024-03-04")
	require.NoError(t, err)
	// 09:00-10:00 plus 10:15-11:00 at the fixed clock
	assert.Equal(t, 105.0, workday.TotalWorkedMinutes)
	assert.Equal(t, 15.0, workday.TotalBreakMinutes)
	assert.Equal(t, domain.StatusWorking, workday.Status)

	empty, err := svc.GetWorkday(ctx, "emp-2", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "emp-2", empty.EmployeeID)
	assert.Equal(t, domain.StatusWorking, empty.Status)
	assert.Zero(t, empty.TotalWorkedMinutes)

	_, err = svc.GetWorkday(ctx, "emp-1", "yesterday")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestGetDayBoard(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{})
	ctx := context.Background()

	for _, in := range []RecordEventInput{
		{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)},
		{EmployeeID: "emp-2", Type: domain.EventClockIn, Timestamp: tsAt(8, 0)},
		{EmployeeID: "emp-2", Type: domain.EventClockOut, Timestamp: tsAt(10, 0)},
	} {
		_, err := svc.RecordEvent(ctx, in)
		require.NoError(t, err)
	}

	board, err := svc.GetDayBoard(ctx, "2024-03-04")
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, domain.StatusWorking, board["emp-1"].Status)
	assert.Equal(t, 120.0, board["emp-1"].TotalWorkedMinutes)
	assert.Equal(t, domain.StatusCompleted, board["emp-2"].Status)
}

func TestGetPeriod(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{MaxPeriodDays: 31})
	ctx := context.Background()

	_, err := svc.RecordEvent(ctx, RecordEventInput{EmployeeID: "emp-1", Type: domain.EventClockIn, Timestamp: tsAt(9, 0)})
	require.NoError(t, err)

	period, err := svc.GetPeriod(ctx, "emp-1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, 1, period.DaysWorked)
	assert.Equal(t, 120.0, period.TotalWorkedMinutes)
	assert.InDelta(t, 2.0, period.AverageDailyHours, 1e-9)

	_, err = svc.GetPeriod(ctx, "emp-1", "2024-03-31", "2024-03-01")
	assert.ErrorIs(t, err, errors.ErrBadRequest)

	_, err = svc.GetPeriod(ctx, "emp-1", "2024-03-01", "2024-04-01")
	assert.ErrorIs(t, err, errors.ErrBadRequest, "32 days exceed the configured maximum")

	_, err = svc.GetPeriod(ctx, "emp-1", "March", "2024-04-01")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestToday(t *testing.T) {
	svc, _, _ := newTestService(t, config.TimesheetConfig{Timezone: "Pacific/Auckland"})
	// 11:00 UTC on March 4th is already March 5th in Auckland
	assert.Equal(t, "2024-03-05", svc.Today())
}
