package aggregator_test

import (
	"testing"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/aggregator"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func punchFor(employee, date string, t domain.EventType, hour, minute int) domain.TimeEvent {
	e := punch(t, hour, minute)
	e.EmployeeID = employee
	e.Date = date
	return e
}

func TestSummarizeDay(t *testing.T) {
	events := []domain.TimeEvent{
		punchFor("emp-anna", workDate, domain.EventClockIn, 9, 0),
		punchFor("emp-ben", workDate, domain.EventClockIn, 8, 0),
		punchFor("emp-anna", workDate, domain.EventClockOut, 13, 0),
		punchFor("emp-ben", workDate, domain.EventBreakStart, 10, 0),
		// attributed to the previous day even though it shares the timestamp range
		punchFor("emp-clara", "2024-03-03", domain.EventClockIn, 6, 0),
	}

	board := aggregator.SummarizeDay(events, workDate, at(10, 30))

	require.Len(t, board, 2)
	assert.NotContains(t, board, "emp-clara")

	anna := board["emp-anna"]
	assert.Equal(t, "emp-anna", anna.EmployeeID)
	assert.Equal(t, workDate, anna.Date)
	assert.Equal(t, 240.0, anna.TotalWorkedMinutes)
	assert.Equal(t, domain.StatusCompleted, anna.Status)

	ben := board["emp-ben"]
	assert.Equal(t, 120.0, ben.TotalWorkedMinutes)
	assert.Equal(t, 30.0, ben.TotalBreakMinutes)
	assert.Equal(t, domain.StatusOnBreak, ben.Status)
}

func TestSummarizeDay_NoEvents(t *testing.T) {
	board := aggregator.SummarizeDay(nil, workDate, at(12, 0))
	assert.Empty(t, board)
}

func TestSummarizePeriod(t *testing.T) {
	events := []domain.TimeEvent{
		punchFor("emp-anna", "2024-03-05", domain.EventClockIn, 9, 0),
		punchFor("emp-anna", "2024-03-05", domain.EventClockOut, 15, 0),
		punchFor("emp-anna", "2024-03-04", domain.EventClockIn, 9, 0),
		punchFor("emp-anna", "2024-03-04", domain.EventBreakStart, 12, 0),
		punchFor("emp-anna", "2024-03-04", domain.EventBreakEnd, 12, 30),
		punchFor("emp-anna", "2024-03-04", domain.EventClockOut, 17, 0),
		// outside the range
		punchFor("emp-anna", "2024-03-10", domain.EventClockIn, 9, 0),
		// someone else
		punchFor("emp-ben", "2024-03-04", domain.EventClockIn, 9, 0),
	}

	p := aggregator.SummarizePeriod("emp-anna", events, "2024-03-01", "2024-03-07", at(23, 0))

	assert.Equal(t, "emp-anna", p.EmployeeID)
	assert.Equal(t, "2024-03-01", p.StartDate)
	assert.Equal(t, "2024-03-07", p.EndDate)
	require.Len(t, p.Days, 2)
	assert.Equal(t, "2024-03-04", p.Days[0].Date)
	assert.Equal(t, "2024-03-05", p.Days[1].Date)
	assert.Equal(t, 450.0, p.Days[0].TotalWorkedMinutes)
	assert.Equal(t, 360.0, p.Days[1].TotalWorkedMinutes)

	assert.Equal(t, 810.0, p.TotalWorkedMinutes)
	assert.Equal(t, 30.0, p.TotalBreakMinutes)
	assert.Equal(t, 2, p.DaysWorked)
	assert.InDelta(t, 6.75, p.AverageDailyHours, 1e-9)
}

func TestSummarizePeriod_Empty(t *testing.T) {
	p := aggregator.SummarizePeriod("emp-anna", nil, "2024-03-01", "2024-03-07", at(12, 0))

	assert.NotNil(t, p.Days)
	assert.Empty(t, p.Days)
	assert.Zero(t, p.DaysWorked)
	assert.Zero(t, p.AverageDailyHours)
}
