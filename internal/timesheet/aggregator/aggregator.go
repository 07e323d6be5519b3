// Package aggregator reduces raw punches of one employee-day to a WorkdaySummary.
//
// Everything here is pure: no I/O, no wall clock. Callers pass now explicitly
// and may call concurrently on independent inputs.
package aggregator

import (
	"slices"
	"time"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
)

// workday is the fold accumulator. Open spans are tracked by their start cursor.
type workday struct {
	clockIn        *time.Time
	clockOut       *time.Time
	worked         float64
	breaks         float64
	lastClockIn    *time.Time
	lastBreakStart *time.Time
	onBreak        bool
}

// Aggregate folds the events of one employee-day into a summary as of now.
//
// Events may arrive in any order; a stable copy is sorted by timestamp so
// equal timestamps keep their input order. The input slice is not modified.
// Events are assumed to share one employee and one date.
func Aggregate(events []domain.TimeEvent, now time.Time) domain.WorkdaySummary {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.TimeEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var state workday
	for _, e := range sorted {
		state = state.apply(e)
	}

	summary := state.summarize(now)
	if len(sorted) > 0 {
		summary.EmployeeID = sorted[0].EmployeeID
		summary.Date = sorted[0].Date
	}
	return summary
}

func (w workday) apply(e domain.TimeEvent) workday {
	ts := e.Timestamp

	switch e.Type {
	case domain.EventClockIn:
		if w.clockIn == nil {
			w.clockIn = &ts
		}
		// A second clock-in while a span is open replaces the cursor and
		// drops the minutes since the first one. Kept as is, see
		// TestAggregate_DoubleClockInDropsMinutes.
		w.lastClockIn = &ts
		w.onBreak = false

	case domain.EventClockOut:
		w.clockOut = &ts
		w = w.closeWork(ts)

	case domain.EventBreakStart:
		w.lastBreakStart = &ts
		w.onBreak = true
		w = w.closeWork(ts)

	case domain.EventBreakEnd:
		w.onBreak = false
		if w.lastBreakStart != nil {
			w.breaks += minutesBetween(*w.lastBreakStart, ts)
			w.lastBreakStart = nil
		}
		// resume accrual unless a working span is already running
		if w.lastClockIn == nil {
			w.lastClockIn = &ts
		}
	}

	return w
}

func (w workday) closeWork(at time.Time) workday {
	if w.lastClockIn != nil {
		w.worked += minutesBetween(*w.lastClockIn, at)
		w.lastClockIn = nil
	}
	return w
}

func (w workday) summarize(now time.Time) domain.WorkdaySummary {
	worked, breaks := w.worked, w.breaks

	// open spans run until now only while the day has no clock-out
	if w.clockOut == nil {
		if w.lastClockIn != nil {
			worked += minutesBetween(*w.lastClockIn, now)
		}
		if w.lastBreakStart != nil && w.onBreak {
			breaks += minutesBetween(*w.lastBreakStart, now)
		}
	}

	status := domain.StatusWorking
	switch {
	case w.clockOut != nil:
		status = domain.StatusCompleted
	case w.onBreak:
		status = domain.StatusOnBreak
	}

	return domain.WorkdaySummary{
		ClockIn:            w.clockIn,
		ClockOut:           w.clockOut,
		TotalWorkedMinutes: worked,
		TotalBreakMinutes:  breaks,
		NetWorkedMinutes:   worked,
		Status:             status,
	}
}

// minutesBetween is end-start in whole milliseconds over 60000, never negative.
func minutesBetween(start, end time.Time) float64 {
	ms := end.Sub(start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return float64(ms) / 60000
}
