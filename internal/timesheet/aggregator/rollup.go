package aggregator

import (
	"sort"
	"time"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
)

// SummarizeDay buckets a mixed event stream by employee for one date and
// aggregates each bucket. Events attributed to other dates are ignored, and
// employees without events on date are absent from the result.
func SummarizeDay(events []domain.TimeEvent, date string, now time.Time) map[string]domain.WorkdaySummary {
	byEmployee := make(map[string][]domain.TimeEvent)
	for _, e := range events {
		if e.Date != date {
			continue
		}
		byEmployee[e.EmployeeID] = append(byEmployee[e.EmployeeID], e)
	}

	result := make(map[string]domain.WorkdaySummary, len(byEmployee))
	for employeeID, dayEvents := range byEmployee {
		summary := Aggregate(dayEvents, now)
		summary.EmployeeID = employeeID
		summary.Date = date
		result[employeeID] = summary
	}
	return result
}

// SummarizePeriod aggregates every date in [from, to] on which employeeID has
// events and totals them. Dates are DateLayout strings, so they order lexically.
func SummarizePeriod(employeeID string, events []domain.TimeEvent, from, to string, now time.Time) domain.PeriodSummary {
	byDate := make(map[string][]domain.TimeEvent)
	for _, e := range events {
		if e.EmployeeID != employeeID || e.Date < from || e.Date > to {
			continue
		}
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	period := domain.PeriodSummary{
		EmployeeID: employeeID,
		StartDate:  from,
		EndDate:    to,
		Days:       make([]domain.WorkdaySummary, 0, len(dates)),
	}

	for _, d := range dates {
		day := Aggregate(byDate[d], now)
		day.EmployeeID = employeeID
		day.Date = d

		period.Days = append(period.Days, day)
		period.TotalWorkedMinutes += day.TotalWorkedMinutes
		period.TotalBreakMinutes += day.TotalBreakMinutes
	}
	period.DaysWorked = len(period.Days)

	if period.DaysWorked > 0 {
		period.AverageDailyHours = period.TotalWorkedMinutes / float64(period.DaysWorked) / 60.0
	}

	return period
}
