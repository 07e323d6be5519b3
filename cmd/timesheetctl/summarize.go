package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/aggregator"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
)

type summarizeOptions struct {
	file     string
	date     string
	now      string
	timezone string
	format   string
}

func newSummarizeCmd() *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print one workday summary per employee-day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "JSON array of time events, - for stdin")
	cmd.Flags().StringVar(&opts.date, "date", "", "only summarize this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluate open days as of this RFC 3339 time (default: current time)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "UTC", "time zone used for events without a date")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json, csv")

	return cmd
}

func runSummarize(stdin io.Reader, out io.Writer, opts *summarizeOptions) error {
	now := time.Now()
	if opts.now != "" {
		parsed, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now %q: %w", opts.now, err)
		}
		now = parsed
	}
	if opts.date != "" {
		if _, err := domain.ParseDate(opts.date); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", opts.date)
		}
	}
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid --timezone %q: %w", opts.timezone, err)
	}

	events, err := readEvents(stdin, opts.file)
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].Date == "" {
			events[i].Date = domain.DateOf(events[i].Timestamp, loc)
		}
	}

	summaries := summarizeAll(events, opts.date, now)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "csv":
		return writeCSV(out, summaries)
	case "text":
		return writeText(out, summaries)
	default:
		return fmt.Errorf("unknown --format %q: expected text, json or csv", opts.format)
	}
}

func readEvents(stdin io.Reader, file string) ([]domain.TimeEvent, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var events []domain.TimeEvent
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// summarizeAll returns summaries ordered by date, then employee
func summarizeAll(events []domain.TimeEvent, date string, now time.Time) []domain.WorkdaySummary {
	dates := []string{date}
	if date == "" {
		seen := map[string]bool{}
		dates = dates[:0]
		for _, e := range events {
			if !seen[e.Date] {
				seen[e.Date] = true
				dates = append(dates, e.Date)
			}
		}
		sort.Strings(dates)
	}

	result := []domain.WorkdaySummary{}
	for _, d := range dates {
		day := aggregator.SummarizeDay(events, d, now)
		employees := make([]string, 0, len(day))
		for id := range day {
			employees = append(employees, id)
		}
		sort.Strings(employees)
		for _, id := range employees {
			result = append(result, day[id])
		}
	}
	return result
}

func writeText(out io.Writer, summaries []domain.WorkdaySummary) error {
	for _, s := range summaries {
		if _, err := fmt.Fprintf(out, "%s  %-36s  %-9s  worked %s (%sh)  break %s\n",
			s.Date,
			s.EmployeeID,
			s.Status,
			aggregator.FormatMinutes(s.TotalWorkedMinutes),
			aggregator.FormatHours(s.TotalWorkedMinutes),
			aggregator.FormatMinutes(s.TotalBreakMinutes),
		); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(out io.Writer, summaries []domain.WorkdaySummary) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"date", "employee_id", "status", "clock_in", "clock_out", "worked_minutes", "break_minutes", "worked_hours"}); err != nil {
		return err
	}
	for _, s := range summaries {
		if err := w.Write([]string{
			s.Date,
			s.EmployeeID,
			string(s.Status),
			formatOptionalTime(s.ClockIn),
			formatOptionalTime(s.ClockOut),
			strconv.FormatFloat(s.TotalWorkedMinutes, 'f', 2, 64),
			strconv.FormatFloat(s.TotalBreakMinutes, 'f', 2, 64),
			aggregator.FormatHours(s.TotalWorkedMinutes),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
