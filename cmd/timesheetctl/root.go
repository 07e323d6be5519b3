package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "timesheetctl",
		Short: "Offline tools for timesheet punches",
		Long: `timesheetctl works on JSON exports of time events, the same shape the
timesheet service returns from GET /api/v1/timesheet/events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSummarizeCmd())
	return root
}
