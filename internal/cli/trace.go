package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/shutter/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Action   string // optional - filter to specific action
}

// TraceResult holds the timeline output for one run.
type TraceResult struct {
	Run      journal.RunInfo `json:"run"`
	Timeline []journal.Event `json:"timeline"`
	Stats    TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Actions     int `json:"actions"`
	Waits       int `json:"waits"`
	Captures    int `json:"captures"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect journaled runs",
		Long: `Inspect the runs recorded in a journal database.

Without --run, lists every recorded run with its verdict. With --run,
prints that run's event timeline: action starts, wait outcomes, captures,
and action results.

Examples:
  shutter trace --db ./journal.db
  shutter trace --db ./journal.db --run 01J5X8...
  shutter trace --db ./journal.db --run 01J5X8... --action load_url --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (default: list runs)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter timeline to one action label")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	// The journal schema is applied on open, so opening a missing file
	// would silently create an empty journal. Reject that up front.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "journal database not found", err)
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := context.Background()

	if opts.RunID == "" {
		return listRuns(ctx, j, opts, cmd)
	}
	return showRun(ctx, j, opts, cmd)
}

// listRuns prints every recorded run.
func listRuns(ctx context.Context, j *journal.Journal, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := j.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(map[string]interface{}{
			"runs":  runs,
			"count": len(runs),
		})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "(no runs)")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %-8s  %s", run.ID, runVerdict(run), run.TestName)
		if run.Scenario != "" {
			fmt.Fprintf(w, "  (%s)", run.Scenario)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// showRun prints one run's event timeline.
func showRun(ctx context.Context, j *journal.Journal, opts *TraceOptions, cmd *cobra.Command) error {
	run, err := j.GetRun(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, journal.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := j.ReadRun(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run events", err)
	}

	if opts.Action != "" {
		filtered := events[:0]
		for _, ev := range events {
			if ev.Action == opts.Action {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	result := TraceResult{Run: run, Timeline: events, Stats: traceStats(events)}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(result)
	}
	outputTraceText(cmd, result, opts.Verbose)
	return nil
}

// traceStats summarizes a timeline.
func traceStats(events []journal.Event) TraceStats {
	stats := TraceStats{TotalEvents: len(events)}
	for _, ev := range events {
		switch ev.Kind {
		case journal.KindActionStarted:
			stats.Actions++
		case journal.KindWaitObserved:
			stats.Waits++
		case journal.KindCapture:
			stats.Captures++
		}
	}
	return stats
}

// outputTraceText prints the timeline in a human-readable layout.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Test: %s\n", result.Run.TestName)
	if result.Run.Scenario != "" {
		fmt.Fprintf(w, "Scenario: %s\n", result.Run.Scenario)
	}
	fmt.Fprintf(w, "Verdict: %s\n", runVerdict(result.Run))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	} else {
		for _, ev := range result.Timeline {
			formatTimelineEvent(w, ev, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Actions:      %d\n", result.Stats.Actions)
	fmt.Fprintf(w, "  Waits:        %d\n", result.Stats.Waits)
	fmt.Fprintf(w, "  Captures:     %d\n", result.Stats.Captures)
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w interface{ Write([]byte) (int, error) }, ev journal.Event, verbose bool) {
	switch ev.Kind {
	case journal.KindActionStarted:
		fmt.Fprintf(w, "  [%d] START %s\n", ev.Seq, ev.Action)

	case journal.KindWaitObserved:
		verdict := "timed out"
		if ev.Satisfied != nil && *ev.Satisfied {
			verdict = "satisfied"
		}
		fmt.Fprintf(w, "  [%d] WAIT  %s (%s, %s", ev.Seq, ev.Action, ev.Mode, verdict)
		if ev.ElapsedMS != nil {
			fmt.Fprintf(w, ", %dms", *ev.ElapsedMS)
		}
		fmt.Fprintln(w, ")")

	case journal.KindCapture:
		if ev.Artifact != "" {
			fmt.Fprintf(w, "  [%d] SHOT  %s -> %s\n", ev.Seq, ev.Action, ev.Artifact)
		} else {
			fmt.Fprintf(w, "  [%d] SHOT  %s failed: %s\n", ev.Seq, ev.Action, ev.Detail)
		}

	case journal.KindActionFinished:
		verdict := "ok"
		if ev.Satisfied != nil && !*ev.Satisfied {
			verdict = "failed"
		}
		fmt.Fprintf(w, "  [%d] END   %s (%s)\n", ev.Seq, ev.Action, verdict)
		if verbose && ev.Detail != "" {
			fmt.Fprintf(w, "       %s\n", ev.Detail)
		}
	}
}

// runVerdict renders a run's verdict column.
func runVerdict(run journal.RunInfo) string {
	if run.Pass == nil {
		return "RUNNING"
	}
	if *run.Pass {
		return "PASS"
	}
	return "FAIL"
}
