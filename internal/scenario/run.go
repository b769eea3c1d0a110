package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/shutter/internal/artifact"
	"github.com/roach88/shutter/internal/driver"
	"github.com/roach88/shutter/internal/journal"
	"github.com/roach88/shutter/internal/runner"
	"github.com/roach88/shutter/internal/testctx"
	"github.com/roach88/shutter/internal/testutil"
)

// TraceEvent is one journal event projected for assertions and golden
// comparison. Tokens, elapsed times, and wall-clock timestamps are
// excluded: they vary run to run and would make goldens flap.
type TraceEvent struct {
	Kind      string `json:"kind"`
	Action    string `json:"action"`
	Mode      string `json:"mode,omitempty"`
	Satisfied *bool  `json:"satisfied,omitempty"`
	Artifact  string `json:"artifact,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Seq       int64  `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step ran and every
	// assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the run in the journal.
	RunID string `json:"run_id"`

	// Trace contains the run's journal events in seq order.
	Trace []TraceEvent `json:"trace"`

	// Artifacts lists the artifact files the run left behind, in the
	// store's listing order.
	Artifacts []string `json:"artifacts,omitempty"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Options configures where a scenario run leaves its evidence.
type Options struct {
	// ArtifactDir is the artifact store directory. Empty means a
	// throwaway temp directory, removed after the run.
	ArtifactDir string

	// JournalPath is the journal database path. Empty means in-memory.
	JournalPath string

	// Logger defaults to a discard logger so scenario runs stay quiet
	// inside test output.
	Logger *slog.Logger
}

// Run executes the scenario with throwaway evidence storage.
func Run(s *Scenario) (*Result, error) {
	return RunWith(s, Options{})
}

// RunWith executes the scenario and evaluates its assertions.
//
// The run uses the scripted driver and a sequenced journal clock, so the
// produced trace depends only on the scenario definition. Step failures
// stop the flow and fail the result; the remaining assertions are skipped
// because the trace they would inspect is incomplete. Run errors are
// reserved for infrastructure failures (journal or store unusable).
func RunWith(s *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dir := opts.ArtifactDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "shutter-scenario-*")
		if err != nil {
			return nil, fmt.Errorf("create artifact dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}
	store := artifact.NewStore(dir, artifact.WithLogger(logger))

	journalPath := opts.JournalPath
	if journalPath == "" {
		journalPath = ":memory:"
	}
	j, err := journal.Open(journalPath, journal.WithSequencer(testutil.NewDeterministicClock()))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	ctx := context.Background()
	runID, err := j.BeginRun(ctx, s.TestName, s.Name)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	drv := driver.NewScripted(s.Page)
	r, err := runner.New(runner.Config{
		Driver:    drv,
		Screen:    drv,
		Activator: drv,
		Artifacts: store,
		Recorder:  j.Recorder(runID, logger),
		Logger:    logger,
		// The scripted driver advances on queries, not wall time, so
		// the waits only need to be long enough to let it.
		FixedDelay:   time.Millisecond,
		TableTimeout: 250 * time.Millisecond,
		PollInterval: time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("build runner: %w", err)
	}

	result := &Result{Pass: true, RunID: runID}
	tc := testctx.New(s.TestName)

	flowOK := true
	for i, step := range s.Steps {
		if err := executeStep(r, tc, s, step); err != nil {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %v", i, step.Do, err))
			flowOK = false
			break
		}
	}

	events, err := j.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	result.Trace = projectTrace(events)

	artifacts, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	result.Artifacts = artifacts

	if flowOK {
		for _, msg := range EvaluateAssertions(result, s.Assertions) {
			result.AddError(msg)
		}
	}

	if err := j.FinishRun(ctx, runID, result.Pass); err != nil {
		return nil, fmt.Errorf("finish run: %w", err)
	}
	return result, nil
}

// executeStep dispatches one step to the runner operation it names.
func executeStep(r *runner.Runner, tc testctx.Context, s *Scenario, step Step) error {
	switch step.Do {
	case StepLoadURL:
		return r.LoadURL(tc, step.URL)
	case StepOpenToolPanel:
		return r.OpenToolPanel(tc)
	case StepSelectTab:
		return r.SelectTab(tc, step.Tab)
	case StepSearch:
		return r.Search(tc, step.Query)
	case StepWaitTable:
		// An unsatisfied wait is not a step failure; the verdict lands
		// in the trace for wait_satisfied assertions to judge.
		_, err := r.WaitForTableRows(tc, step.Selector)
		return err
	case StepDeepLink:
		return r.OpenDeepLink(tc, s.Scheme, step.Target)
	default:
		return fmt.Errorf("unknown step %q", step.Do)
	}
}

// projectTrace strips the per-run volatile fields off the journal events.
func projectTrace(events []journal.Event) []TraceEvent {
	trace := make([]TraceEvent, len(events))
	for i, ev := range events {
		trace[i] = TraceEvent{
			Kind:      ev.Kind,
			Action:    ev.Action,
			Mode:      ev.Mode,
			Satisfied: ev.Satisfied,
			Artifact:  ev.Artifact,
			Detail:    ev.Detail,
			Seq:       ev.Seq,
		}
	}
	return trace
}
