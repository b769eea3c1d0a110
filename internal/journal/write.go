package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Event kinds.
const (
	KindActionStarted  = "action_started"
	KindWaitObserved   = "wait_observed"
	KindCapture        = "capture"
	KindActionFinished = "action_finished"
)

// BeginRun opens a new run row and returns its ID.
//
// Run IDs are ULIDs: they embed the start timestamp, so lexicographic
// order over run IDs is chronological.
func (j *Journal) BeginRun(ctx context.Context, testName, scenario string) (string, error) {
	runID := ulid.Make().String()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, test_name, scenario, started_at)
		VALUES (?, ?, ?, ?)
	`, runID, testName, scenario, nowRFC3339())
	if err != nil {
		return "", fmt.Errorf("journal: begin run: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the run's end time and verdict.
func (j *Journal) FinishRun(ctx context.Context, runID string, pass bool) error {
	_, err := j.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, pass = ? WHERE id = ?
	`, nowRFC3339(), pass, runID)
	if err != nil {
		return fmt.Errorf("journal: finish run %s: %w", runID, err)
	}
	return nil
}

// ActionStarted records the start of a named action and returns the token
// that correlates the action's subsequent wait/capture/finish events.
// Tokens are UUIDv7 so they also sort in creation order.
func (j *Journal) ActionStarted(ctx context.Context, runID, action string) (string, error) {
	token := uuid.Must(uuid.NewV7()).String()

	err := j.insertEvent(ctx, event{
		runID:  runID,
		kind:   KindActionStarted,
		action: action,
		token:  token,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// WaitObserved records the outcome of one wait inside an action.
func (j *Journal) WaitObserved(ctx context.Context, runID, action, token, mode string, satisfied bool, elapsed time.Duration) error {
	ms := elapsed.Milliseconds()
	return j.insertEvent(ctx, event{
		runID:     runID,
		kind:      KindWaitObserved,
		action:    action,
		token:     token,
		mode:      mode,
		satisfied: &satisfied,
		elapsedMS: &ms,
	})
}

// CaptureRecorded records the artifact capture that closed an action.
// A failed capture records its error text; the artifact name is empty.
func (j *Journal) CaptureRecorded(ctx context.Context, runID, action, token, artifact string, captureErr error) error {
	ev := event{
		runID:    runID,
		kind:     KindCapture,
		action:   action,
		token:    token,
		artifact: artifact,
	}
	if captureErr != nil {
		ev.detail = captureErr.Error()
	}
	return j.insertEvent(ctx, ev)
}

// ActionFinished records the action's terminal result.
func (j *Journal) ActionFinished(ctx context.Context, runID, action, token string, actionErr error) error {
	ok := actionErr == nil
	ev := event{
		runID:     runID,
		kind:      KindActionFinished,
		action:    action,
		token:     token,
		satisfied: &ok,
	}
	if actionErr != nil {
		ev.detail = actionErr.Error()
	}
	return j.insertEvent(ctx, ev)
}

type event struct {
	runID     string
	kind      string
	action    string
	token     string
	mode      string
	satisfied *bool
	elapsedMS *int64
	artifact  string
	detail    string
}

func (j *Journal) insertEvent(ctx context.Context, ev event) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events
		(run_id, seq, kind, action, token, mode, satisfied, elapsed_ms, artifact, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.runID,
		j.seq.Next(),
		ev.kind,
		ev.action,
		ev.token,
		ev.mode,
		ev.satisfied,
		ev.elapsedMS,
		ev.artifact,
		ev.detail,
		nowRFC3339(),
	)
	if err != nil {
		return fmt.Errorf("journal: write %s event: %w", ev.kind, err)
	}
	return nil
}
