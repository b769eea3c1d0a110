package journal

import (
	"context"
	"log/slog"
	"time"
)

// RunRecorder adapts one run of a Journal to the runner's best-effort
// Recorder contract: journaling failures are logged and swallowed so that
// losing the evidence trail never converts a passing test into a failing
// one.
type RunRecorder struct {
	j      *Journal
	runID  string
	logger *slog.Logger
}

// Recorder returns a best-effort recorder bound to runID.
func (j *Journal) Recorder(runID string, logger *slog.Logger) *RunRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRecorder{j: j, runID: runID, logger: logger}
}

// RunID returns the run this recorder writes to.
func (r *RunRecorder) RunID() string {
	return r.runID
}

// ActionStarted records the action start and returns its correlation token.
// On journaling failure the token is empty and the action proceeds anyway.
func (r *RunRecorder) ActionStarted(action string) string {
	token, err := r.j.ActionStarted(context.Background(), r.runID, action)
	if err != nil {
		r.logger.Warn("journal write failed", "kind", KindActionStarted, "action", action, "error", err)
		return ""
	}
	return token
}

// WaitObserved records a wait outcome.
func (r *RunRecorder) WaitObserved(action, token, mode string, satisfied bool, elapsed time.Duration) {
	if err := r.j.WaitObserved(context.Background(), r.runID, action, token, mode, satisfied, elapsed); err != nil {
		r.logger.Warn("journal write failed", "kind", KindWaitObserved, "action", action, "error", err)
	}
}

// CaptureRecorded records a capture result.
func (r *RunRecorder) CaptureRecorded(action, token, artifact string, captureErr error) {
	if err := r.j.CaptureRecorded(context.Background(), r.runID, action, token, artifact, captureErr); err != nil {
		r.logger.Warn("journal write failed", "kind", KindCapture, "action", action, "error", err)
	}
}

// ActionFinished records the action's terminal result.
func (r *RunRecorder) ActionFinished(action, token string, actionErr error) {
	if err := r.j.ActionFinished(context.Background(), r.runID, action, token, actionErr); err != nil {
		r.logger.Warn("journal write failed", "kind", KindActionFinished, "action", action, "error", err)
	}
}
