package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("journal: run not found")

// RunInfo describes one run row.
type RunInfo struct {
	ID         string `json:"id"`
	TestName   string `json:"test_name"`
	Scenario   string `json:"scenario,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	// Pass is nil while the run is still in flight.
	Pass *bool `json:"pass,omitempty"`
}

// Event is one journal event read back for a trace.
type Event struct {
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Action    string `json:"action,omitempty"`
	Token     string `json:"token,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Satisfied *bool  `json:"satisfied,omitempty"`
	ElapsedMS *int64 `json:"elapsed_ms,omitempty"`
	Artifact  string `json:"artifact,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// GetRun returns the run row for an ID.
func (j *Journal) GetRun(ctx context.Context, runID string) (RunInfo, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, test_name, scenario, started_at, finished_at, pass
		FROM runs WHERE id = ?
	`, runID)

	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("journal: get run %s: %w", runID, err)
	}
	return info, nil
}

// ListRuns returns all runs in start order (run IDs are ULIDs, so ordering
// by ID is chronological).
func (j *Journal) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, test_name, scenario, started_at, finished_at, pass
		FROM runs ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("journal: list runs: %w", err)
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run's events ordered by seq ASC.
// Returns an empty slice (not nil) for a run with no events.
func (j *Journal) ReadRun(ctx context.Context, runID string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, action, token, mode, satisfied, elapsed_ms, artifact, detail, created_at
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: read run %s: %w", runID, err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		var satisfied sql.NullBool
		var elapsed sql.NullInt64
		err := rows.Scan(&ev.Seq, &ev.Kind, &ev.Action, &ev.Token, &ev.Mode,
			&satisfied, &elapsed, &ev.Artifact, &ev.Detail, &ev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("journal: read run %s: %w", runID, err)
		}
		if satisfied.Valid {
			v := satisfied.Bool
			ev.Satisfied = &v
		}
		if elapsed.Valid {
			v := elapsed.Int64
			ev.ElapsedMS = &v
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: read run %s: %w", runID, err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunInfo, error) {
	var info RunInfo
	var finished sql.NullString
	var pass sql.NullBool
	err := row.Scan(&info.ID, &info.TestName, &info.Scenario, &info.StartedAt, &finished, &pass)
	if err != nil {
		return RunInfo{}, err
	}
	if finished.Valid {
		info.FinishedAt = finished.String
	}
	if pass.Valid {
		v := pass.Bool
		info.Pass = &v
	}
	return info, nil
}
