package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Kind: "action_started", Action: "load_url", Seq: 1},
		{Kind: "wait_observed", Action: "load_url", Mode: "fixed_delay", Satisfied: boolPtr(true), Seq: 2},
		{Kind: "capture", Action: "load_url", Artifact: "TestX_load_url.png", Seq: 3},
		{Kind: "action_finished", Action: "load_url", Satisfied: boolPtr(true), Seq: 4},
		{Kind: "action_started", Action: "table_populated", Seq: 5},
		{Kind: "wait_observed", Action: "table_populated", Mode: "predicate", Satisfied: boolPtr(false), Seq: 6},
	}
}

func TestAssertArtifactExists(t *testing.T) {
	artifacts := []string{"TestX_load_url.png", "TestX_search.png"}

	assert.NoError(t, assertArtifactExists(artifacts, Assertion{Name: "TestX_search.png"}))

	err := assertArtifactExists(artifacts, Assertion{Name: "TestX_missing.png"})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertArtifactExists, ae.Type)
}

func TestAssertArtifactCount(t *testing.T) {
	artifacts := []string{"a.png", "b.png"}

	assert.NoError(t, assertArtifactCount(artifacts, Assertion{Count: 2}))
	assert.Error(t, assertArtifactCount(artifacts, Assertion{Count: 3}))
	assert.NoError(t, assertArtifactCount(nil, Assertion{Count: 0}))
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "load_url"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "load_url", Kind: "capture"}))
	assert.Error(t, assertTraceContains(trace, Assertion{Action: "load_url", Kind: "no_such_kind"}))
	assert.Error(t, assertTraceContains(trace, Assertion{Action: "search"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"load_url", "table_populated"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"table_populated", "load_url"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")

	err = assertTraceOrder(trace, Assertion{Actions: []string{"load_url", "search"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action: search")
}

func TestAssertWaitSatisfied(t *testing.T) {
	trace := sampleTrace()

	// Expected verdict defaults to satisfied.
	assert.NoError(t, assertWaitSatisfied(trace, Assertion{Action: "load_url"}))
	assert.NoError(t, assertWaitSatisfied(trace, Assertion{Action: "table_populated", Satisfied: boolPtr(false)}))
	assert.Error(t, assertWaitSatisfied(trace, Assertion{Action: "table_populated"}))
	assert.Error(t, assertWaitSatisfied(trace, Assertion{Action: "search"}))
}

func TestAssertionErrorMessage(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceOrder,
		Expected: "actions in order: [a b]",
		Actual:   "b (pos 2) should be before a (pos 5)",
		Trace:    sampleTrace(),
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: trace_order")
	assert.Contains(t, msg, "Expected: actions in order")
	assert.Contains(t, msg, "Full trace:")
	assert.Contains(t, msg, "[1] action_started load_url")
}

func TestEvaluateAssertionsCollectsAllFailures(t *testing.T) {
	result := &Result{
		Trace:     sampleTrace(),
		Artifacts: []string{"TestX_load_url.png"},
	}

	msgs := EvaluateAssertions(result, []Assertion{
		{Type: AssertArtifactExists, Name: "TestX_load_url.png"},
		{Type: AssertArtifactCount, Count: 9},
		{Type: AssertTraceContains, Action: "nope"},
	})

	require.Len(t, msgs, 2, "one assertion passes, two fail")
	assert.Contains(t, msgs[0], "artifact_count")
	assert.Contains(t, msgs[1], "trace_contains")
}
