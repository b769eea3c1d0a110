package scenario

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace so the failure message is debuggable on its own.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Seq, ev.Kind, ev.Action)
		}
	}
	return buf.String()
}

// assertArtifactExists checks that the named artifact was written.
func assertArtifactExists(artifacts []string, assertion Assertion) error {
	for _, name := range artifacts {
		if name == assertion.Name {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertArtifactExists,
		Expected: fmt.Sprintf("artifact %s", assertion.Name),
		Actual:   fmt.Sprintf("not among %v", artifacts),
	}
}

// assertArtifactCount checks the exact artifact count.
func assertArtifactCount(artifacts []string, assertion Assertion) error {
	if len(artifacts) != assertion.Count {
		return &AssertionError{
			Type:     AssertArtifactCount,
			Expected: fmt.Sprintf("%d artifacts", assertion.Count),
			Actual:   fmt.Sprintf("%d artifacts: %v", len(artifacts), artifacts),
		}
	}
	return nil
}

// assertTraceContains checks that an event with the action (and kind, when
// set) appears in the trace.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range trace {
		if ev.Action != assertion.Action {
			continue
		}
		if assertion.Kind == "" || ev.Kind == assertion.Kind {
			return nil
		}
	}

	expected := fmt.Sprintf("event for action %s", assertion.Action)
	if assertion.Kind != "" {
		expected = fmt.Sprintf("%s event for action %s", assertion.Kind, assertion.Action)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions started in the given order.
// Actions don't need to be consecutive; intervening actions are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// First position of each expected action's start event, 1-indexed so
	// zero means missing.
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Kind != "action_started" {
			continue
		}
		for _, action := range assertion.Actions {
			if ev.Action == action && positions[action] == 0 {
				positions[action] = i + 1
			}
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev, curr := assertion.Actions[i-1], assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertWaitSatisfied checks the verdict of the action's wait event.
// The expected verdict defaults to satisfied.
func assertWaitSatisfied(trace []TraceEvent, assertion Assertion) error {
	expected := true
	if assertion.Satisfied != nil {
		expected = *assertion.Satisfied
	}

	for _, ev := range trace {
		if ev.Kind != "wait_observed" || ev.Action != assertion.Action {
			continue
		}
		if ev.Satisfied != nil && *ev.Satisfied == expected {
			return nil
		}
		actual := "no verdict"
		if ev.Satisfied != nil {
			actual = fmt.Sprintf("satisfied=%v", *ev.Satisfied)
		}
		return &AssertionError{
			Type:     AssertWaitSatisfied,
			Expected: fmt.Sprintf("wait for %s with satisfied=%v", assertion.Action, expected),
			Actual:   actual,
			Trace:    trace,
		}
	}

	return &AssertionError{
		Type:     AssertWaitSatisfied,
		Expected: fmt.Sprintf("wait event for action %s", assertion.Action),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertArtifactExists:
			err = assertArtifactExists(result.Artifacts, assertion)
		case AssertArtifactCount:
			err = assertArtifactCount(result.Artifacts, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertWaitSatisfied:
			err = assertWaitSatisfied(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
