// Package wait implements bounded waiting for asynchronous UI work.
//
// UI updates (network loads, DOM mutations, animations) complete at
// unpredictable times. The engine resolves that uncertainty two ways:
//
// Predicate mode polls a caller-supplied condition at a fixed cadence and
// exits as soon as the condition holds. This is the preferred mode and the
// core reliability mechanism - it avoids ad hoc sleeps without over-waiting.
//
// Fixed-delay mode sleeps unconditionally and then reports success. It
// exists only for effects with no completion signal observable from outside
// the application (e.g. animations). By construction a fixed delay either
// under-waits (flaky) or over-waits (slow), so call sites should be upgraded
// to predicate mode whenever a real signal becomes observable.
//
// A timed-out predicate wait is a signaled degradation, not a failure: Await
// returns Outcome{Satisfied: false} and the caller decides whether to
// escalate. Only malformed specs produce errors.
//
// The engine never parallelizes polling. Each test execution owns its own
// Engine instance; instances share no state. Cancellation is the host test
// runner's responsibility - no token is threaded through waits.
package wait

import (
	"fmt"
	"time"
)

// MinPollInterval is the smallest accepted polling cadence. Tighter loops
// burn CPU without observing the UI any faster.
const MinPollInterval = time.Millisecond

// Spec describes a single wait. Exactly one mode must be set: predicate
// mode (Predicate, Timeout, PollInterval) or fixed-delay mode (FixedDelay).
type Spec struct {
	// Predicate is evaluated until it returns true or Timeout elapses.
	Predicate func() bool

	// Timeout bounds predicate mode. Ignored in fixed-delay mode.
	Timeout time.Duration

	// PollInterval is the cadence between predicate evaluations.
	// Must be positive and no larger than Timeout.
	PollInterval time.Duration

	// FixedDelay selects fixed-delay mode when Predicate is nil.
	FixedDelay time.Duration
}

// ForPredicate builds a predicate-mode spec.
func ForPredicate(pred func() bool, timeout, pollInterval time.Duration) Spec {
	return Spec{Predicate: pred, Timeout: timeout, PollInterval: pollInterval}
}

// ForDelay builds a fixed-delay spec.
func ForDelay(d time.Duration) Spec {
	return Spec{FixedDelay: d}
}

// Mode names used in journals and traces.
const (
	ModePredicate = "predicate"
	ModeDelay     = "fixed_delay"
)

// Mode returns the mode name for the spec.
func (s Spec) Mode() string {
	if s.Predicate != nil {
		return ModePredicate
	}
	return ModeDelay
}

// Outcome reports how a wait resolved.
type Outcome struct {
	// Satisfied is true if the predicate held before the timeout, or
	// always true for fixed-delay waits.
	Satisfied bool

	// Elapsed is the wall time spent waiting.
	Elapsed time.Duration
}

// ConfigError reports a malformed Spec. Violating the spec invariants is a
// configuration mistake at the call site, not a runtime condition.
type ConfigError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("wait: invalid spec: %s", e.Reason)
}

func (s Spec) validate() error {
	if s.Predicate == nil {
		if s.FixedDelay < 0 {
			return &ConfigError{Reason: fmt.Sprintf("negative fixed delay %v", s.FixedDelay)}
		}
		return nil
	}
	if s.FixedDelay != 0 {
		return &ConfigError{Reason: "both predicate and fixed delay set"}
	}
	if s.PollInterval <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("poll interval %v must be positive", s.PollInterval)}
	}
	if s.PollInterval > s.Timeout {
		return &ConfigError{Reason: fmt.Sprintf("poll interval %v exceeds timeout %v", s.PollInterval, s.Timeout)}
	}
	return nil
}

// Engine evaluates wait specs. The zero value is not usable; construct with
// NewEngine.
type Engine struct {
	now   func() time.Time
	sleep func(time.Duration)
}

// NewEngine creates an engine backed by the system clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now, sleep: time.Sleep}
}

// Await resolves the spec and reports the outcome.
//
// Predicate mode: the predicate is evaluated immediately and then at
// PollInterval cadence, returning as soon as one evaluation holds (no wait
// for the next tick). After Timeout elapses with no true evaluation the
// outcome is Satisfied=false; Elapsed may overshoot Timeout by at most one
// poll interval.
//
// Fixed-delay mode: suspends for FixedDelay and reports Satisfied=true.
func (e *Engine) Await(spec Spec) (Outcome, error) {
	if err := spec.validate(); err != nil {
		return Outcome{}, err
	}

	start := e.now()

	if spec.Predicate == nil {
		e.sleep(spec.FixedDelay)
		return Outcome{Satisfied: true, Elapsed: e.now().Sub(start)}, nil
	}

	interval := spec.PollInterval
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	deadline := start.Add(spec.Timeout)

	for {
		if spec.Predicate() {
			return Outcome{Satisfied: true, Elapsed: e.now().Sub(start)}, nil
		}
		if !e.now().Before(deadline) {
			return Outcome{Satisfied: false, Elapsed: e.now().Sub(start)}, nil
		}
		e.sleep(interval)
	}
}
