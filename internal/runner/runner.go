// Package runner sequences named UI actions and guarantees each one leaves
// diagnostic evidence behind.
//
// Perform is the single composition point: it executes an action body
// (driver calls plus waits), then captures a screenshot artifact tagged
// with the calling test's name - on every exit path, success or failure.
// A failing action still yields evidence; a failing capture never fails
// the action.
//
// One Runner belongs to one test execution: actions run to completion one
// at a time, and the only shared collaborator across concurrent tests is
// the artifact store, which is safe for that.
package runner

import (
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/shutter/internal/artifact"
	"github.com/roach88/shutter/internal/driver"
	"github.com/roach88/shutter/internal/testctx"
	"github.com/roach88/shutter/internal/wait"
)

// Defaults for the wait knobs. Fixed-delay waits cover effects with no
// observable completion signal; predicate waits poll at PollInterval up to
// TableTimeout.
const (
	DefaultFixedDelay   = 400 * time.Millisecond
	DefaultTableTimeout = 5 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// Recorder receives the runner's evidence events. Implementations must be
// best-effort: they never return errors, because losing the evidence trail
// must not change a test's verdict. journal.RunRecorder is the durable
// implementation; testutil.CapturingRecorder the in-memory one.
type Recorder interface {
	// ActionStarted returns a token correlating the action's events.
	ActionStarted(action string) string
	WaitObserved(action, token, mode string, satisfied bool, elapsed time.Duration)
	CaptureRecorded(action, token, artifact string, captureErr error)
	ActionFinished(action, token string, actionErr error)
}

type nopRecorder struct{}

func (nopRecorder) ActionStarted(string) string                              { return "" }
func (nopRecorder) WaitObserved(string, string, string, bool, time.Duration) {}
func (nopRecorder) CaptureRecorded(string, string, string, error)            {}
func (nopRecorder) ActionFinished(string, string, error)                     {}

// Config assembles a Runner's collaborators.
type Config struct {
	// Driver performs element lookups and interactions. Required.
	Driver driver.Driver

	// Screen captures raw pixels for evidence. Required.
	Screen driver.ScreenCapturer

	// Activator hands deep links to the OS. Required only for
	// OpenDeepLink.
	Activator driver.Activator

	// Artifacts is the evidence store. Required.
	Artifacts *artifact.Store

	// Waits defaults to a system-clock engine.
	Waits *wait.Engine

	// Recorder defaults to a no-op.
	Recorder Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// FixedDelay, TableTimeout, and PollInterval override the wait
	// defaults; zero values keep them.
	FixedDelay   time.Duration
	TableTimeout time.Duration
	PollInterval time.Duration
}

// Runner executes named actions against the UI driver.
type Runner struct {
	driver    driver.Driver
	screen    driver.ScreenCapturer
	activator driver.Activator
	artifacts *artifact.Store
	waits     *wait.Engine
	recorder  Recorder
	logger    *slog.Logger

	fixedDelay   time.Duration
	tableTimeout time.Duration
	pollInterval time.Duration
}

// New validates the config and builds a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Driver == nil {
		return nil, errors.New("runner: config requires a driver")
	}
	if cfg.Screen == nil {
		return nil, errors.New("runner: config requires a screen capturer")
	}
	if cfg.Artifacts == nil {
		return nil, errors.New("runner: config requires an artifact store")
	}

	r := &Runner{
		driver:       cfg.Driver,
		screen:       cfg.Screen,
		activator:    cfg.Activator,
		artifacts:    cfg.Artifacts,
		waits:        cfg.Waits,
		recorder:     cfg.Recorder,
		logger:       cfg.Logger,
		fixedDelay:   cfg.FixedDelay,
		tableTimeout: cfg.TableTimeout,
		pollInterval: cfg.PollInterval,
	}
	if r.waits == nil {
		r.waits = wait.NewEngine()
	}
	if r.recorder == nil {
		r.recorder = nopRecorder{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.fixedDelay == 0 {
		r.fixedDelay = DefaultFixedDelay
	}
	if r.tableTimeout == 0 {
		r.tableTimeout = DefaultTableTimeout
	}
	if r.pollInterval == 0 {
		r.pollInterval = DefaultPollInterval
	}
	return r, nil
}

// Perform executes body as the named action on behalf of tc's test, then
// captures an artifact labeled name and tagged with the test's name.
//
// The capture is the release half of an acquire/release pair: it runs on
// every exit path, including an error or panic out of body, so a failing
// action still leaves evidence. The body's error propagates to the caller
// after the capture; capture errors never do.
func (r *Runner) Perform(tc testctx.Context, name string, body func() error) error {
	return r.perform(tc, name, func(string) error { return body() })
}

// perform is Perform with the recorder token threaded into the body, so
// the named operations can attribute their wait outcomes.
func (r *Runner) perform(tc testctx.Context, name string, body func(token string) error) (err error) {
	token := r.recorder.ActionStarted(name)
	defer func() {
		r.capture(tc, name, token)
		r.recorder.ActionFinished(name, token, err)
	}()

	err = body(token)
	return err
}

// capture writes the evidence screenshot for one finished action.
// Failures are logged and recorded, never propagated: evidence collection
// is best-effort and must not convert a passing test into a failing one.
func (r *Runner) capture(tc testctx.Context, label, token string) {
	img, err := r.screen.CaptureScreen()
	if err != nil {
		r.logger.Warn("screen capture failed", "test", tc.TestName, "label", label, "error", err)
		r.recorder.CaptureRecorded(label, token, "", err)
		return
	}

	name, err := r.artifacts.Capture(tc.TestName, label, img)
	if err != nil {
		r.logger.Warn("artifact write failed", "test", tc.TestName, "label", label, "error", err)
		r.recorder.CaptureRecorded(label, token, "", err)
		return
	}

	r.recorder.CaptureRecorded(label, token, name, nil)
}

// await resolves a wait spec and records the outcome against the action.
func (r *Runner) await(action, token string, spec wait.Spec) (wait.Outcome, error) {
	outcome, err := r.waits.Await(spec)
	if err != nil {
		return outcome, err
	}
	r.recorder.WaitObserved(action, token, spec.Mode(), outcome.Satisfied, outcome.Elapsed)
	return outcome, nil
}
