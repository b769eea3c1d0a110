// Package driver defines the capabilities the harness consumes from the
// low-level UI automation layer.
//
// The harness never locates pixels or synthesizes input itself; it talks to
// an external driver through the small interfaces here. Selectors are
// opaque strings (accessibility identifiers or labels) defined by the
// application under test.
package driver

import (
	"errors"
	"fmt"
	"time"
)

// Element is an opaque handle to an on-screen element located by Find.
// Handles are valid only for the driver that produced them.
type Element interface {
	// Selector returns the selector the element was located with.
	Selector() string
}

// NotFoundError reports that a driver query could not locate an element.
// It surfaces as a test-visible failure and is never retried automatically.
type NotFoundError struct {
	Selector string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("driver: element not found: %s", e.Selector)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Driver locates elements and performs interactions.
//
// Implementations wrap a real automation backend (device driver, browser
// protocol). The harness ships Scripted, an in-process implementation used
// by scenario execution and tests.
type Driver interface {
	// Find locates the element for a selector. Returns a NotFoundError if
	// the element is absent.
	Find(selector string) (Element, error)

	// Tap performs a single tap on the element.
	Tap(el Element) error

	// TypeText replaces the element's text content with text.
	TypeText(el Element, text string) error

	// Exists reports whether the element is currently present.
	Exists(el Element) bool

	// WaitForExistence blocks until the element is present or the timeout
	// elapses, reporting whether it is present.
	WaitForExistence(el Element, timeout time.Duration) bool

	// CellCount returns the number of populated rows of a table element.
	CellCount(el Element) (int, error)
}

// ScreenCapturer produces the raw pixels of the current screen.
type ScreenCapturer interface {
	CaptureScreen() ([]byte, error)
}

// Activator hands a URL to the OS activation mechanism (deep-link launch).
type Activator interface {
	OpenURL(url string) error
}
