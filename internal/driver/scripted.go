package driver

import (
	"fmt"
	"sync"
	"time"
)

// PageElement declares one element of a scripted page model.
//
// Scenario files declare the page this way, so the fields carry YAML tags.
// The zero value of every optional field means "present from the start,
// empty, no side effects".
type PageElement struct {
	// Selector is the opaque identifier interactions address the element by.
	Selector string `yaml:"selector"`

	// Kind is a free-form hint ("input", "button", "table", "panel").
	Kind string `yaml:"kind,omitempty"`

	// Text is the element's initial text content.
	Text string `yaml:"text,omitempty"`

	// Rows is the populated row count a table reports once populated.
	Rows int `yaml:"rows,omitempty"`

	// Hidden marks an element absent until some tap reveals it.
	Hidden bool `yaml:"hidden,omitempty"`

	// AppearsAfter makes the element absent for the first N-1 presence
	// queries and present from the Nth on. Models late async rendering
	// without wall-clock time.
	AppearsAfter int `yaml:"appears_after,omitempty"`

	// PopulatesAfter makes a table report zero rows for the first N-1
	// CellCount queries and Rows from the Nth on.
	PopulatesAfter int `yaml:"populates_after,omitempty"`

	// Reveals lists selectors that become present when this element is
	// tapped (e.g. a panel toggle revealing the panel's controls).
	Reveals []string `yaml:"reveals,omitempty"`

	// Clears lists selectors whose text is emptied when this element is
	// tapped (e.g. a go button consuming the address bar).
	Clears []string `yaml:"clears,omitempty"`
}

// Call records one driver invocation for assertions.
type Call struct {
	Op       string // "find", "tap", "type", "exists", "cell_count", "open_url"
	Selector string
	Text     string
}

// Scripted is an in-process Driver over a declared page model.
//
// It exists for the same reason the conformance layer stubs its engine:
// scenario execution and tests need deterministic, dependency-free UI
// behavior. Side effects are declared on the page elements (Reveals,
// Clears) rather than hard-coded, so one Scripted implementation serves
// every scenario.
//
// Scripted also implements ScreenCapturer (deterministic PNG payloads) and
// Activator (records the deep-link URL), standing in for all three external
// capabilities at once. Safe for concurrent use.
type Scripted struct {
	mu       sync.Mutex
	elements map[string]*scriptedState
	calls    []Call
	screens  int
}

type scriptedState struct {
	PageElement
	present        bool
	presenceSeen   int
	rowQueriesSeen int
}

type scriptedElement struct {
	selector string
}

func (e scriptedElement) Selector() string { return e.selector }

// pngMagic is the PNG signature; captured payloads start with it so the
// stored artifacts are recognizably image files.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// NewScripted builds a scripted driver over the declared page.
func NewScripted(page []PageElement) *Scripted {
	d := &Scripted{elements: make(map[string]*scriptedState, len(page))}
	for _, el := range page {
		d.elements[el.Selector] = &scriptedState{
			PageElement: el,
			present:     !el.Hidden && el.AppearsAfter == 0,
		}
	}
	return d
}

func (d *Scripted) record(op, selector, text string) {
	d.calls = append(d.calls, Call{Op: op, Selector: selector, Text: text})
}

// presenceQuery counts one presence observation and reports whether the
// element is present afterwards. Caller holds d.mu.
func (s *scriptedState) presenceQuery() bool {
	s.presenceSeen++
	if !s.present && s.AppearsAfter > 0 && s.presenceSeen >= s.AppearsAfter {
		s.present = true
	}
	return s.present
}

// Find implements Driver.
func (d *Scripted) Find(selector string) (Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("find", selector, "")
	s, ok := d.elements[selector]
	if !ok || !s.presenceQuery() {
		return nil, &NotFoundError{Selector: selector}
	}
	return scriptedElement{selector: selector}, nil
}

// Tap implements Driver. Tapping applies the element's declared side
// effects: revealed selectors become present, cleared selectors lose their
// text.
func (d *Scripted) Tap(el Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.elements[el.Selector()]
	if !ok || !s.present {
		return &NotFoundError{Selector: el.Selector()}
	}
	d.record("tap", el.Selector(), "")

	for _, sel := range s.Reveals {
		if target, ok := d.elements[sel]; ok {
			target.present = true
		}
	}
	for _, sel := range s.Clears {
		if target, ok := d.elements[sel]; ok {
			target.Text = ""
		}
	}
	return nil
}

// TypeText implements Driver. The element's prior content is replaced, not
// appended to.
func (d *Scripted) TypeText(el Element, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.elements[el.Selector()]
	if !ok || !s.present {
		return &NotFoundError{Selector: el.Selector()}
	}
	d.record("type", el.Selector(), text)
	s.Text = text
	return nil
}

// Exists implements Driver.
func (d *Scripted) Exists(el Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("exists", el.Selector(), "")
	s, ok := d.elements[el.Selector()]
	if !ok {
		return false
	}
	return s.presenceQuery()
}

// WaitForExistence implements Driver. In the scripted world there is no
// wall clock: the wait drains the element's remaining appears_after budget
// and reports the resulting presence.
func (d *Scripted) WaitForExistence(el Element, _ time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.elements[el.Selector()]
	if !ok {
		return false
	}
	for i := 0; i <= s.AppearsAfter; i++ {
		if s.presenceQuery() {
			return true
		}
	}
	return false
}

// CellCount implements Driver.
func (d *Scripted) CellCount(el Element) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.elements[el.Selector()]
	if !ok || !s.present {
		return 0, &NotFoundError{Selector: el.Selector()}
	}
	d.record("cell_count", el.Selector(), "")

	s.rowQueriesSeen++
	if s.PopulatesAfter > 0 && s.rowQueriesSeen < s.PopulatesAfter {
		return 0, nil
	}
	return s.Rows, nil
}

// CaptureScreen implements ScreenCapturer. Payloads are deterministic per
// capture ordinal so golden comparisons and overwrite tests are stable.
func (d *Scripted) CaptureScreen() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.screens++
	payload := fmt.Sprintf("scripted-screen-%04d", d.screens)
	return append(append([]byte{}, pngMagic...), payload...), nil
}

// OpenURL implements Activator. The URL is recorded for assertions; the
// scripted world has no OS to hand it to.
func (d *Scripted) OpenURL(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.record("open_url", "", url)
	return nil
}

// Calls returns a snapshot of every recorded driver invocation in order.
func (d *Scripted) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// TapCount returns how many taps the selector received.
func (d *Scripted) TapCount(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.calls {
		if c.Op == "tap" && c.Selector == selector {
			n++
		}
	}
	return n
}

// Text returns the element's current text content.
func (d *Scripted) Text(selector string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.elements[selector]; ok {
		return s.Text
	}
	return ""
}

// SetRows updates a table's populated row count mid-scenario.
func (d *Scripted) SetRows(selector string, rows int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.elements[selector]; ok {
		s.Rows = rows
	}
}
