// Package scenario defines declarative UI test scenarios and executes them.
//
// A scenario YAML file declares a page model, a sequence of named actions,
// and assertions over the resulting evidence (artifacts and the journal
// trace). Scenarios run against the scripted driver, so execution is
// deterministic and the trace is suitable for golden comparison.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shutter/internal/driver"
)

// Scenario defines one declarative UI test.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the run in the
	// journal and the golden file on disk.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TestName tags the run's artifacts, exactly as a host test's name
	// would.
	TestName string `yaml:"test_name"`

	// Scheme is the deep-link URL scheme. Required only when a step uses
	// deep_link.
	Scheme string `yaml:"scheme,omitempty"`

	// Page declares the scripted page model the steps run against.
	Page []driver.PageElement `yaml:"page"`

	// Steps is the ordered action sequence.
	Steps []Step `yaml:"steps"`

	// Assertions validate the artifacts and trace after the steps ran.
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one named action. Do selects the action; the remaining
// fields are that action's arguments.
type Step struct {
	// Do is the action to perform: load_url, open_tool_panel,
	// select_tab, search, wait_table, or deep_link.
	Do string `yaml:"do"`

	// URL is the address to load (load_url).
	URL string `yaml:"url,omitempty"`

	// Tab is the tool-panel tab name (select_tab).
	Tab string `yaml:"tab,omitempty"`

	// Query is the search text (search).
	Query string `yaml:"query,omitempty"`

	// Selector names the table to poll (wait_table).
	Selector string `yaml:"selector,omitempty"`

	// Target is the URL carried inside a deep link (deep_link).
	Target string `yaml:"target,omitempty"`
}

// Step kinds.
const (
	StepLoadURL       = "load_url"
	StepOpenToolPanel = "open_tool_panel"
	StepSelectTab     = "select_tab"
	StepSearch        = "search"
	StepWaitTable     = "wait_table"
	StepDeepLink      = "deep_link"
)

// Assertion validates artifacts or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "artifact_exists": the named artifact was written
	// - "artifact_count": exactly Count artifacts exist
	// - "trace_contains": an event with Action (and Kind, if set) is in the trace
	// - "trace_order": action_started events appear in the given order
	// - "wait_satisfied": the action's wait resolved with the given verdict
	Type string `yaml:"type"`

	// Name is the artifact file name (artifact_exists).
	Name string `yaml:"name,omitempty"`

	// Count is the expected artifact count (artifact_count).
	Count int `yaml:"count,omitempty"`

	// Action is the action label (trace_contains, wait_satisfied).
	Action string `yaml:"action,omitempty"`

	// Kind narrows trace_contains to one event kind.
	Kind string `yaml:"kind,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Satisfied is the expected wait verdict (wait_satisfied).
	// Defaults to true when omitted.
	Satisfied *bool `yaml:"satisfied,omitempty"`
}

// Assertion type constants.
const (
	AssertArtifactExists = "artifact_exists"
	AssertArtifactCount  = "artifact_count"
	AssertTraceContains  = "trace_contains"
	AssertTraceOrder     = "trace_order"
	AssertWaitSatisfied  = "wait_satisfied"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.TestName == "" {
		return fmt.Errorf("test_name is required")
	}
	if len(s.Page) == 0 {
		return fmt.Errorf("page list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, el := range s.Page {
		if el.Selector == "" {
			return fmt.Errorf("page[%d]: selector is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step, s.Scheme); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates one step against its action's argument contract.
func validateStep(index int, step *Step, scheme string) error {
	switch step.Do {
	case StepLoadURL:
		if step.URL == "" {
			return fmt.Errorf("steps[%d]: url is required for load_url", index)
		}
	case StepOpenToolPanel:
		// No arguments.
	case StepSelectTab:
		if step.Tab == "" {
			return fmt.Errorf("steps[%d]: tab is required for select_tab", index)
		}
	case StepSearch:
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required for search", index)
		}
	case StepWaitTable:
		if step.Selector == "" {
			return fmt.Errorf("steps[%d]: selector is required for wait_table", index)
		}
	case StepDeepLink:
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for deep_link", index)
		}
		if scheme == "" {
			return fmt.Errorf("steps[%d]: scenario scheme is required for deep_link", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown step %q", index, step.Do)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertArtifactExists:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for artifact_exists", index)
		}
	case AssertArtifactCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for artifact_count", index)
		}
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertWaitSatisfied:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for wait_satisfied", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
