package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenarioFromFile(t *testing.T) {
	s, err := LoadScenario("testdata/browse-basic.yaml")
	require.NoError(t, err)

	assert.Equal(t, "browse-basic", s.Name)
	assert.Equal(t, "TestBrowseBasic", s.TestName)
	assert.Len(t, s.Page, 6)
	assert.Len(t, s.Steps, 4)
	assert.Len(t, s.Assertions, 4)
	assert.Equal(t, StepLoadURL, s.Steps[0].Do)
	assert.Equal(t, "https://example.com", s.Steps[0].URL)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/no-such-scenario.yaml")
	assert.Error(t, err)
}

func TestParseScenarioRejectsUnknownField(t *testing.T) {
	// "assertion:" instead of "assertions:" is the classic typo the
	// strict decoder exists to catch.
	_, err := ParseScenario([]byte(`
name: typo
description: a scenario with a misspelled key
test_name: TestTypo
page:
  - selector: address-bar
steps:
  - do: open_tool_panel
assertion:
  - type: artifact_count
    count: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestParseScenarioValidation(t *testing.T) {
	valid := `
name: ok
description: a minimal valid scenario
test_name: TestOK
page:
  - selector: tools-button
steps:
  - do: open_tool_panel
assertions:
  - type: artifact_count
    count: 1
`
	if _, err := ParseScenario([]byte(valid)); err != nil {
		t.Fatalf("baseline scenario must parse: %v", err)
	}

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing name",
			yaml: `
description: d
test_name: TestX
page:
  - selector: s
steps:
  - do: open_tool_panel
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: "name is required",
		},
		{
			name: "missing test_name",
			yaml: `
name: n
description: d
page:
  - selector: s
steps:
  - do: open_tool_panel
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: "test_name is required",
		},
		{
			name: "empty steps",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - selector: s
steps: []
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: "steps list is required",
		},
		{
			name: "load_url without url",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - selector: s
steps:
  - do: load_url
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: "url is required",
		},
		{
			name: "unknown step",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - selector: s
steps:
  - do: teleport
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: `unknown step "teleport"`,
		},
		{
			name: "deep_link without scheme",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - selector: s
steps:
  - do: deep_link
    target: https://example.com
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: "scheme is required",
		},
		{
			name: "page element without selector",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - kind: input
steps:
  - do: open_tool_panel
assertions:
  - type: artifact_count
    count: 1
`,
			wantErr: "selector is required",
		},
		{
			name: "unknown assertion type",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - selector: s
steps:
  - do: open_tool_panel
assertions:
  - type: screenshot_matches
`,
			wantErr: "unknown assertion type",
		},
		{
			name: "trace_order without actions",
			yaml: `
name: n
description: d
test_name: TestX
page:
  - selector: s
steps:
  - do: open_tool_panel
assertions:
  - type: trace_order
`,
			wantErr: "actions list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
