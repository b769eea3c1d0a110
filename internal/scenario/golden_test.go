package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowseBasicGolden(t *testing.T) {
	s, err := LoadScenario("testdata/browse-basic.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestGoldenTraceIsReproducible(t *testing.T) {
	s, err := LoadScenario("testdata/browse-basic.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Trace, second.Trace, "the projected trace depends only on the scenario")
	assert.Equal(t, first.Artifacts, second.Artifacts)
}
