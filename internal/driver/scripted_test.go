package driver

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browserPage() []PageElement {
	return []PageElement{
		{Selector: "address-bar", Kind: "input", Text: "about:blank"},
		{Selector: "go-button", Kind: "button", Clears: []string{"address-bar"}},
		{Selector: "tools-button", Kind: "button", Reveals: []string{"tool-panel", "tab-network"}},
		{Selector: "tool-panel", Kind: "panel", Hidden: true},
		{Selector: "tab-network", Kind: "button", Hidden: true},
		{Selector: "network-table", Kind: "table", Rows: 3, PopulatesAfter: 3},
		{Selector: "late-banner", Kind: "panel", AppearsAfter: 2},
	}
}

func TestFindAbsentSelector(t *testing.T) {
	d := NewScripted(browserPage())

	_, err := d.Find("no-such-element")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no-such-element", nf.Selector)
}

func TestTypeTextReplacesPriorContent(t *testing.T) {
	d := NewScripted(browserPage())

	el, err := d.Find("address-bar")
	require.NoError(t, err)
	require.NoError(t, d.TypeText(el, "https://example.com"))

	assert.Equal(t, "https://example.com", d.Text("address-bar"), "prior content is gone, not appended to")
}

func TestTapAppliesDeclaredSideEffects(t *testing.T) {
	d := NewScripted(browserPage())

	panel, err := d.Find("tool-panel")
	assert.Error(t, err, "panel is hidden before the toggle is tapped")

	toggle, err := d.Find("tools-button")
	require.NoError(t, err)
	require.NoError(t, d.Tap(toggle))

	panel, err = d.Find("tool-panel")
	require.NoError(t, err)
	assert.True(t, d.Exists(panel))

	bar, err := d.Find("address-bar")
	require.NoError(t, err)
	require.NoError(t, d.TypeText(bar, "https://example.com"))
	goBtn, err := d.Find("go-button")
	require.NoError(t, err)
	require.NoError(t, d.Tap(goBtn))
	assert.Empty(t, d.Text("address-bar"), "go button consumes the address bar")
}

func TestAppearsAfterDrainsPerQuery(t *testing.T) {
	d := NewScripted(browserPage())

	// appears_after: 2 - absent on the first query, present on the second.
	_, err := d.Find("late-banner")
	assert.Error(t, err)
	el, err := d.Find("late-banner")
	require.NoError(t, err)
	assert.True(t, d.Exists(el))
}

func TestWaitForExistenceDrainsBudget(t *testing.T) {
	d := NewScripted(browserPage())

	assert.True(t, d.WaitForExistence(scriptedElement{selector: "late-banner"}, time.Second))
	assert.False(t, d.WaitForExistence(scriptedElement{selector: "tool-panel"}, time.Second),
		"hidden element never appears without its revealing tap")
	assert.False(t, d.WaitForExistence(scriptedElement{selector: "no-such-element"}, time.Second))
}

func TestCellCountPopulatesAfterQueries(t *testing.T) {
	d := NewScripted(browserPage())

	table, err := d.Find("network-table")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		n, err := d.CellCount(table)
		require.NoError(t, err)
		assert.Zero(t, n, "query %d comes back before the table populates", i+1)
	}
	n, err := d.CellCount(table)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCaptureScreenIsDeterministicPNG(t *testing.T) {
	d := NewScripted(nil)

	first, err := d.CaptureScreen()
	require.NoError(t, err)
	second, err := d.CaptureScreen()
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, pngMagic))
	assert.NotEqual(t, first, second, "each capture carries its ordinal")
}

func TestCallLogAndTapCount(t *testing.T) {
	d := NewScripted(browserPage())

	el, err := d.Find("go-button")
	require.NoError(t, err)
	require.NoError(t, d.Tap(el))
	require.NoError(t, d.Tap(el))
	require.NoError(t, d.OpenURL("browsey://open?url=x"))

	assert.Equal(t, 2, d.TapCount("go-button"))
	calls := d.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, Call{Op: "find", Selector: "go-button"}, calls[0])
	assert.Equal(t, Call{Op: "open_url", Text: "browsey://open?url=x"}, calls[3])
}
