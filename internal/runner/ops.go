package runner

import (
	"errors"
	"fmt"

	"github.com/roach88/shutter/internal/deeplink"
	"github.com/roach88/shutter/internal/testctx"
	"github.com/roach88/shutter/internal/wait"
)

// Well-known selectors of the application under test's chrome. Scenario
// page models and tests address the same elements by these names.
const (
	SelectorAddressBar  = "address-bar"
	SelectorGoButton    = "go-button"
	SelectorToolsButton = "tools-button"
	SelectorToolPanel   = "tool-panel"
	SelectorSearchField = "search-field"
)

// TabSelector returns the selector of a tool-panel tab's distinguishing
// control.
func TabSelector(name string) string {
	return "tab-" + name
}

// Action labels. Each label doubles as the artifact label of the action's
// capture, so it must be unique within one test's action sequence.
const (
	ActionLoadURL       = "load_url"
	ActionOpenToolPanel = "open_tool_panel"
	ActionSearch        = "search"
	ActionOpenDeepLink  = "open_deep_link"
	ActionTableRows     = "table_populated"
)

func selectTabAction(name string) string {
	return "select_tab_" + name
}

// LoadURL types rawURL into the address bar and taps go.
//
// Postcondition: the bar's prior content is gone and navigation was
// issued. Neither the request nor the resulting render is observable from
// outside the application, so this wait is a fixed delay.
func (r *Runner) LoadURL(tc testctx.Context, rawURL string) error {
	return r.perform(tc, ActionLoadURL, func(token string) error {
		bar, err := r.driver.Find(SelectorAddressBar)
		if err != nil {
			return err
		}
		if err := r.driver.TypeText(bar, rawURL); err != nil {
			return err
		}

		goBtn, err := r.driver.Find(SelectorGoButton)
		if err != nil {
			return err
		}
		if err := r.driver.Tap(goBtn); err != nil {
			return err
		}

		_, err = r.await(ActionLoadURL, token, wait.ForDelay(r.fixedDelay))
		return err
	})
}

// OpenToolPanel taps the tools toggle.
//
// Postcondition: the panel's first-level controls exist. The reveal is
// animated with no completion signal, so this wait is a fixed delay.
func (r *Runner) OpenToolPanel(tc testctx.Context) error {
	return r.perform(tc, ActionOpenToolPanel, func(token string) error {
		toggle, err := r.driver.Find(SelectorToolsButton)
		if err != nil {
			return err
		}
		if err := r.driver.Tap(toggle); err != nil {
			return err
		}

		_, err = r.await(ActionOpenToolPanel, token, wait.ForDelay(r.fixedDelay))
		return err
	})
}

// SelectTab taps the named tab inside the tool panel.
//
// Postcondition: the tab's distinguishing control exists; fixed delay.
func (r *Runner) SelectTab(tc testctx.Context, name string) error {
	action := selectTabAction(name)
	return r.perform(tc, action, func(token string) error {
		tab, err := r.driver.Find(TabSelector(name))
		if err != nil {
			return err
		}
		if err := r.driver.Tap(tab); err != nil {
			return err
		}

		_, err = r.await(action, token, wait.ForDelay(r.fixedDelay))
		return err
	})
}

// Search focuses the search field and types query; fixed delay for the
// filtered results to settle.
func (r *Runner) Search(tc testctx.Context, query string) error {
	return r.perform(tc, ActionSearch, func(token string) error {
		field, err := r.driver.Find(SelectorSearchField)
		if err != nil {
			return err
		}
		if err := r.driver.Tap(field); err != nil {
			return err
		}
		if err := r.driver.TypeText(field, query); err != nil {
			return err
		}

		_, err = r.await(ActionSearch, token, wait.ForDelay(r.fixedDelay))
		return err
	})
}

// WaitForTableRows polls the table named by selector until it reports at
// least one populated row.
//
// This is the one operation with a real completion signal, so it uses a
// predicate wait. A timeout is a signaled degradation: the outcome comes
// back Satisfied=false with a nil error, and the caller decides whether to
// fail on it.
func (r *Runner) WaitForTableRows(tc testctx.Context, selector string) (wait.Outcome, error) {
	var outcome wait.Outcome
	err := r.perform(tc, ActionTableRows, func(token string) error {
		table, err := r.driver.Find(selector)
		if err != nil {
			return err
		}

		var waitErr error
		outcome, waitErr = r.await(ActionTableRows, token, wait.ForPredicate(func() bool {
			n, err := r.driver.CellCount(table)
			return err == nil && n > 0
		}, r.tableTimeout, r.pollInterval))
		return waitErr
	})
	return outcome, err
}

// OpenDeepLink builds the scheme URL for target and hands it to the OS
// activation mechanism; fixed delay for the application to come forward.
func (r *Runner) OpenDeepLink(tc testctx.Context, scheme, target string) error {
	return r.perform(tc, ActionOpenDeepLink, func(token string) error {
		if r.activator == nil {
			return errors.New("runner: no activator configured for deep links")
		}

		link := deeplink.Build(scheme, target)
		if err := r.activator.OpenURL(link); err != nil {
			return fmt.Errorf("runner: open %s: %w", link, err)
		}

		_, err := r.await(ActionOpenDeepLink, token, wait.ForDelay(r.fixedDelay))
		return err
	})
}
