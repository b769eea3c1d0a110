// Package testctx carries the identity of the test that is currently
// exercising the UI.
//
// The core never queries ambient state to discover the active test: every
// operation that tags evidence takes an explicit Context. The Resolver
// exists only at the host-runner boundary, where a runner's lifecycle hooks
// bind and clear names keyed by whatever execution-scope key the runner
// uses (goroutine pool slot, worker id, suite name). Reads are defensive -
// a missing binding resolves to the UnknownTest sentinel instead of
// failing, because a stale or absent binding must never break evidence
// collection.
package testctx

import "sync"

// UnknownTest is the sentinel name used when no binding exists for an
// execution scope. Evidence tagged with it is still captured; it just
// cannot be attributed to a specific test.
const UnknownTest = "unknown_test"

// Context names the test a core operation acts on behalf of.
// Created per test execution and threaded explicitly through call sites.
type Context struct {
	TestName string
}

// New returns a Context for the named test. An empty name resolves to the
// UnknownTest sentinel so artifact identities stay non-empty.
func New(testName string) Context {
	if testName == "" {
		testName = UnknownTest
	}
	return Context{TestName: testName}
}

// Resolver is a read-only projection (from the core's perspective) over
// the host runner's test-name bindings. The host binds at test start and
// clears at test end; the core only ever calls Current or Context.
//
// All methods are safe for concurrent use: distinct tests executing in
// parallel bind under distinct keys.
type Resolver struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{names: make(map[string]string)}
}

// Bind associates an execution-scope key with a test name.
// Called by the host runner at test start.
func (r *Resolver) Bind(key, testName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[key] = testName
}

// Clear removes the binding for a key. Called by the host runner at test
// end. Clearing an unbound key is a no-op.
func (r *Resolver) Clear(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, key)
}

// Current returns the test name bound to key, or UnknownTest when no
// binding exists.
func (r *Resolver) Current(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[key]; ok && name != "" {
		return name
	}
	return UnknownTest
}

// Context returns a core Context for the test bound to key.
func (r *Resolver) Context(key string) Context {
	return New(r.Current(key))
}
