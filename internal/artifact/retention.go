package artifact

// DefaultKeepLatest is the retention bound applied when a policy does not
// specify one.
const DefaultKeepLatest = 50

// RetentionPolicy bounds how many artifacts survive a rotation.
//
// The policy is a pure rule over persisted artifact names - the store's
// directory listing is the single source of truth for what exists, so the
// policy never sees logical Artifact values, only filenames.
type RetentionPolicy struct {
	// KeepLatest is the number of artifacts to retain. Zero or negative
	// values fall back to DefaultKeepLatest.
	KeepLatest int
}

// Limit returns the effective retention bound.
func (p RetentionPolicy) Limit() int {
	if p.KeepLatest <= 0 {
		return DefaultKeepLatest
	}
	return p.KeepLatest
}

// Evict returns the names to delete so that at most Limit() entries remain.
//
// The input must already be in the store's rotation order (oldest first);
// Evict selects from the front. The returned slice is a copy - callers may
// retain it across further listings.
func (p RetentionPolicy) Evict(sorted []string) []string {
	keep := p.Limit()
	if len(sorted) <= keep {
		return nil
	}

	victims := make([]string, len(sorted)-keep)
	copy(victims, sorted[:len(sorted)-keep])
	return victims
}
