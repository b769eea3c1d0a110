// Package artifact owns the on-disk store of diagnostic screenshots.
//
// One store owns one directory. Artifacts are identified by the pair
// (testName, label); the identity maps to the deterministic filename
// <testName>_<label>.png, so writing the same identity twice overwrites
// rather than duplicates. There is no index file - the directory listing is
// the index.
//
// Rotation order is lexicographic over filenames. That approximates
// chronological order only if names embed a monotonic component; see
// WithSequencedNames for the naming mode that makes "latest" well-defined.
//
// Distinct tests may write concurrently into the one shared directory.
// Identities include the test name, so same-named labels from different
// tests never collide. Rotation is expected to run out of band (suite
// teardown) and tolerates files appearing or vanishing while it works.
package artifact

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Ext is the file extension for every stored artifact.
const Ext = ".png"

// Store writes, lists, and rotates artifacts inside a single directory.
// Methods are safe for concurrent use by multiple test executions.
type Store struct {
	dir    string
	logger *slog.Logger

	// sequenced turns on ULID-suffixed filenames.
	sequenced bool
	mu        sync.Mutex // guards entropy
	entropy   *ulid.MonotonicEntropy
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for best-effort diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSequencedNames switches filenames to
// <testName>_<label>_<ulid>.png. The ULID embeds a timestamp with monotonic
// tie-breaking, so lexicographic rotation order matches write order. The
// trade-off: identities no longer collide, so repeated captures of the same
// (testName, label) accumulate until rotation instead of overwriting.
func WithSequencedNames() Option {
	return func(s *Store) { s.sequenced = true }
}

// NewStore creates a store rooted at dir. The directory is not created
// until EnsureReady or the first Capture.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:     dir,
		logger:  slog.Default(),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dir returns the directory the store owns.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureReady idempotently creates the backing directory.
//
// Safe to call repeatedly and concurrently: a pre-existing directory is a
// success, and racing first-callers all succeed regardless of which one
// actually created it (MkdirAll treats an existing directory as done).
func (s *Store) EnsureReady() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("artifact: ensure %s: %w", s.dir, err)
	}
	return nil
}

// FileName returns the on-disk name for the identity (testName, label)
// under the default naming scheme.
func FileName(testName, label string) string {
	return sanitize(testName) + "_" + sanitize(label) + Ext
}

// sanitize keeps identities usable as single filename components.
// Path separators would silently change which directory a capture lands in.
func sanitize(part string) string {
	part = strings.ReplaceAll(part, "/", "-")
	part = strings.ReplaceAll(part, string(os.PathSeparator), "-")
	if part == "" {
		return "-"
	}
	return part
}

// Capture writes img under the identity (testName, label) and returns the
// filename written.
//
// Identity collisions overwrite the previous payload - no versioning. The
// store retains no reference to img after the write returns.
//
// Callers at the action boundary must treat a returned error as best-effort
// diagnostics loss, not a test failure.
func (s *Store) Capture(testName, label string, img []byte) (string, error) {
	if err := s.EnsureReady(); err != nil {
		return "", err
	}

	name := FileName(testName, label)
	if s.sequenced {
		name = s.sequencedName(testName, label)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", fmt.Errorf("artifact: capture %s: %w", name, err)
	}
	return name, nil
}

func (s *Store) sequencedName(testName, label string) string {
	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
	s.mu.Unlock()
	return sanitize(testName) + "_" + sanitize(label) + "_" + id.String() + Ext
}

// List returns the artifact filenames in lexicographic order.
// A missing directory lists as empty, not as an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("artifact: list %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Rotate deletes the oldest artifacts beyond the policy's bound and returns
// the names it deleted.
//
// Rotate re-lists the directory immediately before deleting, so a writer
// racing the rotation can at worst leave the count one over the bound until
// the next rotation - it never crashes the rotation. A victim that vanishes
// before its delete is treated as already rotated. Rotating twice with no
// intervening writes is a no-op the second time.
func (s *Store) Rotate(policy RetentionPolicy) ([]string, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}

	victims := policy.Evict(names)
	if len(victims) == 0 {
		return nil, nil
	}

	deleted := make([]string, 0, len(victims))
	var firstErr error
	for _, name := range victims {
		err := os.Remove(filepath.Join(s.dir, name))
		switch {
		case err == nil:
			deleted = append(deleted, name)
		case errors.Is(err, fs.ErrNotExist):
			// Another rotation or cleanup got there first.
		default:
			s.logger.Warn("artifact rotation delete failed", "name", name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("artifact: rotate %s: %w", name, err)
			}
		}
	}
	return deleted, firstErr
}
