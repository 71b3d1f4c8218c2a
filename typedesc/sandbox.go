package typedesc

import (
	"sync"

	"github.com/arloliu/jlcodec/internal/collision"
)

// Sandbox is a process-private namespace of synthesized Dynamic types,
// keyed by name, used when a FULL_DATATYPE record's name does not match
// anything DefaultResolver has registered (spec.md §4.6). One Sandbox is
// typically shared by every Reader in a process, mirroring the way the
// known-object-by-number cache (package internal/numcache) is commonly
// shared: a type synthesized while reading one stream should be reused,
// not resynthesized, when a later stream names the same type.
type Sandbox struct {
	mu       sync.Mutex
	byName   map[string]*Dynamic
	tracker  *collision.Tracker
	moduleOf ModuleRef
}

// NewSandbox creates an empty Sandbox. name becomes the root module every
// type synthesized here is reported to belong to.
func NewSandbox(name string) *Sandbox {
	return &Sandbox{
		byName:   make(map[string]*Dynamic),
		tracker:  collision.NewTracker(),
		moduleOf: Sandboxed(name),
	}
}

// GetOrCreate returns the Dynamic type for rec.Name, creating and
// registering one the first time this name is seen. Subsequent calls
// with the same name return the same *Dynamic instance, so pointer
// identity can be used for back-reference-style deduplication higher up
// the stack.
func (s *Sandbox) GetOrCreate(rec *TypeNameRecord, number uint64) *Dynamic {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.byName[rec.Name]; ok {
		return d
	}

	d := &Dynamic{Record: rec, ModuleRef: s.moduleOf}
	s.byName[rec.Name] = d
	// A name collision under TrackType is a process-level bug report,
	// never a caller-facing error here: the reader already committed to
	// this Dynamic and must keep going.
	_ = s.tracker.TrackType(rec.Name, number)

	return d
}

// Lookup returns the previously synthesized type for name, if any.
func (s *Sandbox) Lookup(name string) (*Dynamic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byName[name]

	return d, ok
}

// HasCollision reports whether one stable object number was ever
// assigned two different synthesized type names — a sign of a shared
// number cache being reused across incompatible sandboxes. A name seen
// again under a different number is not detected: GetOrCreate returns
// the existing type for that name without tracking the new number.
func (s *Sandbox) HasCollision() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tracker.HasCollision()
}

// Reset clears every synthesized type. Intended for tests and for
// long-running processes that want to bound sandbox growth between
// unrelated batches of streams.
func (s *Sandbox) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.byName {
		delete(s.byName, k)
	}
	s.tracker.Reset()
}
