// Package collision tracks sandbox type-name registrations and detects
// stable-object-number collisions, adapted from the teacher's metric-name
// hash tracker to the type-descriptor subprotocol's needs (spec.md §4.6,
// §9: the process-wide type-name cache is the second of the two global
// mutable-state points).
package collision

import (
	"github.com/arloliu/jlcodec/errs"
)

// Tracker tracks synthesized type names and the stable object number each
// was assigned, detecting the case where two distinct type-name records
// are assigned the same number (a bug in the number generator, or a
// caller mixing a shared NumberCache across incompatible sandboxes) and
// keeping the ordered registration list a Sandbox needs to enumerate its
// contents deterministically.
type Tracker struct {
	byNumber     map[uint64]string // stable object number → type name
	namesList    []string          // ordered list, in registration order
	hasCollision bool
}

// NewTracker creates a new, empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byNumber:  make(map[uint64]string),
		namesList: make([]string, 0),
	}
}

// TrackNumber records that number was assigned during synthesis without
// an associated name yet (the reader path: a FULL_DATATYPE back-reference
// arrives before the first full record ever does, which would be a
// protocol violation, so any reuse here is reported as a hard collision).
func (t *Tracker) TrackNumber(number uint64) error {
	if _, exists := t.byNumber[number]; exists {
		return errs.ErrTypeNumberCollision
	}

	t.byNumber[number] = ""

	return nil
}

// TrackType records that name was assigned stable object number number.
// Returns ErrInvalidTypeName for an empty name, ErrTypeNameAlreadyTracked
// if name was already registered under this number, and
// ErrTypeNumberCollision if number was already assigned to a different
// name (the two global-mutable-state points disagreeing, an unrecoverable
// desync per spec.md §9).
func (t *Tracker) TrackType(name string, number uint64) error {
	if name == "" {
		return errs.ErrInvalidTypeName
	}

	if existing, exists := t.byNumber[number]; exists {
		if existing == name {
			return errs.ErrTypeNameAlreadyTracked
		}
		t.hasCollision = true

		return errs.ErrTypeNumberCollision
	}

	t.byNumber[number] = name
	t.namesList = append(t.namesList, name)

	return nil
}

// HasCollision reports whether a number collision has ever been observed.
func (t *Tracker) HasCollision() bool { return t.hasCollision }

// TypeNames returns the ordered list of registered type names.
func (t *Tracker) TypeNames() []string { return t.namesList }

// Count returns the number of distinct type names tracked.
func (t *Tracker) Count() int { return len(t.namesList) }

// Reset clears all tracked state, preserving map/slice capacity.
func (t *Tracker) Reset() {
	for k := range t.byNumber {
		delete(t.byNumber, k)
	}
	t.namesList = t.namesList[:0]
	t.hasCollision = false
}
