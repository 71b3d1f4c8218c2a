// Package wire implements the writer and reader state machines that
// sit directly on top of the tag alphabet: the monotonically
// increasing slot counter, the identity-keyed back-reference table,
// the pending-slot stack used to close cycles through mutable fields,
// and the known-object-by-number cache used by package typedesc.
//
// Writer and Reader are not safe for concurrent use by multiple
// goroutines; a single instance drives one stream start to finish
// (spec.md §5: single-threaded cooperative per stream).
package wire
