// Package typedesc implements the type-descriptor subprotocol
// (spec.md §4.6): encoding and resolving named types, synthesizing
// previously-unknown types into a process-private sandbox namespace when
// no statically-registered Go type matches, and the module/type-name
// record formats those two paths share.
//
// typedesc depends only on tag, wire, errs and the internal leaf
// packages; it never imports package value, so value is free to import
// typedesc for record/field encoding without an import cycle.
package typedesc
