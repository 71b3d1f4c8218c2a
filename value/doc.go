// Package value implements the value encoder and decoder (spec.md
// §4.4-4.5): dispatch from a Go value's reflected kind to the matching
// wire family, and back from a decoded tag to a reconstructed Go value.
//
// value imports package typedesc for record/type-descriptor handling and
// drives typedesc.Resolver to allocate and populate decoded records, so
// typedesc must never import value.
package value
