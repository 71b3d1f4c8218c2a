// Package jlcodec implements the tag-driven binary object graph codec
// described by this repository's wire format notes: a versioned stream
// header, a closed one-byte tag alphabet, back-reference-based cycle
// closure, and a type-descriptor subprotocol for resolving or
// synthesizing the Go types a decoded record belongs to.
//
// Serialize and Deserialize are the package's main entry points; the
// File and Session variants layer a stream header, optional whole-
// payload compression, or a long-lived negotiated connection on top of
// the same wire.Writer/wire.Reader and value.Encode/value.Decode core.
package jlcodec
