// Package tag enumerates the wire tag alphabet and the 8-byte stream
// header used by jlcodec.
//
// The allocation below is contract, not convenience: changing a code
// is a wire format version bump (see Header.Version). Codes are laid
// out in three disjoint bands, leaves-first as the rest of the module
// depends on this package and nothing else:
//
//   - Type tags (1..27): one code per interned well-known type.
//   - Control tags (28..43, plus the pinned Header tag at 0x37): the
//     structural operators (back-references, long-length variants,
//     the object/ref-object pair, the header sentinel, ...).
//   - Literal tags (152..253): self-describing singletons, so that
//     encoding them costs exactly one byte.
//
// Byte 0x00 is never a tag; Writer.EmitAsValue uses it as an escape
// so a control-tag byte can be told apart from the same byte used as
// an "emit this tag as if it were a literal value" operator.
package tag
