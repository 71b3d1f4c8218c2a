package tag

import (
	"github.com/arloliu/jlcodec/endian"
	"github.com/arloliu/jlcodec/errs"
)

// HeaderSize is the fixed byte length of the stream header record.
const HeaderSize = 8

// CurrentVersion is the protocol version this build of jlcodec writes.
// A reader must accept every version <= CurrentVersion (see
// StreamHeader.Parse and the version-gated fields documented in
// package typedesc).
const CurrentVersion uint8 = 1

// Endianness flag values, packed into bits 0-1 of StreamHeader.Flags.
const (
	endianLittle uint8 = 0
	endianBig    uint8 = 1
)

// Word size flag values, packed into bits 2-3 of StreamHeader.Flags.
const (
	wordSize32 uint8 = 0
	wordSize64 uint8 = 1
)

// StreamHeader is the 8-byte record that opens every stream produced
// by the top-level Serialize entry point:
//
//	byte 0: tag 0x37 (the Header control tag)
//	bytes 1-2: 'J', 'L'
//	byte 3: protocol version
//	byte 4: flags (bit0-1 endianness, bit2-3 word size)
//	bytes 5-7: reserved, must be zero
type StreamHeader struct {
	Version   uint8
	BigEndian bool
	Is64Bit   bool
}

// NewStreamHeader builds a header describing the host's own
// endianness and native word size, at CurrentVersion.
func NewStreamHeader() StreamHeader {
	return StreamHeader{
		Version:   CurrentVersion,
		BigEndian: endian.IsNativeBigEndian(),
		Is64Bit:   is64BitHost(),
	}
}

func is64BitHost() bool {
	return ^uintptr(0) == 1<<64-1
}

// Bytes serializes the header into an 8-byte slice.
func (h StreamHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	b[0] = byte(Header)
	b[1] = 'J'
	b[2] = 'L'
	b[3] = h.Version

	var flags uint8
	if h.BigEndian {
		flags |= endianBig
	}
	if h.Is64Bit {
		flags |= wordSize64 << 2
	}
	b[4] = flags
	// bytes 5-7 reserved, left zero

	return b
}

// Parse decodes an 8-byte header record, validating the magic bytes
// and rejecting a peer version newer than CurrentVersion or a stream
// whose endianness/word size does not match this host (spec.md §1
// Non-goals: not portable across differing native width/order).
func (h *StreamHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if Tag(data[0]) != Header || data[1] != 'J' || data[2] != 'L' {
		return errs.ErrInvalidMagicNumber
	}

	version := data[3]
	if version > CurrentVersion {
		return errs.ErrVersionTooNew
	}

	flags := data[4]
	bigEndian := flags&0x3 == endianBig
	is64 := (flags>>2)&0x3 == wordSize64

	if bigEndian != endian.IsNativeBigEndian() {
		return errs.ErrEndianMismatch
	}
	if is64 != is64BitHost() {
		return errs.ErrWordSizeMismatch
	}

	h.Version = version
	h.BigEndian = bigEndian
	h.Is64Bit = is64

	return nil
}
