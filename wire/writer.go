package wire

import (
	"bufio"
	"io"

	"github.com/arloliu/jlcodec/endian"
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/internal/hash"
	"github.com/arloliu/jlcodec/internal/numcache"
	"github.com/arloliu/jlcodec/internal/options"
	"github.com/arloliu/jlcodec/tag"
)

// defaultBufferSize matches the teacher's BlobBufferDefaultSize choice
// for a single-stream scratch/output buffer.
const defaultBufferSize = 16 * 1024

// WriterOption configures a Writer at construction time.
type WriterOption = options.Option[*Writer]

// WithBufferSize overrides the internal bufio.Writer size.
func WithBufferSize(n int) WriterOption {
	return options.NoError(func(w *Writer) { w.bufSize = n })
}

// WithSharedNumberCache installs a process-wide known-object-by-number
// cache instead of the per-stream one Writer creates by default. Share
// this across concurrent writers that must agree on stable object
// numbers for the same named types/methods (spec.md §5).
func WithSharedNumberCache(c *numcache.WriterCache) WriterOption {
	return options.NoError(func(w *Writer) { w.Numbers = c })
}

// WithBigEndian forces big-endian payload encoding. The default is the
// host's native order, matching the header's endianness flag.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) { w.engine = endian.GetBigEndianEngine() })
}

// Writer is the writer-side state described in spec.md §4.2: a byte
// sink, the monotonically increasing slot counter, the identity-keyed
// back-reference tables, the pending-slot stack, and a
// known-object-by-number cache for package typedesc.
type Writer struct {
	out    *bufio.Writer
	engine endian.EndianEngine

	bufSize int

	counter uint64

	// byPointer deduplicates pointer-backed (mutable/shared) values by
	// identity. byStringHash canonicalizes strings of length > 7, per
	// the dedup rule in spec.md §4.2 ("only string values with length
	// > 7 are canonicalized").
	byPointer    map[uint64]uint64
	byStringHash map[uint64]uint64

	pending []uint64

	// Numbers is the known-object-by-number cache (§3, §4.6). It is
	// per-stream by default; share one across writers with
	// WithSharedNumberCache.
	Numbers *numcache.WriterCache

	scratch [8]byte
}

// NewWriter creates a Writer over sink, ready to have a header and
// value written to it.
func NewWriter(sink io.Writer, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		engine:       endian.GetLittleEndianEngine(),
		bufSize:      defaultBufferSize,
		byPointer:    make(map[uint64]uint64),
		byStringHash: make(map[uint64]uint64),
		Numbers:      numcache.NewWriterCache(),
	}
	if endian.IsNativeBigEndian() {
		w.engine = endian.GetBigEndianEngine()
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}
	w.out = bufio.NewWriterSize(sink, w.bufSize)

	return w, nil
}

// Engine returns the byte-order engine this writer encodes fixed-width
// payloads with.
func (w *Writer) Engine() endian.EndianEngine { return w.engine }

// NextSlot reserves and returns the next back-reference slot without
// consulting any identity table. Used for values that are written
// immediately after the reservation (records, arrays, ...).
func (w *Writer) NextSlot() uint64 {
	s := w.counter
	w.counter++

	return s
}

// EmitTag writes a single tag byte.
func (w *Writer) EmitTag(t tag.Tag) error {
	return w.out.WriteByte(byte(t))
}

// EmitAsValue writes t so that a reader decoding it as a *value*
// (rather than as an operator) recovers the literal-tag singleton that
// interns to t. Control-band tags are escaped with a leading zero byte
// (spec.md §4.2); every other tag is written directly.
func (w *Writer) EmitAsValue(t tag.Tag) error {
	if tag.IsControl(t) {
		if err := w.out.WriteByte(byte(tag.Escape)); err != nil {
			return err
		}
	}

	return w.EmitTag(t)
}

// PutByte writes a single raw byte.
func (w *Writer) PutByte(b byte) error { return w.out.WriteByte(b) }

// PutBytes writes raw bytes verbatim.
func (w *Writer) PutBytes(b []byte) error {
	_, err := w.out.Write(b)
	return err
}

// PutUint16/32/64 write a fixed-width integer in the writer's byte order.
func (w *Writer) PutUint16(v uint16) error {
	w.engine.PutUint16(w.scratch[:2], v)
	return w.PutBytes(w.scratch[:2])
}

func (w *Writer) PutUint32(v uint32) error {
	w.engine.PutUint32(w.scratch[:4], v)
	return w.PutBytes(w.scratch[:4])
}

func (w *Writer) PutUint64(v uint64) error {
	w.engine.PutUint64(w.scratch[:8], v)
	return w.PutBytes(w.scratch[:8])
}

// TryBackrefPointer looks up ptr (a non-zero pointer/map/slice/chan
// identity) in the back-reference table. If found, it emits the
// narrowest back-reference tag for the stored slot and returns
// emitted=true. Otherwise it reserves the next slot, records it under
// ptr, and returns emitted=false so the caller proceeds to write the
// value's tag and payload.
func (w *Writer) TryBackrefPointer(ptr uint64) (slot uint64, emitted bool, err error) {
	return w.tryBackref(w.byPointer, ptr)
}

// TryBackrefString is TryBackrefPointer's counterpart for the string
// canonicalization table. Plain strings are looked up here only when
// longer than 7 bytes, so shorter strings are never shared (spec.md
// §4.4); symbols that are not one-byte literals are looked up at any
// length.
func (w *Writer) TryBackrefString(s string) (slot uint64, emitted bool, err error) {
	return w.tryBackref(w.byStringHash, hash.ID(s))
}

func (w *Writer) tryBackref(table map[uint64]uint64, key uint64) (slot uint64, emitted bool, err error) {
	if s, ok := table[key]; ok {
		if err := w.emitBackref(s); err != nil {
			return 0, false, err
		}
		return s, true, nil
	}

	s := w.NextSlot()
	table[key] = s

	return s, false, nil
}

// emitBackref writes the narrowest of ShortBackRef/BackRef/LongBackRef
// for slot.
func (w *Writer) emitBackref(slot uint64) error {
	switch {
	case slot <= 0xFFFF:
		if err := w.EmitTag(tag.ShortBackRef); err != nil {
			return err
		}
		return w.PutUint16(uint16(slot))
	case slot <= 0xFFFFFFFF:
		if err := w.EmitTag(tag.BackRef); err != nil {
			return err
		}
		return w.PutUint32(uint32(slot))
	default:
		if err := w.EmitTag(tag.LongBackRef); err != nil {
			return err
		}
		return w.PutUint64(slot)
	}
}

// PushPending reserves slot on the pending-slot stack, marking that its
// header has been emitted but its fields have not finished writing.
func (w *Writer) PushPending(slot uint64) {
	w.pending = append(w.pending, slot)
}

// PopPending pops the most recently pushed pending slot, verifying it
// matches slot (LIFO discipline — spec.md §3). On a mismatch the stack
// is left unchanged.
func (w *Writer) PopPending(slot uint64) error {
	if len(w.pending) == 0 {
		return errs.ErrPendingStackEmpty
	}

	top := w.pending[len(w.pending)-1]
	if top != slot {
		return errs.ErrPendingStackMismatch
	}
	w.pending = w.pending[:len(w.pending)-1]

	return nil
}

// Flush writes any buffered bytes to the underlying sink.
func (w *Writer) Flush() error { return w.out.Flush() }

// Reset clears the counter, both back-reference tables, and the
// pending stack so the Writer can be reused for a new stream. The
// known-object-by-number cache is left untouched, since it is commonly
// shared across streams by design (spec.md §3).
func (w *Writer) Reset(sink io.Writer) {
	w.counter = 0
	for k := range w.byPointer {
		delete(w.byPointer, k)
	}
	for k := range w.byStringHash {
		delete(w.byStringHash, k)
	}
	w.pending = w.pending[:0]
	w.out = bufio.NewWriterSize(sink, w.bufSize)
}
