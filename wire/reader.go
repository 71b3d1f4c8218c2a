package wire

import (
	"bufio"
	"io"

	"github.com/arloliu/jlcodec/endian"
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/internal/numcache"
	"github.com/arloliu/jlcodec/internal/options"
	"github.com/arloliu/jlcodec/tag"
)

// ReaderOption configures a Reader at construction time.
type ReaderOption = options.Option[*Reader]

// WithReaderBufferSize overrides the internal bufio.Reader size.
func WithReaderBufferSize(n int) ReaderOption {
	return options.NoError(func(r *Reader) { r.bufSize = n })
}

// WithSharedReaderNumberCache installs a process-wide
// known-object-by-number cache instead of the per-stream one Reader
// creates by default.
func WithSharedReaderNumberCache(c *numcache.ReaderCache) ReaderOption {
	return options.NoError(func(r *Reader) { r.Numbers = c })
}

// WithReaderBigEndian forces big-endian payload decoding. The default
// is the host's native order; mismatches against a parsed header are
// caught by StreamHeader.Parse, not here.
func WithReaderBigEndian() ReaderOption {
	return options.NoError(func(r *Reader) { r.engine = endian.GetBigEndianEngine() })
}

// Reader is the reader-side mirror of Writer (spec.md §4.3): a byte
// source, a slot table mapping back-reference id to reconstructed
// value, the pending-slot stack, a known-object-by-number cache, and
// the negotiated protocol version.
type Reader struct {
	in     *bufio.Reader
	engine endian.EndianEngine

	bufSize int

	slots   map[uint64]any
	counter uint64

	pending []uint64

	// Numbers is the known-object-by-number cache (§3, §4.6).
	Numbers *numcache.ReaderCache

	// Version is the peer's negotiated protocol version, set by
	// reading a StreamHeader. Defaults to tag.CurrentVersion for
	// sessions started with DeserializeSession against an
	// already-negotiated stream.
	Version uint8

	scratch [8]byte
}

// NewReader creates a Reader over src.
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		engine:  endian.GetLittleEndianEngine(),
		bufSize: defaultBufferSize,
		slots:   make(map[uint64]any),
		Numbers: numcache.NewReaderCache(),
		Version: tag.CurrentVersion,
	}
	if endian.IsNativeBigEndian() {
		r.engine = endian.GetBigEndianEngine()
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}
	r.in = bufio.NewReaderSize(src, r.bufSize)

	return r, nil
}

// Engine returns the byte-order engine this reader decodes fixed-width
// payloads with.
func (r *Reader) Engine() endian.EndianEngine { return r.engine }

// ReadTag reads a single tag byte.
func (r *Reader) ReadTag() (tag.Tag, error) {
	b, err := r.in.ReadByte()
	if err != nil {
		return 0, wrapShortRead(err)
	}

	return tag.Tag(b), nil
}

// GetByte reads a single raw byte.
func (r *Reader) GetByte() (byte, error) {
	b, err := r.in.ReadByte()
	return b, wrapShortRead(err)
}

// GetBytes reads exactly n raw bytes.
func (r *Reader) GetBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.in, buf); err != nil {
		return nil, wrapShortRead(err)
	}

	return buf, nil
}

func (r *Reader) GetUint16() (uint16, error) {
	if _, err := io.ReadFull(r.in, r.scratch[:2]); err != nil {
		return 0, wrapShortRead(err)
	}
	return r.engine.Uint16(r.scratch[:2]), nil
}

func (r *Reader) GetUint32() (uint32, error) {
	if _, err := io.ReadFull(r.in, r.scratch[:4]); err != nil {
		return 0, wrapShortRead(err)
	}
	return r.engine.Uint32(r.scratch[:4]), nil
}

func (r *Reader) GetUint64() (uint64, error) {
	if _, err := io.ReadFull(r.in, r.scratch[:8]); err != nil {
		return 0, wrapShortRead(err)
	}
	return r.engine.Uint64(r.scratch[:8]), nil
}

func wrapShortRead(err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errs.ErrTruncatedStream
	}

	return err
}

// Gettable returns the value previously installed at slot id, failing
// with ErrSlotNotFound if the writer never assigned (or the reader
// never reached) that slot — an unrecoverable desynchronization.
func (r *Reader) Gettable(id uint64) (any, error) {
	v, ok := r.slots[id]
	if !ok {
		return nil, errs.ErrSlotNotFound
	}

	return v, nil
}

// Install stores v at slot id, overwriting any prior (e.g. partially
// constructed) placeholder. Used both to close a pending mutable
// object and to record an atomically-finished value.
func (r *Reader) Install(id uint64, v any) {
	r.slots[id] = v
}

// ResolveRefImmediately stores v at the next counter slot and advances
// the counter, for values that cannot self-refer while being decoded
// but may be the target of a later back-reference (spec.md §4.3).
func (r *Reader) ResolveRefImmediately(v any) uint64 {
	id := r.nextSlot()
	r.slots[id] = v

	return id
}

// NextSlot reserves and returns the next slot id, mirroring the
// writer's NextSlot so the two counters stay in lockstep.
func (r *Reader) NextSlot() uint64 { return r.nextSlot() }

func (r *Reader) nextSlot() uint64 {
	id := r.counter
	r.counter++

	return id
}

// PushPending / PopPending mirror Writer's pending-slot stack.
func (r *Reader) PushPending(slot uint64) {
	r.pending = append(r.pending, slot)
}

func (r *Reader) PopPending(slot uint64) error {
	if len(r.pending) == 0 {
		return errs.ErrPendingStackEmpty
	}

	top := r.pending[len(r.pending)-1]
	if top != slot {
		return errs.ErrPendingStackMismatch
	}
	r.pending = r.pending[:len(r.pending)-1]

	return nil
}

// Reset clears the slot table and pending stack so the Reader can be
// reused for a new stream (the known-object-by-number cache is left
// untouched, matching Writer.Reset).
func (r *Reader) Reset(src io.Reader) {
	for k := range r.slots {
		delete(r.slots, k)
	}
	r.counter = 0
	r.pending = r.pending[:0]
	r.in = bufio.NewReaderSize(src, r.bufSize)
}
