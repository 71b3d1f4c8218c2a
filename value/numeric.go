package value

import (
	"math"

	"github.com/arloliu/jlcodec/endian"
	"github.com/arloliu/jlcodec/internal/half"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/wire"
)

// encodeInt64 picks the narrowest representation for n: an interned
// small-integer literal, the SHORTINT64 variable-width form, or the
// full 8-byte INT64 payload (spec.md §4.4's small-integer fast path).
func encodeInt64(w *wire.Writer, n int64) error {
	if lit, ok := tag.Int64Literal(n); ok {
		return w.EmitAsValue(lit)
	}
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		if lit, ok := tag.Int32Literal(int32(n)); ok {
			return w.EmitAsValue(lit)
		}
	}

	width := minBytesForInt64(n)
	if width >= 8 {
		if err := w.EmitTag(tag.Int64); err != nil {
			return err
		}

		return w.PutUint64(uint64(n))
	}

	if err := w.EmitTag(tag.ShortInt64); err != nil {
		return err
	}
	if err := w.PutByte(byte(width)); err != nil {
		return err
	}

	return putMinBytes(w, uint64(n), width)
}

func minBytesForInt64(n int64) int {
	for width := 1; width < 8; width++ {
		lo := -(int64(1) << (uint(8*width) - 1))
		hi := (int64(1) << (uint(8*width) - 1)) - 1
		if n >= lo && n <= hi {
			return width
		}
	}

	return 8
}

// putMinBytes writes the low `width` bytes of v in the writer's engine
// byte order.
func putMinBytes(w *wire.Writer, v uint64, width int) error {
	var buf [8]byte
	w.Engine().PutUint64(buf[:], v)
	if w.Engine() == endian.GetLittleEndianEngine() {
		// little-endian engine: low-order bytes are buf[:width]
		return w.PutBytes(buf[:width])
	}

	return w.PutBytes(buf[8-width:])
}

func decodeShortInt64(r *wire.Reader) (int64, error) {
	width, err := r.GetByte()
	if err != nil {
		return 0, err
	}
	b, err := r.GetBytes(int(width))
	if err != nil {
		return 0, err
	}

	var buf [8]byte
	little := r.Engine() == endian.GetLittleEndianEngine()
	if little {
		copy(buf[:], b)
		// sign-extend from the top bit of the most significant byte read
		if b[len(b)-1]&0x80 != 0 {
			for i := len(b); i < 8; i++ {
				buf[i] = 0xff
			}
		}
	} else {
		copy(buf[8-len(b):], b)
		if b[0]&0x80 != 0 {
			for i := 0; i < 8-len(b); i++ {
				buf[i] = 0xff
			}
		}
	}

	return int64(r.Engine().Uint64(buf[:])), nil
}

// encodeFloat16 writes f as its nearest binary16 bit pattern.
func encodeFloat16(w *wire.Writer, f float32) error {
	if err := w.EmitTag(tag.Float16); err != nil {
		return err
	}

	return w.PutUint16(half.FromFloat32(f))
}

func decodeFloat16(r *wire.Reader) (float32, error) {
	bits, err := r.GetUint16()
	if err != nil {
		return 0, err
	}

	return half.ToFloat32(bits), nil
}

// encodeFloat32 prefers the narrower FLOAT16 tag when f round-trips
// through binary16 exactly, falling back to the full FLOAT32 payload.
func encodeFloat32(w *wire.Writer, f float32) error {
	if bits := half.FromFloat32(f); half.ToFloat32(bits) == f {
		return encodeFloat16(w, f)
	}

	if err := w.EmitTag(tag.Float32); err != nil {
		return err
	}

	return w.PutUint32(math.Float32bits(f))
}

func decodeFloat32(r *wire.Reader) (float32, error) {
	bits, err := r.GetUint32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(bits), nil
}

func encodeFloat64(w *wire.Writer, f float64) error {
	if err := w.EmitTag(tag.Float64); err != nil {
		return err
	}

	return w.PutUint64(math.Float64bits(f))
}

func decodeFloat64(r *wire.Reader) (float64, error) {
	bits, err := r.GetUint64()
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bits), nil
}
