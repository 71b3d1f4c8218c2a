package value

import (
	"math"
	"reflect"

	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/internal/pool"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

const (
	arrayKindBytes   byte = 0
	arrayKindBoolRLE byte = 1
	arrayKindGeneric byte = 2
	arrayKindInt64   byte = 3
	arrayKindFloat64 byte = 4
	arrayKindString  byte = 5
)

func arrayLen(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}

// encodeArray writes arr as spec.md's ARRAY record: "1. Check
// back-reference; else reserve a slot" before anything else is emitted,
// mirroring encodeMutableRecord/encodeDict's cycle-closing discipline so
// two references to the same backing storage collapse to a single
// shared value on decode. A zero-length array never reserves a slot:
// its Data is typically a nil slice sharing the same (nil) backing
// pointer across every unrelated empty array, so participating would
// alias them the same way an empty Tuple would (see encodeTuple).
func encodeArray(w *wire.Writer, resolver *typedesc.DefaultResolver, arr Array) error {
	shared := arrayLen(arr.Shape) > 0

	var slot uint64
	if shared {
		ptr := reflect.ValueOf(arr.Data).Pointer()
		s, emitted, err := w.TryBackrefPointer(uint64(ptr))
		if err != nil {
			return err
		}
		if emitted {
			return nil
		}
		slot = s
	}

	if err := w.EmitTag(tag.Array); err != nil {
		return err
	}
	if err := w.PutUint32(uint32(len(arr.Shape))); err != nil {
		return err
	}
	for _, d := range arr.Shape {
		if err := w.PutUint32(uint32(d)); err != nil {
			return err
		}
	}

	if arr.ElemType == nil {
		if err := w.EmitAsValue(tag.False); err != nil {
			return err
		}
	} else {
		if err := w.EmitAsValue(tag.True); err != nil {
			return err
		}
		if err := typedesc.EncodeType(w, arr.ElemType); err != nil {
			return err
		}
	}

	if shared {
		w.PushPending(slot)
	}

	if err := encodeArrayData(w, resolver, arr.Data); err != nil {
		return err
	}

	if shared {
		return w.PopPending(slot)
	}

	return nil
}

func encodeArrayData(w *wire.Writer, resolver *typedesc.DefaultResolver, data any) error {
	switch data := data.(type) {
	case []byte:
		if err := w.PutByte(arrayKindBytes); err != nil {
			return err
		}

		return w.PutBytes(data)
	case []bool:
		if err := w.PutByte(arrayKindBoolRLE); err != nil {
			return err
		}

		return encodeBoolRLE(w, data)
	case []any:
		if err := w.PutByte(arrayKindGeneric); err != nil {
			return err
		}
		for _, v := range data {
			if err := Encode(w, resolver, v); err != nil {
				return err
			}
		}

		return nil
	case []int64:
		if err := w.PutByte(arrayKindInt64); err != nil {
			return err
		}
		for _, v := range data {
			if err := w.PutUint64(uint64(v)); err != nil {
				return err
			}
		}

		return nil
	case []float64:
		if err := w.PutByte(arrayKindFloat64); err != nil {
			return err
		}
		for _, v := range data {
			if err := w.PutUint64(math.Float64bits(v)); err != nil {
				return err
			}
		}

		return nil
	case []string:
		if err := w.PutByte(arrayKindString); err != nil {
			return err
		}
		for _, s := range data {
			if err := w.PutUint32(uint32(len(s))); err != nil {
				return err
			}
			if err := w.PutBytes([]byte(s)); err != nil {
				return err
			}
		}

		return nil
	default:
		return errs.ErrUnsupportedValue
	}
}

// encodeBoolRLE packs consecutive equal booleans into
// (value_bit<<7)|run_length units, run_length in [1,127] (spec.md's
// worked array example).
func encodeBoolRLE(w *wire.Writer, data []bool) error {
	i := 0
	for i < len(data) {
		v := data[i]
		run := 1
		for i+run < len(data) && data[i+run] == v && run < 127 {
			run++
		}

		var b byte
		if v {
			b = 1 << 7
		}
		b |= byte(run)
		if err := w.PutByte(b); err != nil {
			return err
		}

		i += run
	}

	return nil
}

// decodeArray is decodeTagged's tag.Array case, reached only on a
// first occurrence (repeats decode as SHORTBACKREF/BACKREF/LONGBACKREF
// via r.Gettable instead). The slot encodeArray reserved for a
// non-empty array is reserved here right after the shape is read, the
// first point at which the reader knows whether the array is empty —
// nothing else consumes a slot in between on either side, so writer
// and reader stay in lockstep even though the reservation point isn't
// byte-for-byte where the writer's is.
func decodeArray(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (Array, error) {
	var arr Array

	ndims, err := r.GetUint32()
	if err != nil {
		return arr, err
	}
	arr.Shape = make([]int, ndims)
	for i := range arr.Shape {
		d, err := r.GetUint32()
		if err != nil {
			return arr, err
		}
		arr.Shape[i] = int(d)
	}

	shared := arrayLen(arr.Shape) > 0
	var slot uint64
	if shared {
		slot = r.NextSlot()
	}

	hasElemType, err := r.ReadTag()
	if err != nil {
		return arr, err
	}
	switch hasElemType {
	case tag.True:
		arr.ElemType, err = typedesc.DecodeType(r, resolver, sandbox)
		if err != nil {
			return arr, err
		}
	case tag.False:
	default:
		return arr, errs.ErrUnknownTag
	}

	kind, err := r.GetByte()
	if err != nil {
		return arr, err
	}

	n := arrayLen(arr.Shape)
	switch kind {
	case arrayKindBytes:
		b, err := r.GetBytes(n)
		if err != nil {
			return arr, err
		}
		arr.Data = b
	case arrayKindBoolRLE:
		out := make([]bool, 0, n)
		for len(out) < n {
			b, err := r.GetByte()
			if err != nil {
				return arr, err
			}
			v := b&(1<<7) != 0
			run := int(b &^ (1 << 7))
			for i := 0; i < run; i++ {
				out = append(out, v)
			}
		}
		arr.Data = out
	case arrayKindGeneric:
		out := make([]any, n)
		for i := range out {
			v, err := Decode(r, resolver, sandbox)
			if err != nil {
				return arr, err
			}
			out[i] = v
		}
		arr.Data = out
	case arrayKindInt64:
		scratch, cleanup := pool.GetInt64Slice(n)
		defer cleanup()
		for i := range scratch {
			v, err := r.GetUint64()
			if err != nil {
				return arr, err
			}
			scratch[i] = int64(v)
		}
		out := make([]int64, n)
		copy(out, scratch)
		arr.Data = out
	case arrayKindFloat64:
		scratch, cleanup := pool.GetFloat64Slice(n)
		defer cleanup()
		for i := range scratch {
			v, err := r.GetUint64()
			if err != nil {
				return arr, err
			}
			scratch[i] = math.Float64frombits(v)
		}
		out := make([]float64, n)
		copy(out, scratch)
		arr.Data = out
	case arrayKindString:
		scratch, cleanup := pool.GetStringSlice(n)
		defer cleanup()
		for i := range scratch {
			l, err := r.GetUint32()
			if err != nil {
				return arr, err
			}
			b, err := r.GetBytes(int(l))
			if err != nil {
				return arr, err
			}
			scratch[i] = string(b)
		}
		out := make([]string, n)
		copy(out, scratch)
		arr.Data = out
	default:
		return arr, errs.ErrUnknownTag
	}

	if shared {
		r.Install(slot, arr)
	}

	return arr, nil
}
