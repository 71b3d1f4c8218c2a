package jlcodec

import (
	"bytes"
	"io"
	"reflect"

	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/internal/pool"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/value"
	"github.com/arloliu/jlcodec/wire"
)

// IdentityMap is package value's identity-hashed map, re-exported so
// callers never need to import package value directly to construct one
// for the IDDICT wire form.
type IdentityMap[K comparable, V any] = value.IdentityMap[K, V]

// NewIdentityMap creates an empty IdentityMap.
func NewIdentityMap[K comparable, V any]() *IdentityMap[K, V] {
	return value.NewIdentityMap[K, V]()
}

// Codec binds a type registry (for resolving named records back to
// concrete Go types on decode) to a synthesis sandbox (for records whose
// type the registry does not know, spec.md §4.6). One Codec is meant to
// be built once per process and shared by every Serialize/Deserialize
// call that needs to agree on the same set of registered types.
type Codec struct {
	resolver *typedesc.DefaultResolver
	sandbox  *typedesc.Sandbox
}

// NewCodec creates a Codec with an empty type registry and a fresh
// synthesis sandbox.
func NewCodec() *Codec {
	sandbox := typedesc.NewSandbox("jlcodec.sandbox")

	return &Codec{
		resolver: typedesc.NewDefaultResolver(sandbox),
		sandbox:  sandbox,
	}
}

// RegisterType makes values of Go type v's type resolvable under
// (module, name): required before Serialize/Deserialize can round-trip
// a struct or *struct through the REF_OBJECT/OBJECT record forms
// (spec.md §4.6). v is used only for its type; pass a zero value.
func (c *Codec) RegisterType(module typedesc.ModuleRef, name string, v any) {
	c.resolver.RegisterType(module, name, reflect.TypeOf(v))
}

// Serialize writes v's StreamHeader-prefixed wire encoding to w.
func (c *Codec) Serialize(w io.Writer, v any) error {
	if _, err := w.Write(tag.NewStreamHeader().Bytes()); err != nil {
		return err
	}

	ww, err := wire.NewWriter(w)
	if err != nil {
		return err
	}
	if err := value.Encode(ww, c.resolver, v); err != nil {
		return err
	}

	return ww.Flush()
}

// SerializeBytes is Serialize's byte-slice convenience form, pooling a
// scratch buffer from the package's blob buffer pool rather than
// growing one per call (mirrors the teacher's blob-encoder buffer
// reuse).
func (c *Codec) SerializeBytes(v any) ([]byte, error) {
	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)

	if err := c.Serialize(&bufferSink{buf}, v); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// SerializeNoHeader writes v's wire encoding directly to w, without a
// StreamHeader. Used by WriterSession, where the header is negotiated
// once up front rather than repeated before every value.
func (c *Codec) SerializeNoHeader(w *wire.Writer, v any) error {
	if err := value.Encode(w, c.resolver, v); err != nil {
		return err
	}

	return w.Flush()
}

// Deserialize parses r as a StreamHeader followed by one wire-encoded
// value.
func (c *Codec) Deserialize(r io.Reader) (any, error) {
	headerBytes := make([]byte, tag.HeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, err
	}

	var header tag.StreamHeader
	if err := header.Parse(headerBytes); err != nil {
		return nil, err
	}

	rr, err := wire.NewReader(r)
	if err != nil {
		return nil, err
	}
	rr.Version = header.Version

	return value.Decode(rr, c.resolver, c.sandbox)
}

// DeserializeBytes is Deserialize's byte-slice convenience form.
func (c *Codec) DeserializeBytes(data []byte) (any, error) {
	if len(data) < tag.HeaderSize {
		return nil, errs.ErrInvalidHeaderSize
	}

	return c.Deserialize(bytes.NewReader(data))
}

// bufferSink adapts *pool.ByteBuffer to io.Writer so wire.NewWriter's
// bufio.Writer can wrap it directly.
type bufferSink struct {
	buf *pool.ByteBuffer
}

func (s *bufferSink) Write(p []byte) (int, error) {
	s.buf.MustWrite(p)

	return len(p), nil
}
