package jlcodec

import (
	"io"

	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/value"
	"github.com/arloliu/jlcodec/wire"
)

// WriterSession is a long-lived connection that has already exchanged a
// StreamHeader and now streams values one after another without
// repeating it, mirroring the way a single wire.Writer's back-reference
// tables and known-object-by-number cache stay alive across an entire
// stream (spec.md §4.2/§4.6 apply per-session, not per-value).
type WriterSession struct {
	codec *Codec
	w     *wire.Writer
}

// OpenSession writes a StreamHeader to sink and returns a WriterSession
// ready to stream values.
func OpenSession(c *Codec, sink io.Writer) (*WriterSession, error) {
	if _, err := sink.Write(tag.NewStreamHeader().Bytes()); err != nil {
		return nil, err
	}

	w, err := wire.NewWriter(sink)
	if err != nil {
		return nil, err
	}

	return &WriterSession{codec: c, w: w}, nil
}

// Send writes v's wire encoding to the session.
func (s *WriterSession) Send(v any) error {
	return s.codec.SerializeNoHeader(s.w, v)
}

// ReaderSession is DeserializeSession's counterpart on the receiving
// end: a session whose StreamHeader has already been parsed, decoding
// further values against the peer's negotiated protocol version.
type ReaderSession struct {
	codec *Codec
	r     *wire.Reader
}

// DeserializeSession parses src's leading StreamHeader and returns a
// ReaderSession for decoding the values that follow it.
func DeserializeSession(c *Codec, src io.Reader) (*ReaderSession, error) {
	headerBytes := make([]byte, tag.HeaderSize)
	if _, err := io.ReadFull(src, headerBytes); err != nil {
		return nil, err
	}

	var header tag.StreamHeader
	if err := header.Parse(headerBytes); err != nil {
		return nil, err
	}

	r, err := wire.NewReader(src)
	if err != nil {
		return nil, err
	}
	r.Version = header.Version

	return &ReaderSession{codec: c, r: r}, nil
}

// Receive decodes the next value from the session.
func (s *ReaderSession) Receive() (any, error) {
	return value.Decode(s.r, s.codec.resolver, s.codec.sandbox)
}
