package jlcodec

import (
	"bytes"
	"fmt"
	"os"

	"github.com/arloliu/jlcodec/compress"
	"github.com/arloliu/jlcodec/format"
)

// SerializeFile writes v's StreamHeader-prefixed wire encoding to the
// file at path, creating or truncating it.
func (c *Codec) SerializeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Serialize(f, v)
}

// DeserializeFile reads and decodes the value stored at path by
// SerializeFile.
func (c *Codec) DeserializeFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Deserialize(f)
}

// SerializeFileCompressed writes v to path as a one-byte
// format.CompressionType tag followed by the compressed bytes of v's
// ordinary StreamHeader-prefixed wire encoding. The core wire stream
// itself is never compressed (the StreamHeader carries no compression
// flag); this envelope is strictly an archival convenience layered on
// top, reusing the teacher's compress.Codec family.
func (c *Codec) SerializeFileCompressed(path string, v any, ct format.CompressionType) error {
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := c.Serialize(&raw, v); err != nil {
		return err
	}

	compressed, err := codec.Compress(raw.Bytes())
	if err != nil {
		return fmt.Errorf("compress with %s: %w", ct, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{byte(ct)}); err != nil {
		return err
	}
	_, err = f.Write(compressed)

	return err
}

// DeserializeFileCompressed reverses SerializeFileCompressed, selecting
// the decompressor from the file's leading format.CompressionType byte.
func (c *Codec) DeserializeFileCompressed(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("jlcodec: compressed file %s is empty", path)
	}

	ct := format.CompressionType(data[0])
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(data[1:])
	if err != nil {
		return nil, fmt.Errorf("decompress with %s: %w", ct, err)
	}

	return c.Deserialize(bytes.NewReader(raw))
}
