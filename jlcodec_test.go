package jlcodec

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jlcodec/format"
	"github.com/arloliu/jlcodec/typedesc"
)

type person struct {
	Name string
	Age  int64
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	c := NewCodec()
	c.RegisterType(typedesc.Sandboxed("jlcodec.test"), "Person", person{})

	want := &person{Name: "Ada", Age: 36}

	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf, want))

	got, err := c.Deserialize(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSerializeBytesDeserializeBytes(t *testing.T) {
	c := NewCodec()

	want := []any{int64(1), "hello", true}

	data, err := c.SerializeBytes(want)
	require.NoError(t, err)

	got, err := c.DeserializeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSession(t *testing.T) {
	c := NewCodec()

	var pipe bytes.Buffer
	w, err := OpenSession(c, &pipe)
	require.NoError(t, err)

	require.NoError(t, w.Send(int64(7)))
	require.NoError(t, w.Send("second"))

	r, err := DeserializeSession(c, &pipe)
	require.NoError(t, err)

	first, err := r.Receive()
	require.NoError(t, err)
	assert.Equal(t, int64(7), first)

	second, err := r.Receive()
	require.NoError(t, err)
	assert.Equal(t, "second", second)
}

func TestSerializeFileDeserializeFile(t *testing.T) {
	c := NewCodec()
	path := filepath.Join(t.TempDir(), "graph.jl")

	want := map[string]any{"a": int64(1), "b": int64(2)}
	require.NoError(t, c.SerializeFile(path, want))

	got, err := c.DeserializeFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSerializeFileCompressedRoundTrip(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionLZ4, format.CompressionS2} {
		ct := ct
		t.Run(ct.String(), func(t *testing.T) {
			c := NewCodec()
			path := filepath.Join(t.TempDir(), "graph.jl.cz")

			want := "a fairly compressible payload, a fairly compressible payload"
			require.NoError(t, c.SerializeFileCompressed(path, want, ct))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))

			got, err := c.DeserializeFileCompressed(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
