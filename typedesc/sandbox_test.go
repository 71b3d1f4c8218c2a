package typedesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxGetOrCreateIsIdempotent(t *testing.T) {
	sb := NewSandbox("sandbox")
	rec := &TypeNameRecord{Name: "Point", FieldNames: []string{"x", "y"}}

	d1 := sb.GetOrCreate(rec, 1)
	d2 := sb.GetOrCreate(rec, 1)

	assert.Same(t, d1, d2)
	assert.False(t, sb.HasCollision())
}

func TestSandboxLookup(t *testing.T) {
	sb := NewSandbox("sandbox")
	rec := &TypeNameRecord{Name: "Point"}
	sb.GetOrCreate(rec, 1)

	d, ok := sb.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, "Point", d.TypeName())

	_, ok = sb.Lookup("Missing")
	assert.False(t, ok)
}

func TestSandboxReset(t *testing.T) {
	sb := NewSandbox("sandbox")
	sb.GetOrCreate(&TypeNameRecord{Name: "Point"}, 1)

	sb.Reset()

	_, ok := sb.Lookup("Point")
	assert.False(t, ok)
}
