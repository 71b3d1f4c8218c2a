package half

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTripCommonValues(t *testing.T) {
	cases := []float32{0, 1, -1, 2.5, -2.5, 65504, 0.000060976}
	for _, f := range cases {
		bits := FromFloat32(f)
		got := ToFloat32(bits)
		assert.InDelta(t, float64(f), float64(got), 0.01, "value %v", f)
	}
}

func TestZero(t *testing.T) {
	assert.Equal(t, uint16(0), FromFloat32(0))
	assert.Equal(t, float32(0), ToFloat32(0))
}

func TestOverflowSaturatesToInf(t *testing.T) {
	bits := FromFloat32(1e9)
	assert.Equal(t, uint16(0x7c00), bits)
}
