package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/diva_mot/config"
)

func TestEulerToQuatAxis(t *testing.T) {
	q := EulerToQuat(mgl32.Vec3{0, 0, math.Pi / 2})
	half := float32(math.Sqrt2 / 2)
	assert.InDelta(t, 0, q.V[0], 1e-6)
	assert.InDelta(t, 0, q.V[1], 1e-6)
	assert.InDelta(t, half, q.V[2], 1e-6)
	assert.InDelta(t, half, q.W, 1e-6)
}

func TestStringConversion(t *testing.T) {
	defer config.SetEncoding(config.DEFAULT_ENCODING)

	s, err := BytesToString([]byte("n_hara\x00garbage"))
	require.NoError(t, err)
	assert.Equal(t, "n_hara", s)

	require.NoError(t, config.SetEncoding("shift_jis"))
	s, err = BytesToString([]byte{0x8d, 0x98, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "腰", s)
}

func TestDumpHex(t *testing.T) {
	dump := DumpHex([]byte("glTF"))
	assert.Contains(t, dump, "67 6c 54 46")
	assert.Contains(t, SDump(struct{ A int }{7}), "A: (int) 7")
}
