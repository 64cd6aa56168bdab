package mot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelValidate(t *testing.T) {
	for _, test := range []struct {
		name string
		c    Channel
		ok   bool
	}{
		{"empty", Empty(), true},
		{"pose", Constant(2), true},
		{"linear", Linear(Keyframe{Frame: 0, Value: 1}, Keyframe{Frame: 3, Value: 2}), true},
		{"smooth", Smooth(Keyframe{Frame: 0, Value: 1, Tangent: 0.5}), true},
		{"empty with value", Channel{Tag: TagEmpty, Value: 1}, false},
		{"pose with keys", Channel{Tag: TagConstant, Keys: []Keyframe{{}}}, false},
		{"linear with tangent", Linear(Keyframe{Tangent: 1}), false},
		{"smooth with value", Channel{Tag: TagSmooth, Value: 3}, false},
		{"bad tag", Channel{Tag: 4}, false},
	} {
		err := test.c.Validate()
		if test.ok {
			assert.NoError(t, err, test.name)
		} else {
			assert.Error(t, err, test.name)
		}
	}
	assert.ErrorIs(t, (&Channel{Tag: 7}).Validate(), ErrInvalidTag)
}

func TestChannelSnapshot(t *testing.T) {
	assert.Equal(t, Constant(4), Linear(Keyframe{Frame: 2, Value: 4}, Keyframe{Frame: 9, Value: 1}).Snapshot())
	assert.Equal(t, Constant(-1), Smooth(Keyframe{Frame: 0, Value: -1, Tangent: 3}).Snapshot())
	assert.Equal(t, Empty(), Linear().Snapshot())
	assert.Equal(t, Constant(7), Constant(7).Snapshot())
	assert.Equal(t, Empty(), Empty().Snapshot())
}

func TestChannelScaleDoesNotShareKeys(t *testing.T) {
	orig := Smooth(Keyframe{Frame: 1, Value: 2, Tangent: 4})
	scaled := orig.Scale(0.5)
	assert.Equal(t, Smooth(Keyframe{Frame: 1, Value: 1, Tangent: 2}), scaled)
	assert.Equal(t, float32(2), orig.Keys[0].Value)

	assert.Equal(t, Constant(90*DegreesToRadians), Constant(90).Scale(DegreesToRadians))
	assert.InDelta(t, math.Pi/2, float64(Constant(90).Scale(DegreesToRadians).Value), 1e-6)
}

func TestChannelSample(t *testing.T) {
	lin := Linear(Keyframe{Frame: 10, Value: 0}, Keyframe{Frame: 20, Value: 10})
	assert.Equal(t, float32(0), lin.Sample(0))
	assert.Equal(t, float32(5), lin.Sample(15))
	assert.Equal(t, float32(10), lin.Sample(30))

	// zero tangents give symmetric ease, midpoint stays at half
	sm := Smooth(Keyframe{Frame: 0, Value: 0}, Keyframe{Frame: 10, Value: 4})
	assert.InDelta(t, 2, float64(sm.Sample(5)), 1e-6)
	assert.InDelta(t, 4, float64(sm.Sample(10)), 1e-6)

	// constant slope tangents reproduce line
	slope := Smooth(Keyframe{Frame: 0, Value: 0, Tangent: 1}, Keyframe{Frame: 8, Value: 8, Tangent: 1})
	assert.InDelta(t, 3, float64(slope.Sample(3)), 1e-5)

	c := Constant(3)
	assert.Equal(t, float32(3), c.Sample(100))
	e := Empty()
	assert.Equal(t, float32(0), e.Sample(1))
}

func TestKeyFrames(t *testing.T) {
	a := Linear(Keyframe{Frame: 5}, Keyframe{Frame: 10})
	b := Smooth(Keyframe{Frame: 10}, Keyframe{Frame: 3})
	c := Constant(1)
	require.Equal(t, []uint16{0, 3, 5, 10}, KeyFrames(&a, &b, &c))
}
