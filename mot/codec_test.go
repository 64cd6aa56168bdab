package mot

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMotion() *Motion {
	return &Motion{
		Bones: []uint16{0, 1},
		Channels: []Channel{
			Empty(),
			Constant(1.0),
			Linear(Keyframe{Frame: 0, Value: 0}, Keyframe{Frame: 10, Value: 5}),
			Smooth(Keyframe{Frame: 0, Value: 0, Tangent: 0}),
		},
	}
}

func TestMarshalLayout(t *testing.T) {
	data, err := sampleMotion().Marshal()
	require.NoError(t, err)
	require.Len(t, data, 80)

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	u16 := func(off int) uint16 { return binary.LittleEndian.Uint16(data[off:]) }

	assert.Equal(t, uint32(32), u32(0))
	assert.Equal(t, uint32(36), u32(4))
	assert.Equal(t, uint32(40), u32(8), "payload offset")
	assert.Equal(t, uint32(72), u32(12), "bones offset")
	assert.Equal(t, make([]byte, 16), data[16:32])

	assert.Equal(t, uint16(4+1+0x3fff), u16(32))
	assert.Equal(t, uint16(11), u16(34))
	assert.Equal(t, []byte{0xe4, 0x00}, data[36:38])
	assert.Equal(t, []byte{0, 0}, data[38:40], "pos %% 6 padding")

	assert.Equal(t, math.Float32bits(1), u32(40))
	assert.Equal(t, uint16(2), u16(44))
	assert.Equal(t, uint16(10), u16(48))
	assert.Equal(t, math.Float32bits(5), u32(56))
	assert.Equal(t, uint16(0), u16(72))
	assert.Equal(t, uint16(1), u16(74))
	assert.Equal(t, uint16(0), u16(76), "terminator after bone 0")
	assert.Equal(t, []byte{0, 0}, data[78:80], "final padding")

	h, err := ReadHeader(data)
	require.NoError(t, err)
	assert.Equal(t, 4, h.ChannelCount)
	assert.Equal(t, uint16(1), h.Marker)
	assert.Equal(t, uint16(11), h.FrameCount)
}

func TestRoundTrip(t *testing.T) {
	m := sampleMotion()
	data, err := m.Marshal()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(decoded), "decoded %+v", decoded)

	again, err := decoded.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestRoundTripBoneLists(t *testing.T) {
	for _, bones := range [][]uint16{{0}, {7}, {0, 3, 9}, {4, 5, 6}, {1, 2, 3, 4}, {3, 0, 5}, {8, 0}, {}} {
		m := &Motion{Bones: bones, Channels: []Channel{Constant(2)}}
		data, err := m.Marshal()
		require.NoError(t, err, "bones %v", bones)

		h, err := ReadHeader(data)
		require.NoError(t, err)
		end := int(h.BonesOffset) + 2*len(bones)
		if hasZero(bones) {
			require.Zero(t, len(data)%4, "bones %v", bones)
			assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[end:]), "bones %v", bones)
		} else {
			assert.Len(t, data, end, "no padding after bones %v", bones)
		}

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, len(bones), len(decoded.Bones))
		assert.True(t, m.Equal(decoded), "bones %v decoded as %v", bones, decoded.Bones)
	}
}

func hasZero(bones []uint16) bool {
	for _, id := range bones {
		if id == 0 {
			return true
		}
	}
	return false
}

func TestDecodeZeroBoneInsideList(t *testing.T) {
	data, err := (&Motion{Bones: []uint16{3, 7, 5}, Channels: []Channel{Constant(1)}}).Marshal()
	require.NoError(t, err)
	h, err := ReadHeader(data)
	require.NoError(t, err)

	binary.LittleEndian.PutUint16(data[h.BonesOffset+2:], 0)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 0, 5}, decoded.Bones)

	// second zero ends list
	binary.LittleEndian.PutUint16(data[h.BonesOffset+4:], 0)
	decoded, err = Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 0}, decoded.Bones)
}

func TestMarshalRejectsSecondZeroBone(t *testing.T) {
	_, err := (&Motion{Bones: []uint16{0, 3, 0}}).Marshal()
	assert.Error(t, err)
	_, err = (&Motion{Bones: []uint16{4, 0, 0}}).Marshal()
	assert.Error(t, err)

	_, err = (&Motion{Bones: []uint16{3, 0}}).Marshal()
	assert.NoError(t, err)
}

func TestKeyedValuesAligned(t *testing.T) {
	for constants := 0; constants < 4; constants++ {
		for keys := 1; keys < 5; keys++ {
			m := &Motion{Bones: []uint16{1}}
			for i := 0; i < constants; i++ {
				m.Channels = append(m.Channels, Constant(float32(i)))
			}
			lin := Linear()
			for k := 0; k < keys; k++ {
				lin.Keys = append(lin.Keys, Keyframe{Frame: uint16(k * 2), Value: float32(100 + k)})
			}
			m.Channels = append(m.Channels, lin)

			data, err := m.Marshal()
			require.NoError(t, err)
			h, err := ReadHeader(data)
			require.NoError(t, err)

			values := int(h.PayloadOffset) + 4*constants + 2 + 2*keys
			values += alignPad(values, 4)
			require.Zero(t, values%4)
			assert.Equal(t, math.Float32bits(100), binary.LittleEndian.Uint32(data[values:]),
				"constants=%d keys=%d", constants, keys)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.True(t, m.Equal(decoded))
		}
	}
}

func TestEmptyRotationBone(t *testing.T) {
	qm := &QualifiedMotion{Anims: []BoneAnim{{Bone: 0, Anim: NewBoneAnimation(KindRotation)}}}
	data, err := qm.Marshal(nil)
	require.NoError(t, err)

	h, err := ReadHeader(data)
	require.NoError(t, err)
	assert.Equal(t, h.PayloadOffset, h.BonesOffset, "no payload bytes")
	assert.Equal(t, 3, h.ChannelCount)
	assert.Equal(t, byte(0), data[h.TagsOffset])
	assert.Equal(t, 1, tagBytesCount(h.ChannelCount+1))
}

// seek encoder must give same bytes even when record does not start at 0
func TestEncodeToMatchesMarshal(t *testing.T) {
	qm := &QualifiedMotion{Anims: []BoneAnim{
		{Bone: 0, Anim: &BoneAnimation{Kind: KindPosition, Position: PoseVector(1, 2, 3)}},
		{Bone: 4},
		{Bone: 2, Anim: &BoneAnimation{Kind: KindRotationIK,
			Target:   Vector3{X: Linear(Keyframe{Frame: 0, Value: 1}, Keyframe{Frame: 30, Value: 2}), Y: Empty(), Z: Constant(3)},
			Rotation: Vector3{X: Smooth(Keyframe{Frame: 5, Value: 1, Tangent: 0.1}), Y: Empty(), Z: Empty()},
		}},
	}}
	want, err := qm.Marshal(nil)
	require.NoError(t, err)

	f, err := os.Create(filepath.Join(t.TempDir(), "out.bin"))
	require.NoError(t, err)
	defer f.Close()

	prefix := []byte("PREFIX")
	_, err = f.Write(prefix)
	require.NoError(t, err)

	n, err := qm.EncodeTo(f, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), n)

	end, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(len(prefix)+len(want)), end, "sink left at record end")

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, prefix, got[:len(prefix)])
	assert.Equal(t, want, got[len(prefix):])
}

func TestMarshalValidation(t *testing.T) {
	_, err := (&Motion{Bones: []uint16{1}, Channels: []Channel{Empty(), {Tag: TagConstant, Keys: []Keyframe{{}}}}}).Marshal()
	var eerr *EncodeError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, -1, eerr.Bone)
	assert.Equal(t, 1, eerr.Channel)

	_, err = (&Motion{Bones: []uint16{1}, Channels: []Channel{Linear(Keyframe{Frame: 0xffff})}}).Marshal()
	assert.ErrorIs(t, err, ErrFrameOverflow)

	qm := &QualifiedMotion{Anims: []BoneAnim{
		{Bone: 9, Anim: &BoneAnimation{Kind: KindRotation, Rotation: Vector3{X: Channel{Tag: TagEmpty, Value: 1}}}},
	}}
	_, err = qm.Marshal(nil)
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, 9, eerr.Bone)
}

func TestChannelCountLimit(t *testing.T) {
	m := &Motion{Bones: []uint16{1}, Channels: make([]Channel, COUNT_MASK-1)}
	_, err := m.Marshal()
	assert.ErrorIs(t, err, ErrTooManyChannels)

	m.Channels = m.Channels[:COUNT_MASK-2]
	data, err := m.Marshal()
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Channels, COUNT_MASK-2)
}

func TestDecodeMalformed(t *testing.T) {
	data, err := sampleMotion().Marshal()
	require.NoError(t, err)

	for _, test := range []struct {
		size   int
		field  string
		offset int
	}{
		{10, "payload offset", 8},
		{33, "channel count", 32},
		{50, "bones section", 72},
	} {
		_, err := Decode(data[:test.size])
		var derr *DecodeError
		require.ErrorAs(t, err, &derr, "size %d", test.size)
		assert.Equal(t, test.field, derr.Field, "size %d", test.size)
		assert.Equal(t, test.offset, derr.Offset, "size %d", test.size)
	}

	// bones section moved to record end, payload cut at linear values
	cut := append([]byte(nil), data[:50]...)
	binary.LittleEndian.PutUint32(cut[12:], 50)
	_, err = Decode(cut)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "key values alignment", derr.Field)
	assert.Equal(t, 50, derr.Offset)
}

func TestSnapshotKeepsLayout(t *testing.T) {
	m := sampleMotion()
	m.Snapshot()
	assert.Equal(t, []Channel{Empty(), Constant(1), Constant(0), Constant(0)}, m.Channels)
	assert.Equal(t, 1, m.FrameCount())
	assert.Equal(t, map[Tag]int{TagEmpty: 1, TagConstant: 3}, m.Stats())
}
