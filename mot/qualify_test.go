package mot

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNames []string

func (tn testNames) BoneName(id int) (string, bool) {
	if id < 0 || id >= len(tn) || tn[id] == "" {
		return "", false
	}
	return tn[id], true
}

type testTypes map[string]BoneType

func (tt testTypes) BoneType(name string) (BoneType, bool) {
	bt, ok := tt[name]
	return bt, ok
}

type testRanks map[string]int

func (tr testRanks) Rank(name string) (int, bool) {
	r, ok := tr[name]
	return r, ok
}

var (
	names = testNames{"n_hara", "kl_mune", "c_kata_l", "gblctr", "e_mune_cp", "strange"}
	types = testTypes{
		"n_hara":   BoneTypeRotation,
		"kl_mune":  BoneTypeType3,
		"c_kata_l": BoneTypeType5,
		"strange":  BoneType(9),
	}
)

func pose(v float32) Channel { return Constant(v) }

func testLogger() (logrus.FieldLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	return l, &buf
}

func TestQualifyConsumesAllChannels(t *testing.T) {
	channels := make([]Channel, 0, 18)
	for i := 0; i < 18; i++ {
		channels = append(channels, pose(float32(i)))
	}
	// rotation 3 + position_rotation 6 + arm_ik 6 + gblctr position 3
	m := &Motion{Bones: []uint16{0, 1, 2, 3}, Channels: channels}

	q := &Qualifier{Names: names, Types: types}
	qm, rep, err := q.Qualify(m)
	require.NoError(t, err)
	assert.Zero(t, rep.Leftover)
	assert.Equal(t, 18, rep.Consumed)
	assert.Empty(t, rep.Unresolved)
	require.Len(t, qm.Anims, 4)

	assert.Equal(t, KindRotation, qm.Anims[0].Anim.Kind)
	assert.Equal(t, PoseVector(0, 1, 2), qm.Anims[0].Anim.Rotation)

	assert.Equal(t, KindPositionRotation, qm.Anims[1].Anim.Kind)
	assert.Equal(t, PoseVector(3, 4, 5), qm.Anims[1].Anim.Position)
	assert.Equal(t, PoseVector(6, 7, 8), qm.Anims[1].Anim.Rotation)

	// target stored before rotation
	assert.Equal(t, KindArmIK, qm.Anims[2].Anim.Kind)
	assert.Equal(t, PoseVector(9, 10, 11), qm.Anims[2].Anim.Target)
	assert.Equal(t, PoseVector(12, 13, 14), qm.Anims[2].Anim.Rotation)

	assert.Equal(t, KindPosition, qm.Anims[3].Anim.Kind, "override")
	assert.Equal(t, PoseVector(15, 16, 17), qm.Anims[3].Anim.Position)

	flat, err := qm.Flatten(nil)
	require.NoError(t, err)
	assert.True(t, m.Equal(flat))
}

func TestQualifyUnresolvedBone(t *testing.T) {
	log, buf := testLogger()
	m := &Motion{Bones: []uint16{4, 0, 40}, Channels: []Channel{pose(1), pose(2), pose(3), pose(4)}}

	q := &Qualifier{Names: names, Types: types, Log: log}
	qm, rep, err := q.Qualify(m)
	require.NoError(t, err)

	require.Len(t, qm.Anims, 3)
	assert.Nil(t, qm.Anims[0].Anim)
	assert.Equal(t, PoseVector(1, 2, 3), qm.Anims[1].Anim.Rotation, "unresolved bone consumes nothing")
	assert.Nil(t, qm.Anims[2].Anim)
	assert.Equal(t, []uint16{4, 40}, rep.Unresolved)
	assert.Equal(t, 1, rep.Leftover)
	assert.Contains(t, buf.String(), "level=warning")
}

func TestQualifyUnknownType(t *testing.T) {
	m := &Motion{Bones: []uint16{5}, Channels: make([]Channel, 6)}
	_, _, err := (&Qualifier{Names: names, Types: types}).Qualify(m)
	assert.ErrorIs(t, err, ErrUnknownBoneType)
}

func TestQualifyUnderflow(t *testing.T) {
	m := &Motion{Bones: []uint16{0, 1}, Channels: make([]Channel, 7)}
	_, _, err := (&Qualifier{Names: names, Types: types}).Qualify(m)
	assert.ErrorIs(t, err, ErrChannelUnderflow)
	assert.Contains(t, err.Error(), "kl_mune")
}

func TestQualifyInjectedTaxonomy(t *testing.T) {
	m := &Motion{Bones: []uint16{0}, Channels: []Channel{pose(1), pose(2), pose(3)}}
	q := &Qualifier{
		Names:    names,
		Types:    types,
		Taxonomy: Taxonomy{BoneTypeRotation: KindPosition},
	}
	qm, _, err := q.Qualify(m)
	require.NoError(t, err)
	assert.Equal(t, KindPosition, qm.Anims[0].Anim.Kind)
	assert.Equal(t, PoseVector(1, 2, 3), qm.Anims[0].Anim.Position)

	// gblctr falls back to overrides, empty map disables defaults
	q.Overrides = map[string]BoneType{}
	qm, rep, err := q.Qualify(&Motion{Bones: []uint16{3}})
	require.NoError(t, err)
	assert.Nil(t, qm.Anims[0].Anim)
	assert.Equal(t, []uint16{3}, rep.Unresolved)
}

func TestQualifiedRoundTrip(t *testing.T) {
	qm := &QualifiedMotion{Anims: []BoneAnim{
		{Bone: 0, Anim: &BoneAnimation{Kind: KindRotation, Rotation: Vector3{
			X: Linear(Keyframe{Frame: 0, Value: 1}, Keyframe{Frame: 12, Value: -1}),
			Y: Empty(),
			Z: Smooth(Keyframe{Frame: 3, Value: 0.5, Tangent: 0.25}),
		}}},
		{Bone: 4},
		{Bone: 2, Anim: &BoneAnimation{Kind: KindArmIK, Target: PoseVector(1, 2, 3), Rotation: EmptyVector()}},
	}}
	data, err := qm.Marshal(nil)
	require.NoError(t, err)
	m, err := Decode(data)
	require.NoError(t, err)

	back, rep, err := (&Qualifier{Names: names, Types: types}).Qualify(m)
	require.NoError(t, err)
	assert.Zero(t, rep.Leftover)
	require.Len(t, back.Anims, len(qm.Anims))
	for i := range qm.Anims {
		assert.Equal(t, qm.Anims[i].Bone, back.Anims[i].Bone)
		assert.True(t, qm.Anims[i].Anim.Equal(back.Anims[i].Anim), "bone %d", qm.Anims[i].Bone)
	}
}

func TestSortCanonical(t *testing.T) {
	ranks := testRanks{"hip": 0, "spine": 1}
	sortNames := testNames{"chest", "hip", "spine"}
	anim := NewBoneAnimation(KindRotation)

	qm := &QualifiedMotion{Anims: []BoneAnim{{Bone: 0, Anim: anim}, {Bone: 1, Anim: anim}, {Bone: 2, Anim: anim}}}
	qm.SortCanonical(sortNames, ranks)
	assert.Equal(t, []uint16{1, 2, 0}, bonesOf(qm))
}

// root bone sorted after others must still encode and decode in place
func TestSortCanonicalMovesZeroBone(t *testing.T) {
	sortNames := testNames{"gblctr", "n_hara"}
	qm := &QualifiedMotion{Anims: []BoneAnim{
		{Bone: 0, Anim: &BoneAnimation{Kind: KindPosition, Position: PoseVector(1, 2, 3)}},
		{Bone: 1, Anim: NewBoneAnimation(KindRotation)},
	}}
	qm.SortCanonical(sortNames, testRanks{"n_hara": 0, "gblctr": 1})
	require.Equal(t, []uint16{1, 0}, bonesOf(qm))

	data, err := qm.Marshal(nil)
	require.NoError(t, err)
	m, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 0}, m.Bones)

	back, _, err := (&Qualifier{Names: sortNames, Types: testTypes{"n_hara": BoneTypeRotation, "gblctr": BoneTypePosition}}).Qualify(m)
	require.NoError(t, err)
	require.Len(t, back.Anims, 2)
	assert.Equal(t, KindRotation, back.Anims[0].Anim.Kind)
	assert.Equal(t, KindPosition, back.Anims[1].Anim.Kind)
}

func TestSortCanonicalStable(t *testing.T) {
	ranks := testRanks{"b": 1, "d": 1, "a": 0}
	sortNames := testNames{"a", "b", "c", "d", "e"}
	qm := &QualifiedMotion{Anims: []BoneAnim{{Bone: 4}, {Bone: 3}, {Bone: 2}, {Bone: 77}, {Bone: 1}, {Bone: 0}}}

	qm.SortCanonical(sortNames, ranks)
	assert.Equal(t, []uint16{0, 3, 1, 4, 2, 77}, bonesOf(qm))

	qm.SortCanonical(sortNames, ranks)
	assert.Equal(t, []uint16{0, 3, 1, 4, 2, 77}, bonesOf(qm), "idempotent")
}

func bonesOf(qm *QualifiedMotion) []uint16 {
	ids := make([]uint16, len(qm.Anims))
	for i, ba := range qm.Anims {
		ids[i] = ba.Bone
	}
	return ids
}

func TestParseBoneType(t *testing.T) {
	for in, want := range map[string]BoneType{"rotation": BoneTypeRotation, "Type4": BoneTypeType4, "2": BoneTypePosition, " 6 ": BoneTypeType6} {
		bt, err := ParseBoneType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, bt, in)
	}
	_, err := ParseBoneType("spin")
	assert.Error(t, err)
}
