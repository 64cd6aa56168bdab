package mot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// BoneType is code from external bone database
type BoneType int

const (
	BoneTypeRotation BoneType = 0
	BoneTypeType1    BoneType = 1
	BoneTypePosition BoneType = 2
	BoneTypeType3    BoneType = 3
	BoneTypeType4    BoneType = 4
	BoneTypeType5    BoneType = 5
	BoneTypeType6    BoneType = 6
)

var boneTypeNames = map[BoneType]string{
	BoneTypeRotation: "rotation",
	BoneTypeType1:    "type1",
	BoneTypePosition: "position",
	BoneTypeType3:    "type3",
	BoneTypeType4:    "type4",
	BoneTypeType5:    "type5",
	BoneTypeType6:    "type6",
}

func (bt BoneType) String() string {
	if name, ok := boneTypeNames[bt]; ok {
		return name
	}
	return fmt.Sprintf("bonetype(%d)", int(bt))
}

// ParseBoneType accepts type name (case insensitive) or numeric code
func ParseBoneType(s string) (BoneType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for bt, name := range boneTypeNames {
		if name == s {
			return bt, nil
		}
	}
	if code, err := strconv.Atoi(s); err == nil {
		return BoneType(code), nil
	}
	return 0, errors.Errorf("Unknown bone type '%s'", s)
}

// AnimKind is shape of bone animation: which vectors it carries
type AnimKind int

const (
	KindRotation AnimKind = iota
	KindPosition
	KindUnknown2
	KindPositionRotation
	KindRotationIK
	KindArmIK
	KindPositionIKRotation
)

var animKindNames = []string{
	KindRotation:           "rotation",
	KindPosition:           "position",
	KindUnknown2:           "unknown2",
	KindPositionRotation:   "position_rotation",
	KindRotationIK:         "rotation_ik",
	KindArmIK:              "arm_ik",
	KindPositionIKRotation: "position_ik_rotation",
}

func (k AnimKind) String() string {
	if k >= 0 && int(k) < len(animKindNames) {
		return animKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseAnimKind(s string) (AnimKind, error) {
	for i, name := range animKindNames {
		if name == s {
			return AnimKind(i), nil
		}
	}
	return 0, errors.Errorf("Unknown animation kind '%s'", s)
}

type Field string

const (
	FieldPosition Field = "position"
	FieldRotation Field = "rotation"
	FieldTarget   Field = "target"
	FieldA        Field = "a"
	FieldB        Field = "b"
)

var Fields = []Field{FieldPosition, FieldRotation, FieldTarget, FieldA, FieldB}

// Taxonomy maps bone type code to animation shape
type Taxonomy map[BoneType]AnimKind

// Layout lists vectors of every animation shape in record order
type Layout map[AnimKind][]Field

var DefaultTaxonomy = Taxonomy{
	BoneTypeRotation: KindRotation,
	BoneTypeType1:    KindUnknown2,
	BoneTypePosition: KindPosition,
	BoneTypeType3:    KindPositionRotation,
	BoneTypeType4:    KindRotationIK,
	BoneTypeType5:    KindArmIK,
	BoneTypeType6:    KindPositionIKRotation,
}

// Field order of IK kinds is not confirmed against game code
var DefaultLayout = Layout{
	KindRotation:           {FieldRotation},
	KindPosition:           {FieldPosition},
	KindUnknown2:           {FieldA, FieldB},
	KindPositionRotation:   {FieldPosition, FieldRotation},
	KindRotationIK:         {FieldTarget, FieldRotation},
	KindArmIK:              {FieldTarget, FieldRotation},
	KindPositionIKRotation: {FieldPosition, FieldTarget},
}

func (l Layout) fields(kind AnimKind) ([]Field, error) {
	fields, ok := l[kind]
	if !ok {
		return nil, errors.Errorf("layout has no entry for %v", kind)
	}
	return fields, nil
}

type Vector3 struct {
	X Channel `json:"x" yaml:"x"`
	Y Channel `json:"y" yaml:"y"`
	Z Channel `json:"z" yaml:"z"`
}

func EmptyVector() Vector3 {
	return Vector3{X: Empty(), Y: Empty(), Z: Empty()}
}

func PoseVector(x, y, z float32) Vector3 {
	return Vector3{X: Constant(x), Y: Constant(y), Z: Constant(z)}
}

func (v *Vector3) Axes() []*Channel {
	return []*Channel{&v.X, &v.Y, &v.Z}
}

func (v Vector3) Snapshot() Vector3 {
	return Vector3{X: v.X.Snapshot(), Y: v.Y.Snapshot(), Z: v.Z.Snapshot()}
}

// Convert scales every axis by its own factor
func (v Vector3) Convert(x, y, z float32) Vector3 {
	return Vector3{X: v.X.Scale(x), Y: v.Y.Scale(y), Z: v.Z.Scale(z)}
}

func (v Vector3) Equal(o Vector3) bool {
	return v.X.Equal(o.X) && v.Y.Equal(o.Y) && v.Z.Equal(o.Z)
}

func (v *Vector3) IsEmpty() bool {
	return v.X.Tag == TagEmpty && v.Y.Tag == TagEmpty && v.Z.Tag == TagEmpty
}

// BoneAnimation is animation of single bone.
// Only vectors listed in layout for Kind are meaningful.
type BoneAnimation struct {
	Kind     AnimKind `json:"kind" yaml:"kind"`
	Position Vector3  `json:"position" yaml:"position"`
	Rotation Vector3  `json:"rotation" yaml:"rotation"`
	Target   Vector3  `json:"target" yaml:"target"`
	A        Vector3  `json:"a" yaml:"a"`
	B        Vector3  `json:"b" yaml:"b"`
}

// NewBoneAnimation returns animation of kind with all channels empty
func NewBoneAnimation(kind AnimKind) *BoneAnimation {
	return &BoneAnimation{
		Kind:     kind,
		Position: EmptyVector(),
		Rotation: EmptyVector(),
		Target:   EmptyVector(),
		A:        EmptyVector(),
		B:        EmptyVector(),
	}
}

func (ba *BoneAnimation) Vector(f Field) *Vector3 {
	switch f {
	case FieldPosition:
		return &ba.Position
	case FieldRotation:
		return &ba.Rotation
	case FieldTarget:
		return &ba.Target
	case FieldA:
		return &ba.A
	case FieldB:
		return &ba.B
	}
	return nil
}

// Channels flattens animation vectors into channels in layout order
func (ba *BoneAnimation) Channels(layout Layout) ([]Channel, error) {
	fields, err := layout.fields(ba.Kind)
	if err != nil {
		return nil, err
	}
	channels := make([]Channel, 0, len(fields)*3)
	for _, f := range fields {
		v := ba.Vector(f)
		if v == nil {
			return nil, errors.Errorf("layout of %v references unknown field '%s'", ba.Kind, f)
		}
		channels = append(channels, v.X, v.Y, v.Z)
	}
	return channels, nil
}

func ChannelCount(layout Layout, kind AnimKind) (int, error) {
	fields, err := layout.fields(kind)
	if err != nil {
		return 0, err
	}
	return len(fields) * 3, nil
}

// fill assigns channels to vectors in layout order. len(channels) must match layout.
func (ba *BoneAnimation) fill(fields []Field, channels []Channel) error {
	for i, f := range fields {
		v := ba.Vector(f)
		if v == nil {
			return errors.Errorf("layout of %v references unknown field '%s'", ba.Kind, f)
		}
		v.X, v.Y, v.Z = channels[i*3], channels[i*3+1], channels[i*3+2]
	}
	return nil
}

func (ba *BoneAnimation) Snapshot() {
	for _, f := range Fields {
		v := ba.Vector(f)
		*v = v.Snapshot()
	}
}

func (ba *BoneAnimation) Equal(o *BoneAnimation) bool {
	if ba == nil || o == nil {
		return ba == o
	}
	if ba.Kind != o.Kind {
		return false
	}
	for _, f := range Fields {
		if !ba.Vector(f).Equal(*o.Vector(f)) {
			return false
		}
	}
	return true
}
