package mot

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/diva_mot/utils"
)

// 60 frames per second is game rate
const DEFAULT_FPS = 60

type GLTFMotionExported struct {
	Animation uint32
	BoneNodes map[uint16]uint32
}

func boneLabel(names BoneNames, id uint16) string {
	if names != nil {
		if name, ok := names.BoneName(int(id)); ok {
			return name
		}
	}
	return fmt.Sprintf("bone_%d", id)
}

type gltfAnimBuilder struct {
	doc   *gltf.Document
	anim  *gltf.Animation
	fps   float32
	times map[string]uint32 // input accessors cache by frame set
}

func (b *gltfAnimBuilder) timeAccessor(frames []uint16) uint32 {
	key := fmt.Sprint(frames)
	if idx, ok := b.times[key]; ok {
		return idx
	}
	times := make([]float32, len(frames))
	for i, f := range frames {
		times[i] = float32(f) / b.fps
	}
	idx := modeler.WriteAccessor(b.doc, gltf.TargetNone, times)
	b.times[key] = idx
	return idx
}

func (b *gltfAnimBuilder) channel(node uint32, path gltf.TRSProperty, frames []uint16, output interface{}) {
	sampler := &gltf.AnimationSampler{
		Input:         gltf.Index(b.timeAccessor(frames)),
		Output:        gltf.Index(modeler.WriteAccessor(b.doc, gltf.TargetNone, output)),
		Interpolation: gltf.InterpolationLinear,
	}
	b.anim.Samplers = append(b.anim.Samplers, sampler)
	b.anim.Channels = append(b.anim.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(b.anim.Samplers) - 1)),
		Target:  gltf.ChannelTarget{Node: gltf.Index(node), Path: path},
	})
}

func (b *gltfAnimBuilder) translation(node uint32, v *Vector3) {
	if v.IsEmpty() {
		return
	}
	frames := KeyFrames(v.Axes()...)
	values := make([][3]float32, len(frames))
	for i, f := range frames {
		values[i] = v.Sample(float32(f))
	}
	b.channel(node, gltf.TRSTranslation, frames, values)
}

func (b *gltfAnimBuilder) rotation(node uint32, v *Vector3) {
	if v.IsEmpty() {
		return
	}
	frames := KeyFrames(v.Axes()...)
	values := make([][4]float32, len(frames))
	for i, f := range frames {
		q := utils.EulerToQuat(v.Sample(float32(f)))
		values[i] = q.V.Vec4(q.W)
	}
	b.channel(node, gltf.TRSRotation, frames, values)
}

// ExportGLTF adds node per bone and single animation to doc.
// Rotations are euler angles in radians. IK targets are animated on
// separate "<bone>_target" nodes since glTF has no IK.
func (qm *QualifiedMotion) ExportGLTF(doc *gltf.Document, names BoneNames, name string, fps float32) (*GLTFMotionExported, error) {
	if fps <= 0 {
		return nil, errors.Errorf("Invalid fps %v", fps)
	}

	exp := &GLTFMotionExported{BoneNodes: make(map[uint16]uint32, len(qm.Anims))}
	b := &gltfAnimBuilder{
		doc:   doc,
		anim:  &gltf.Animation{Name: name},
		fps:   fps,
		times: make(map[string]uint32),
	}

	addNode := func(name string) uint32 {
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:     name,
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
		})
		return uint32(len(doc.Nodes) - 1)
	}

	for _, ba := range qm.Anims {
		if _, ok := exp.BoneNodes[ba.Bone]; ok {
			return nil, errors.Errorf("Bone %d is listed twice", ba.Bone)
		}
		label := boneLabel(names, ba.Bone)
		node := addNode(label)
		exp.BoneNodes[ba.Bone] = node

		anim := ba.Anim
		if anim == nil {
			continue
		}
		switch anim.Kind {
		case KindRotation:
			b.rotation(node, &anim.Rotation)
		case KindPosition:
			b.translation(node, &anim.Position)
		case KindPositionRotation:
			b.translation(node, &anim.Position)
			b.rotation(node, &anim.Rotation)
		case KindRotationIK, KindArmIK:
			b.rotation(node, &anim.Rotation)
			b.translation(addNode(label+"_target"), &anim.Target)
		case KindPositionIKRotation:
			b.translation(node, &anim.Position)
			b.translation(addNode(label+"_target"), &anim.Target)
		case KindUnknown2:
			// meaning of vectors is not known
		}
	}

	if len(b.anim.Channels) != 0 {
		doc.Animations = append(doc.Animations, b.anim)
		exp.Animation = uint32(len(doc.Animations) - 1)
	}
	return exp, nil
}
