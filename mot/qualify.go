package mot

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type BoneNames interface {
	BoneName(id int) (string, bool)
}

type BoneTypes interface {
	BoneType(name string) (BoneType, bool)
}

type Ranks interface {
	Rank(name string) (int, bool)
}

// DefaultOverrides are bones missing from game bone database
var DefaultOverrides = map[string]BoneType{
	"gblctr":   BoneTypePosition,
	"kg_ya_ex": BoneTypeRotation,
}

// Qualifier splits flat channel list between bones by their types.
// Records do not mark where bone channels start, so one wrong type
// shifts every following bone.
type Qualifier struct {
	Names     BoneNames
	Types     BoneTypes
	Overrides map[string]BoneType // consulted when Types has no entry, nil = DefaultOverrides
	Taxonomy  Taxonomy            // nil = DefaultTaxonomy
	Layout    Layout              // nil = DefaultLayout
	Log       logrus.FieldLogger  // nil = discard
}

type Report struct {
	Unresolved []uint16 `json:"unresolved"` // bones recorded without animation
	Leftover   int      `json:"leftover"`   // channels left after last bone
	Consumed   int      `json:"consumed"`
}

func (q *Qualifier) logger() logrus.FieldLogger {
	if q.Log != nil {
		return q.Log
	}
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	return l
}

func (q *Qualifier) boneType(name string) (BoneType, bool) {
	if bt, ok := q.Types.BoneType(name); ok {
		return bt, true
	}
	overrides := q.Overrides
	if overrides == nil {
		overrides = DefaultOverrides
	}
	bt, ok := overrides[name]
	return bt, ok
}

// Qualify walks bones in record order popping channels required by every bone type
func (q *Qualifier) Qualify(m *Motion) (*QualifiedMotion, *Report, error) {
	taxonomy := q.Taxonomy
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy
	}
	layout := q.Layout
	if layout == nil {
		layout = DefaultLayout
	}
	log := q.logger()

	qm := &QualifiedMotion{Anims: make([]BoneAnim, 0, len(m.Bones))}
	rep := &Report{}
	queue := m.Channels

	for _, id := range m.Bones {
		name, ok := q.Names.BoneName(int(id))
		if !ok {
			log.Warnf("Bone %d has no name, left without animation", id)
			qm.Anims = append(qm.Anims, BoneAnim{Bone: id})
			rep.Unresolved = append(rep.Unresolved, id)
			continue
		}
		bt, ok := q.boneType(name)
		if !ok {
			log.Warnf("Bone %d '%s' has no type, left without animation", id, name)
			qm.Anims = append(qm.Anims, BoneAnim{Bone: id})
			rep.Unresolved = append(rep.Unresolved, id)
			continue
		}

		kind, ok := taxonomy[bt]
		if !ok {
			return nil, nil, errors.Wrapf(ErrUnknownBoneType, "bone %d '%s' type %v", id, name, bt)
		}
		fields, err := layout.fields(kind)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bone %d '%s'", id, name)
		}
		need := len(fields) * 3
		if len(queue) < need {
			return nil, nil, errors.Wrapf(ErrChannelUnderflow,
				"bone %d '%s' %v needs %d channels, %d left at channel %d", id, name, kind, need, len(queue), rep.Consumed)
		}

		anim := NewBoneAnimation(kind)
		if err := anim.fill(fields, queue[:need]); err != nil {
			return nil, nil, errors.Wrapf(err, "bone %d '%s'", id, name)
		}
		queue = queue[need:]
		rep.Consumed += need
		qm.Anims = append(qm.Anims, BoneAnim{Bone: id, Anim: anim})
	}

	if rep.Leftover = len(queue); rep.Leftover != 0 {
		log.Warnf("%d channels left unassigned after %d bones", rep.Leftover, len(m.Bones))
	}
	return qm, rep, nil
}
