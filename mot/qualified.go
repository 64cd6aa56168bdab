package mot

import (
	"io"

	"github.com/pkg/errors"
)

// BoneAnim pairs bone index with its animation.
// Nil Anim means bone is listed but not animated (control points).
type BoneAnim struct {
	Bone uint16         `json:"bone" yaml:"bone"`
	Anim *BoneAnimation `json:"anim" yaml:"anim"`
}

type QualifiedMotion struct {
	Anims []BoneAnim `json:"anims" yaml:"anims"`
}

func (qm *QualifiedMotion) Snapshot() {
	for _, ba := range qm.Anims {
		if ba.Anim != nil {
			ba.Anim.Snapshot()
		}
	}
}

func (qm *QualifiedMotion) Find(bone uint16) *BoneAnim {
	for i := range qm.Anims {
		if qm.Anims[i].Bone == bone {
			return &qm.Anims[i]
		}
	}
	return nil
}

// Flatten converts structured motion back into flat form.
// Every bone is listed, only animated bones contribute channels.
func (qm *QualifiedMotion) Flatten(layout Layout) (*Motion, error) {
	r, err := qm.record(layout)
	if err != nil {
		return nil, err
	}
	return &Motion{Bones: r.bones, Channels: r.channels}, nil
}

func (qm *QualifiedMotion) record(layout Layout) (*record, error) {
	if layout == nil {
		layout = DefaultLayout
	}
	r := &record{
		bones:  make([]uint16, 0, len(qm.Anims)),
		owners: make([]int, 0, len(qm.Anims)*6),
	}
	for _, ba := range qm.Anims {
		r.bones = append(r.bones, ba.Bone)
		if ba.Anim == nil {
			continue
		}
		channels, err := ba.Anim.Channels(layout)
		if err != nil {
			return nil, &EncodeError{Bone: int(ba.Bone), Channel: len(r.channels), Err: err}
		}
		r.channels = append(r.channels, channels...)
		for range channels {
			r.owners = append(r.owners, int(ba.Bone))
		}
	}
	return r, nil
}

// Marshal flattens animations in layout order (nil layout = DefaultLayout) and encodes record
func (qm *QualifiedMotion) Marshal(layout Layout) ([]byte, error) {
	r, err := qm.record(layout)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to flatten motion")
	}
	return marshalRecord(r)
}

func (qm *QualifiedMotion) EncodeTo(ws io.WriteSeeker, layout Layout) (int64, error) {
	r, err := qm.record(layout)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to flatten motion")
	}
	return encodeRecord(ws, r)
}
