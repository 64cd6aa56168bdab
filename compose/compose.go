package compose

import (
	"io/ioutil"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/diva_mot/bonedb"
	"github.com/mogaika/diva_mot/config"
	"github.com/mogaika/diva_mot/mot"
)

type Options struct {
	Defaults         []string
	Custom           map[string]config.CustomPose
	AddControlPoints bool

	Taxonomy mot.Taxonomy // nil = mot.DefaultTaxonomy
	Layout   mot.Layout   // nil = mot.DefaultLayout
	Log      logrus.FieldLogger
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Defaults:         cfg.Default,
		Custom:           cfg.Custom,
		AddControlPoints: cfg.AddControlPoints,
	}
}

// IsControlPoint reports bones game expects listed without animation
func IsControlPoint(name string) bool {
	return strings.Contains(name, "e_") && strings.Contains(name, "_cp")
}

type composer struct {
	db   *bonedb.DB
	opts Options
	log  logrus.FieldLogger
	qm   *mot.QualifiedMotion
}

func (c *composer) has(id uint16) bool {
	return c.qm.Find(id) != nil
}

func (c *composer) add(ba mot.BoneAnim, name string) {
	if c.has(ba.Bone) {
		c.log.Debugf("Bone %d '%s' already in motion, not adding", ba.Bone, name)
		return
	}
	c.qm.Anims = append(c.qm.Anims, ba)
}

func (c *composer) boneType(name string) (mot.BoneType, bool) {
	if bt, ok := c.db.Types.BoneType(name); ok {
		return bt, true
	}
	bt, ok := c.db.Overrides[name]
	return bt, ok
}

func (c *composer) addControlPoints() {
	for id, name := range c.db.Names {
		if id <= 0xffff && IsControlPoint(name) {
			c.log.Infof("Adding control point %d '%s'", id, name)
			c.add(mot.BoneAnim{Bone: uint16(id)}, name)
		}
	}
}

// default entry is bone name, or raw bone id animated as rotation
func (c *composer) addDefault(entry string) error {
	var id uint16
	var bt mot.BoneType
	if n, err := strconv.ParseUint(entry, 10, 16); err == nil {
		id, bt = uint16(n), mot.BoneTypeRotation
	} else {
		var ok bool
		if bt, ok = c.boneType(entry); !ok {
			c.log.Warnf("Could not find type of default bone '%s', skipping", entry)
			return nil
		}
		index, ok := c.db.Names.Index(entry)
		if !ok || index > 0xffff {
			c.log.Warnf("Could not find id of default bone '%s', skipping", entry)
			return nil
		}
		id = uint16(index)
	}

	if bt == mot.BoneTypeType1 {
		return errors.Errorf("Default bone '%s' has type %v, it cannot be generated", entry, bt)
	}
	taxonomy := c.opts.Taxonomy
	if taxonomy == nil {
		taxonomy = mot.DefaultTaxonomy
	}
	kind, ok := taxonomy[bt]
	if !ok {
		return errors.Wrapf(mot.ErrUnknownBoneType, "default bone '%s' type %v", entry, bt)
	}
	c.add(mot.BoneAnim{Bone: id, Anim: mot.NewBoneAnimation(kind)}, entry)
	return nil
}

func poseVector(v []float32) mot.Vector3 {
	var out mot.Vector3
	for i, c := range out.Axes() {
		if math.IsNaN(float64(v[i])) {
			*c = mot.Empty()
		} else {
			*c = mot.Constant(v[i])
		}
	}
	return out
}

func (c *composer) applyCustom(name string, pose config.CustomPose) error {
	index, ok := c.db.Names.Index(name)
	if !ok || index > 0xffff {
		c.log.Warnf("Custom pose for unknown bone '%s', skipping", name)
		return nil
	}
	ba := c.qm.Find(uint16(index))
	if ba == nil || ba.Anim == nil {
		c.log.Warnf("Custom pose for bone '%s' which is not animated, skipping", name)
		return nil
	}

	layout := c.opts.Layout
	if layout == nil {
		layout = mot.DefaultLayout
	}
	for field, v := range map[mot.Field][]float32{
		mot.FieldPosition: pose.Position,
		mot.FieldRotation: pose.Rotation,
		mot.FieldTarget:   pose.Target,
	} {
		if len(v) == 0 {
			continue
		}
		if len(v) != 3 {
			return errors.Errorf("Custom %s of '%s' has %d components", field, name, len(v))
		}
		used := false
		for _, f := range layout[ba.Anim.Kind] {
			used = used || f == field
		}
		if !used {
			c.log.Warnf("Custom %s of '%s' is not stored by %v animation", field, name, ba.Anim.Kind)
			continue
		}
		*ba.Anim.Vector(field) = poseVector(v)
	}
	return nil
}

// Compose appends control points and default bones to base, applies
// custom poses, then puts bones into canonical order. base is not modified.
func Compose(base *mot.QualifiedMotion, db *bonedb.DB, opts Options) (*mot.QualifiedMotion, error) {
	c := &composer{
		db:   db,
		opts: opts,
		log:  opts.Log,
		qm:   &mot.QualifiedMotion{Anims: make([]mot.BoneAnim, 0, len(base.Anims))},
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		c.log = l
	}
	for _, ba := range base.Anims {
		if ba.Anim != nil {
			anim := *ba.Anim
			ba.Anim = &anim
		}
		c.qm.Anims = append(c.qm.Anims, ba)
	}

	if opts.AddControlPoints {
		c.addControlPoints()
	}
	for _, entry := range opts.Defaults {
		if err := c.addDefault(entry); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(opts.Custom))
	for name := range opts.Custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.applyCustom(name, opts.Custom[name]); err != nil {
			return nil, err
		}
	}

	c.qm.SortCanonical(db.Names, db.Ranks)
	return c.qm, nil
}
