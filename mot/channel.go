package mot

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tag is 2-bit storage type of channel
type Tag uint8

const (
	TagEmpty    Tag = 0 // no data, no payload
	TagConstant Tag = 1 // single float
	TagLinear   Tag = 2 // keyed, linear interpolation
	TagSmooth   Tag = 3 // keyed, value + tangent per key
)

var ErrInvalidTag = errors.New("invalid channel tag")

func (t Tag) String() string {
	switch t {
	case TagEmpty:
		return "empty"
	case TagConstant:
		return "pose"
	case TagLinear:
		return "linear"
	case TagSmooth:
		return "smooth"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

func (t Tag) Keyed() bool {
	return t == TagLinear || t == TagSmooth
}

type Keyframe struct {
	Frame   uint16  `json:"frame" yaml:"frame"`
	Value   float32 `json:"value" yaml:"value"`
	Tangent float32 `json:"tangent,omitempty" yaml:"tangent,omitempty"`
}

// Channel holds one scalar animation track.
// Tag selects which of Value (TagConstant) or Keys (TagLinear, TagSmooth) is meaningful.
type Channel struct {
	Tag   Tag        `json:"type" yaml:"type"`
	Value float32    `json:"value,omitempty" yaml:"value,omitempty"`
	Keys  []Keyframe `json:"keys,omitempty" yaml:"keys,omitempty"`
}

func Empty() Channel {
	return Channel{Tag: TagEmpty}
}

func Constant(v float32) Channel {
	return Channel{Tag: TagConstant, Value: v}
}

func Linear(keys ...Keyframe) Channel {
	return Channel{Tag: TagLinear, Keys: keys}
}

func Smooth(keys ...Keyframe) Channel {
	return Channel{Tag: TagSmooth, Keys: keys}
}

// Validate checks that payload fields agree with the tag
func (c *Channel) Validate() error {
	switch c.Tag {
	case TagEmpty:
		if c.Value != 0 || len(c.Keys) != 0 {
			return errors.Errorf("empty channel carries data (value %v, %d keys)", c.Value, len(c.Keys))
		}
	case TagConstant:
		if len(c.Keys) != 0 {
			return errors.Errorf("pose channel carries %d keys", len(c.Keys))
		}
	case TagLinear:
		if c.Value != 0 {
			return errors.Errorf("linear channel carries pose value %v", c.Value)
		}
		for i, k := range c.Keys {
			if k.Tangent != 0 {
				return errors.Errorf("linear channel key %d (frame %d) carries tangent %v", i, k.Frame, k.Tangent)
			}
		}
	case TagSmooth:
		if c.Value != 0 {
			return errors.Errorf("smooth channel carries pose value %v", c.Value)
		}
	default:
		return errors.Wrapf(ErrInvalidTag, "%v", c.Tag)
	}
	if len(c.Keys) > 0xffff {
		return errors.Errorf("%d keys do not fit into u16 count", len(c.Keys))
	}
	return nil
}

// MaxFrame returns highest key frame index, 0 for non keyed channels
func (c *Channel) MaxFrame() uint16 {
	var max uint16
	if c.Tag.Keyed() {
		for _, k := range c.Keys {
			if k.Frame > max {
				max = k.Frame
			}
		}
	}
	return max
}

func (c Channel) Equal(o Channel) bool {
	if c.Tag != o.Tag || c.Value != o.Value || len(c.Keys) != len(o.Keys) {
		return false
	}
	for i := range c.Keys {
		if c.Keys[i] != o.Keys[i] {
			return false
		}
	}
	return true
}

// Snapshot collapses keyed channel into pose of its first key.
// Lossy, used to freeze motions into a still pose.
func (c Channel) Snapshot() Channel {
	if c.Tag.Keyed() {
		if len(c.Keys) == 0 {
			return Empty()
		}
		return Constant(c.Keys[0].Value)
	}
	return c
}

// Scale multiplies every value (and tangent) of channel by factor
func (c Channel) Scale(factor float32) Channel {
	switch c.Tag {
	case TagConstant:
		c.Value *= factor
	case TagLinear, TagSmooth:
		keys := make([]Keyframe, len(c.Keys))
		for i, k := range c.Keys {
			keys[i] = Keyframe{Frame: k.Frame, Value: k.Value * factor, Tangent: k.Tangent * factor}
		}
		c.Keys = keys
	}
	return c
}

func (c Channel) String() string {
	switch c.Tag {
	case TagEmpty:
		return "empty"
	case TagConstant:
		return fmt.Sprintf("pose(%v)", c.Value)
	default:
		return fmt.Sprintf("%v(%d keys)", c.Tag, len(c.Keys))
	}
}
