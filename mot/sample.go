package mot

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// DegreesToRadians is factor for Channel.Scale / Vector3.Convert
var DegreesToRadians = mgl32.DegToRad(1)

// Sample evaluates channel at frame. Keys must be sorted by frame.
// Outside key range value of nearest key is returned.
func (c *Channel) Sample(frame float32) float32 {
	switch c.Tag {
	case TagConstant:
		return c.Value
	case TagLinear, TagSmooth:
	default:
		return 0
	}
	if len(c.Keys) == 0 {
		return 0
	}
	first, last := c.Keys[0], c.Keys[len(c.Keys)-1]
	if frame <= float32(first.Frame) {
		return first.Value
	}
	if frame >= float32(last.Frame) {
		return last.Value
	}

	// first key strictly after frame
	i := sort.Search(len(c.Keys), func(i int) bool { return float32(c.Keys[i].Frame) > frame })
	k0, k1 := c.Keys[i-1], c.Keys[i]
	span := float32(k1.Frame) - float32(k0.Frame)
	if span <= 0 {
		return k1.Value
	}
	t := mgl32.Clamp((frame-float32(k0.Frame))/span, 0, 1)

	if c.Tag == TagLinear {
		return k0.Value + (k1.Value-k0.Value)*t
	}

	// cubic hermite, tangents are per frame slopes
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*k0.Value + h10*span*k0.Tangent + h01*k1.Value + h11*span*k1.Tangent
}

func (v *Vector3) Sample(frame float32) mgl32.Vec3 {
	return mgl32.Vec3{v.X.Sample(frame), v.Y.Sample(frame), v.Z.Sample(frame)}
}

// KeyFrames returns sorted union of key frames of all channels, at least frame 0
func KeyFrames(channels ...*Channel) []uint16 {
	set := map[uint16]struct{}{0: {}}
	for _, c := range channels {
		if c.Tag.Keyed() {
			for _, k := range c.Keys {
				set[k.Frame] = struct{}{}
			}
		}
	}
	frames := make([]uint16, 0, len(set))
	for f := range set {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })
	return frames
}
