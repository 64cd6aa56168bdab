package mot

import (
	"github.com/pkg/errors"
)

const (
	HEADER_SIZE = 0x20

	COUNT_MASK   = 0x3fff
	MARKER_SHIFT = 14

	BONES_SENTINEL = 0
)

// Header is preamble of record plus fields it points to
type Header struct {
	CountOffset   uint32 `json:"count_offset"`
	TagsOffset    uint32 `json:"tags_offset"`
	PayloadOffset uint32 `json:"payload_offset"`
	BonesOffset   uint32 `json:"bones_offset"`

	Marker       uint16 `json:"marker"` // two high bits of count field, not interpreted
	ChannelCount int    `json:"channel_count"`
	FrameCount   uint16 `json:"frame_count"`
}

func ReadHeader(data []byte) (*Header, error) {
	c := newCursor(data, 0)
	h := &Header{}
	var err error
	if h.CountOffset, err = c.LU32("count offset"); err != nil {
		return nil, err
	}
	if h.TagsOffset, err = c.LU32("tags offset"); err != nil {
		return nil, err
	}
	if h.PayloadOffset, err = c.LU32("payload offset"); err != nil {
		return nil, err
	}
	if h.BonesOffset, err = c.LU32("bones offset"); err != nil {
		return nil, err
	}

	c = newCursor(data, int(h.CountOffset))
	rawCount, err := c.LU16("channel count")
	if err != nil {
		return nil, err
	}
	h.ChannelCount = int(rawCount & COUNT_MASK)
	h.Marker = rawCount >> MARKER_SHIFT
	if h.FrameCount, err = c.LU16("frame count"); err != nil {
		return nil, err
	}
	return h, nil
}

// Decode parses little-endian motion record.
// On error nothing is returned besides error, which is usually *DecodeError.
func Decode(data []byte) (*Motion, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	if err := checkSection(data, "payload section", h.PayloadOffset); err != nil {
		return nil, err
	}
	if err := checkSection(data, "bones section", h.BonesOffset); err != nil {
		return nil, err
	}

	c := newCursor(data, int(h.TagsOffset))
	rawTags, err := c.read("tags", tagBytesCount(h.ChannelCount))
	if err != nil {
		return nil, err
	}
	tags, err := UnpackTags(rawTags, h.ChannelCount)
	if err != nil {
		return nil, err
	}

	bones, err := decodeBones(newCursor(data, int(h.BonesOffset)))
	if err != nil {
		return nil, err
	}

	c = newCursor(data, int(h.PayloadOffset))
	channels := make([]Channel, len(tags))
	for i, tag := range tags {
		if channels[i], err = decodeChannel(c, tag); err != nil {
			return nil, err
		}
	}

	return &Motion{Bones: bones, Channels: channels}, nil
}

// section may start right at record end only when it is empty
func checkSection(data []byte, field string, offset uint32) error {
	if uint64(offset) > uint64(len(data)) {
		return &DecodeError{Field: field, Offset: int(offset), Need: 0, Have: len(data)}
	}
	return nil
}

// First zero is a bone index wherever it stands, second zero ends list.
// Record end also ends list: without bone 0 writer puts no terminator.
func decodeBones(c *cursor) ([]uint16, error) {
	bones := make([]uint16, 0, 64)
	seenZero := false
	for c.Remaining() != 0 {
		id, err := c.LU16("bone index")
		if err != nil {
			return nil, err
		}
		if id == BONES_SENTINEL {
			if seenZero {
				break
			}
			seenZero = true
		}
		bones = append(bones, id)
	}
	return bones, nil
}

func decodeChannel(c *cursor, tag Tag) (Channel, error) {
	switch tag {
	case TagEmpty:
		return Empty(), nil
	case TagConstant:
		v, err := c.LF("pose value")
		return Constant(v), err
	case TagLinear, TagSmooth:
		count, err := c.LU16("key count")
		if err != nil {
			return Channel{}, err
		}
		keys := make([]Keyframe, count)
		for i := range keys {
			if keys[i].Frame, err = c.LU16("key frame"); err != nil {
				return Channel{}, err
			}
		}
		if err := c.Align("key values alignment", 4); err != nil {
			return Channel{}, err
		}
		for i := range keys {
			if keys[i].Value, err = c.LF("key value"); err != nil {
				return Channel{}, err
			}
			if tag == TagSmooth {
				if keys[i].Tangent, err = c.LF("key tangent"); err != nil {
					return Channel{}, err
				}
			}
		}
		return Channel{Tag: tag, Keys: keys}, nil
	default:
		return Channel{}, errors.Wrapf(ErrInvalidTag, "%v at 0x%x", tag, c.Pos())
	}
}
