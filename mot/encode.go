package mot

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

const (
	COUNT_FIELD_OFFSET   = 0x20
	TAGS_FIELD_OFFSET    = 0x24
	PAYLOAD_OFFSET_FIELD = 0x08
	BONES_OFFSET_FIELD   = 0x0c

	// added to channel count instead of OR-ing marker bits, as game files do
	COUNT_MARKER_ADDEND = 0x3fff
)

// record is everything encoder needs, shared by flat and qualified forms
type record struct {
	channels []Channel
	owners   []int // bone id of every channel, nil for flat motion
	bones    []uint16

	tags   []byte
	frames uint16
	// bone 0 is listed, so a zero terminator can follow bones
	terminated bool
}

type recordOffsets struct {
	payload int
	bones   int
}

func (r *record) owner(channel int) int {
	if r.owners == nil {
		return -1
	}
	return r.owners[channel]
}

// prepare validates record so writing can only fail on sink errors
func (r *record) prepare() error {
	if len(r.channels)+1 >= COUNT_MASK {
		return errors.Wrapf(ErrTooManyChannels, "%d channels (+1 terminator)", len(r.channels))
	}
	for i := range r.channels {
		c := &r.channels[i]
		if err := c.Validate(); err != nil {
			return &EncodeError{Bone: r.owner(i), Channel: i, Err: err}
		}
		if c.MaxFrame() == math.MaxUint16 {
			return &EncodeError{Bone: r.owner(i), Channel: i, Err: errors.Wrapf(ErrFrameOverflow, "frame %d", c.MaxFrame())}
		}
	}
	r.terminated = false
	for i, id := range r.bones {
		if id != BONES_SENTINEL {
			continue
		}
		if r.terminated {
			return errors.Errorf("bone index 0 listed twice at position %d: second zero ends bone list", i)
		}
		r.terminated = true
	}

	// trailing terminator channel is always empty
	r.tags = PackTags(append(channelTags(r.channels), TagEmpty))
	r.frames = uint16(framesCount(r.channels))
	return nil
}

type recordWriter struct {
	w   io.Writer
	pos int // relative to record start
	err error
}

func (rw *recordWriter) write(b []byte) {
	if rw.err != nil {
		return
	}
	n, err := rw.w.Write(b)
	rw.pos += n
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	rw.err = err
}

func (rw *recordWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	rw.write(b[:])
}

func (rw *recordWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	rw.write(b[:])
}

func (rw *recordWriter) f32(v float32) {
	rw.u32(math.Float32bits(v))
}

func (rw *recordWriter) zeros(n int) {
	if n > 0 {
		rw.write(make([]byte, n))
	}
}

func (rw *recordWriter) channel(c *Channel) {
	switch c.Tag {
	case TagConstant:
		rw.f32(c.Value)
	case TagLinear, TagSmooth:
		rw.u16(uint16(len(c.Keys)))
		for _, k := range c.Keys {
			rw.u16(k.Frame)
		}
		// positions are always even here, so pos%4 lands values on 4 byte boundary
		rw.zeros(rw.pos % 4)
		for _, k := range c.Keys {
			rw.f32(k.Value)
			if c.Tag == TagSmooth {
				rw.f32(k.Tangent)
			}
		}
	}
}

// body writes whole record with zeroed payload/bones offsets.
// Returned offsets must be patched into preamble afterwards.
func (rw *recordWriter) body(r *record) recordOffsets {
	var offs recordOffsets

	rw.u32(COUNT_FIELD_OFFSET)
	rw.u32(TAGS_FIELD_OFFSET)
	rw.u32(0) // payload offset placeholder
	rw.u32(0) // bones offset placeholder
	rw.zeros(HEADER_SIZE - rw.pos)

	rw.u16(uint16(len(r.channels) + 1 + COUNT_MARKER_ADDEND))
	rw.u16(r.frames)
	rw.write(r.tags)
	rw.zeros(rw.pos % 6)

	offs.payload = rw.pos
	for i := range r.channels {
		rw.channel(&r.channels[i])
	}

	offs.bones = rw.pos
	for _, id := range r.bones {
		rw.u16(id)
	}
	// Without bone 0 any padding zero would read back as bone 0,
	// so such record ends right after last bone.
	if r.terminated {
		rw.u16(BONES_SENTINEL)
		rw.zeros(alignPad(rw.pos, 4))
	}
	return offs
}

// marshalRecord renders record into memory and patches offsets in place
func marshalRecord(r *record) ([]byte, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	rw := &recordWriter{w: &buf}
	offs := rw.body(r)
	if rw.err != nil {
		return nil, errors.Wrapf(rw.err, "Failed to write record")
	}

	b := buf.Bytes()
	binary.LittleEndian.PutUint32(b[PAYLOAD_OFFSET_FIELD:], uint32(offs.payload))
	binary.LittleEndian.PutUint32(b[BONES_OFFSET_FIELD:], uint32(offs.bones))
	return b, nil
}

// encodeRecord streams record into seekable sink, then seeks back to
// overwrite offsets placeholders. Sink is left positioned at record end.
func encodeRecord(ws io.WriteSeeker, r *record) (int64, error) {
	if err := r.prepare(); err != nil {
		return 0, err
	}

	begin, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to get record start")
	}

	rw := &recordWriter{w: ws}
	offs := rw.body(r)
	if rw.err != nil {
		return int64(rw.pos), errors.Wrapf(rw.err, "Failed to write record")
	}
	end := begin + int64(rw.pos)

	if _, err := ws.Seek(begin+PAYLOAD_OFFSET_FIELD, io.SeekStart); err != nil {
		return int64(rw.pos), errors.Wrapf(err, "Failed to seek to offsets")
	}
	patch := &recordWriter{w: ws}
	patch.u32(uint32(offs.payload))
	patch.u32(uint32(offs.bones))
	if patch.err != nil {
		return int64(rw.pos), errors.Wrapf(patch.err, "Failed to patch offsets")
	}
	if _, err := ws.Seek(end, io.SeekStart); err != nil {
		return int64(rw.pos), errors.Wrapf(err, "Failed to seek to record end")
	}
	return end - begin, nil
}

// Marshal encodes flat motion. Channels are written as is,
// plus trailing empty terminator channel.
func (m *Motion) Marshal() ([]byte, error) {
	return marshalRecord(&record{channels: m.Channels, bones: m.Bones})
}

// EncodeTo is same as Marshal but streams into seekable sink
func (m *Motion) EncodeTo(ws io.WriteSeeker) (int64, error) {
	return encodeRecord(ws, &record{channels: m.Channels, bones: m.Bones})
}
