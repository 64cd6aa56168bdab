package mot

import (
	"encoding/binary"
	"math"
)

// cursor walks record bytes. Every read is bounds checked and
// reports field name with absolute offset inside record.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte, pos int) *cursor {
	return &cursor{buf: buf, pos: pos}
}

func (c *cursor) Pos() int {
	return c.pos
}

func (c *cursor) Remaining() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.pos
}

func (c *cursor) read(field string, amount int) ([]byte, error) {
	if amount < 0 || c.pos < 0 || c.pos > len(c.buf) || len(c.buf)-c.pos < amount {
		return nil, &DecodeError{Field: field, Offset: c.pos, Need: amount, Have: c.Remaining()}
	}
	old := c.pos
	c.pos += amount
	return c.buf[old:c.pos], nil
}

func (c *cursor) LU16(field string) (uint16, error) {
	b, err := c.read(field, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) LU32(field string) (uint32, error) {
	b, err := c.read(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) LF(field string) (float32, error) {
	v, err := c.LU32(field)
	return math.Float32frombits(v), err
}

// Align skips to next multiple of n counted from record start
func (c *cursor) Align(field string, n int) error {
	if pad := alignPad(c.pos, n); pad != 0 {
		_, err := c.read(field, pad)
		return err
	}
	return nil
}

func alignPad(pos, n int) int {
	return (n - pos%n) % n
}
