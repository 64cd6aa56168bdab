package mot

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownBoneType  = errors.New("bone type outside of taxonomy")
	ErrChannelUnderflow = errors.New("not enough channels left for bone")
	ErrTooManyChannels  = errors.New("channel count does not fit into header")
	ErrFrameOverflow    = errors.New("frame index does not fit into header")
)

// DecodeError reports malformed record: field that cannot be read and where.
// Need == 0 means Offset points past record of Have bytes.
type DecodeError struct {
	Field  string
	Offset int
	Need   int
	Have   int
}

func (e *DecodeError) Error() string {
	if e.Need == 0 {
		return fmt.Sprintf("malformed motion: %s at 0x%x is beyond record end (%d bytes)", e.Field, e.Offset, e.Have)
	}
	return fmt.Sprintf("malformed motion: cannot read %s at 0x%x: need %d bytes, have %d", e.Field, e.Offset, e.Need, e.Have)
}

// EncodeError ties encoding failure to bone or channel
type EncodeError struct {
	Bone    int // -1 when not bound to bone
	Channel int
	Err     error
}

func (e *EncodeError) Error() string {
	if e.Bone >= 0 {
		return fmt.Sprintf("encode bone %d channel %d: %v", e.Bone, e.Channel, e.Err)
	}
	return fmt.Sprintf("encode channel %d: %v", e.Channel, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func (e *EncodeError) Cause() error { return e.Err }
