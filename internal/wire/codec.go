// Package wire implements the big-endian, fixed-point binary encoding
// shared by every serializable entity and by the team order packets.
//
// Scalars are fixed width: u32, bool (as u32, 0/1), and double encoded as
// i32 = round(v*1000) in network byte order. This 1mm-precision fixed
// point trades precision for platform-independent reproducibility: every
// conformant client and server must derive the exact same bytes from the
// exact same float64 state.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ErrShort is returned when a buffer is smaller than the size required to
// decode the requested value; framing-layer code drops the connection on
// this error rather than attempting a partial decode.
type ErrShort struct {
	Need, Got int
}

func (e *ErrShort) Error() string {
	return fmt.Sprintf("wire: short buffer: need %d bytes, got %d", e.Need, e.Got)
}

// SizeU32 is the wire size of a u32 or bool field.
const SizeU32 = 4

// SizeDouble is the wire size of a fixed-point double field. Note this is
// 4 bytes, not 8: the fixed-point encoding trades precision for a
// compact, reproducible representation.
const SizeDouble = 4

// PutU32 writes v big-endian into buf[0:4]. Panics if buf is too short;
// callers must size buffers with serial-size helpers first.
func PutU32(buf []byte, v uint32) {
	binary.BigEndian.PutUint32(buf, v)
}

// U32 reads a big-endian u32 from buf.
func U32(buf []byte) (uint32, error) {
	if len(buf) < SizeU32 {
		return 0, &ErrShort{Need: SizeU32, Got: len(buf)}
	}
	return binary.BigEndian.Uint32(buf), nil
}

// PutBool writes b as a u32 (0 or 1).
func PutBool(buf []byte, b bool) {
	var v uint32
	if b {
		v = 1
	}
	PutU32(buf, v)
}

// Bool reads a u32-encoded bool.
func Bool(buf []byte) (bool, error) {
	v, err := U32(buf)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// PutDouble writes v as a round-half-to-even fixed-point i32 (v*1000).
// Round-half-to-even is required (not round-half-away-from-zero) so every
// implementation derives the identical bit pattern for values that land
// exactly on a half-unit boundary.
func PutDouble(buf []byte, v float64) {
	scaled := v * 1000.0
	rounded := math.RoundToEven(scaled)
	PutU32(buf, uint32(int32(rounded)))
}

// Double reads a fixed-point double.
func Double(buf []byte) (float64, error) {
	v, err := U32(buf)
	if err != nil {
		return 0, err
	}
	return float64(int32(v)) / 1000.0, nil
}

// PutFixedString copies s into buf, truncating if s is longer than
// len(buf) and NUL-padding if shorter. Names are always fixed-width
// on the wire (16 bytes for entity/ship names, 33 for team names, 512
// for team messages) regardless of logical string length.
func PutFixedString(buf []byte, s string) {
	for i := range buf {
		buf[i] = 0
	}
	n := copy(buf, s)
	_ = n
}

// FixedString reads a NUL-padded fixed-width string, truncating at the
// first NUL byte.
func FixedString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// Sizes of the fixed-width byte arrays defined by the protocol.
const (
	MaxNameLen    = 16
	MaxTeamName   = 33
	MaxTeamText   = 512
	AnnouncerSize = 256
)

// Codec describes a serializable value: symmetric pack/unpack that report
// the number of bytes produced/consumed, and a serial size used to
// pre-size buffers and validate shortness. No type in this module
// implements it; internal/serialize packs and unpacks with free functions.
type Codec interface {
	SerialSize() int
	Pack(buf []byte) (int, error)
	Unpack(buf []byte) (int, error)
}

// PackDouble is a convenience used by entity Pack implementations.
func PackDouble(buf []byte, off int, v float64) int {
	PutDouble(buf[off:off+SizeDouble], v)
	return off + SizeDouble
}

// UnpackDouble is a convenience used by entity Unpack implementations.
func UnpackDouble(buf []byte, off int, dst *float64) (int, error) {
	if len(buf) < off+SizeDouble {
		return off, &ErrShort{Need: off + SizeDouble, Got: len(buf)}
	}
	v, err := Double(buf[off : off+SizeDouble])
	if err != nil {
		return off, err
	}
	*dst = v
	return off + SizeDouble, nil
}

// PackU32 is a convenience used by entity Pack implementations.
func PackU32(buf []byte, off int, v uint32) int {
	PutU32(buf[off:off+SizeU32], v)
	return off + SizeU32
}

// UnpackU32 is a convenience used by entity Unpack implementations.
func UnpackU32(buf []byte, off int, dst *uint32) (int, error) {
	if len(buf) < off+SizeU32 {
		return off, &ErrShort{Need: off + SizeU32, Got: len(buf)}
	}
	v, err := U32(buf[off : off+SizeU32])
	if err != nil {
		return off, err
	}
	*dst = v
	return off + SizeU32, nil
}

// PackBool is a convenience used by entity Pack implementations.
func PackBool(buf []byte, off int, v bool) int {
	PutBool(buf[off:off+SizeU32], v)
	return off + SizeU32
}

// UnpackBool is a convenience used by entity Unpack implementations.
func UnpackBool(buf []byte, off int, dst *bool) (int, error) {
	if len(buf) < off+SizeU32 {
		return off, &ErrShort{Need: off + SizeU32, Got: len(buf)}
	}
	v, err := Bool(buf[off : off+SizeU32])
	if err != nil {
		return off, err
	}
	*dst = v
	return off + SizeU32, nil
}

// PackBytes copies a fixed-width, NUL-padded byte field into buf at off.
func PackBytes(buf []byte, off, width int, s string) int {
	PutFixedString(buf[off:off+width], s)
	return off + width
}

// UnpackBytes reads a fixed-width, NUL-padded byte field from buf at off.
func UnpackBytes(buf []byte, off, width int, dst *string) (int, error) {
	if len(buf) < off+width {
		return off, &ErrShort{Need: off + width, Got: len(buf)}
	}
	*dst = FixedString(buf[off : off+width])
	return off + width, nil
}
