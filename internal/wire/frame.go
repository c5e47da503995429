package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Control strings and markers exchanged outside the length-prefixed
// world-snapshot frames (spec §6.1). These are exact byte sequences, not
// NUL-terminated C strings.
const (
	ConnAck      = "Conn MM4 Serv"
	TeamConnect  = "Team  Connected"
	ObserverConn = "Observer Conned"
	ObserverAck  = "ObReady!"
	PauseCmd     = "PAUSE"
	ResumeCmd    = "RESUME"

	// ObserverAckByte is sent server->observer to confirm the handshake.
	ObserverAckByte = 'X'

	// EntityMarker precedes every Thing record in a world snapshot as a
	// structural sanity check; a mismatch on unpack signals corruption.
	EntityMarker uint32 = 666
)

// TeamConnect and ObserverConn share a length by design (15 bytes) so the
// server can read a fixed number of bytes before branching on content.
const HandshakeLen = 15

func init() {
	if len(TeamConnect) != HandshakeLen || len(ObserverConn) != HandshakeLen {
		panic("wire: handshake control strings must share a fixed length")
	}
}

// MaxFrameLen bounds how large a length-prefixed frame may declare itself,
// guarding against a corrupt or hostile length header (spec §7, Format
// errors): MAX_THINGS * 256 is a generous per-entity upper bound.
const MaxFrameLen = 512 * 256

// WriteFrame writes a u32 big-endian length prefix followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads a u32 length-prefixed payload. An implausible length
// header (exceeding MaxFrameLen) is a Format error; the caller should
// drop the connection rather than attempt a partial decode.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameLen {
		return nil, fmt.Errorf("wire: implausible frame length %d (max %d)", n, MaxFrameLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
