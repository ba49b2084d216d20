package sandbox

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameBytes bounds a single frame so a misbehaving plugin can't make
// the host allocate unbounded memory from a corrupt length prefix.
const maxFrameBytes = 64 * 1024 * 1024

// writeFrame writes a big-endian uint32 length prefix followed by data.
func writeFrame(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed frame from r.
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", n, maxFrameBytes)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return buf, nil
}
