package wire

import (
	"encoding/binary"
	"io"
)

// EncodeFrame writes a length-prefixed frame: u32 length || body (§4.3).
func EncodeFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// DecodeFrame reads a length-prefixed frame. maxLen bounds the declared
// length to reject a corrupt or hostile over-long size before allocating.
func DecodeFrame(r io.Reader, maxLen uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxLen {
		return nil, ErrMalformed
	}
	body := make([]byte, n)
	if n == 0 {
		return body, nil
	}
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, ErrMalformed
	}
	return body, nil
}
