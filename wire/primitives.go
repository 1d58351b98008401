// Package wire implements the length-prefixed little-endian binary codec
// (§4.3): primitive encode/decode helpers, a typed Message interface for
// code-generation-style static schemas, and a Dynamic value for
// schema-as-data introspection tooling. encoding/binary handles every
// multi-byte integer; buffers are preallocated by summing field lengths up
// front rather than growing incrementally.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"
)

// ErrMalformed is returned when decoding finds a truncated buffer, an
// over-long read, or a length field overrunning the remaining input (§4.3,
// §7 TransportError.Malformed).
var ErrMalformed = errors.New("wire: malformed encoding")

func WriteBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func ReadBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, ErrMalformed
	}
	return b != 0, nil
}

func WriteU8(buf *bytes.Buffer, v uint8)  { buf.WriteByte(v) }
func WriteI8(buf *bytes.Buffer, v int8)   { buf.WriteByte(byte(v)) }

func ReadU8(r *bytes.Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, ErrMalformed
	}
	return b, nil
}

func ReadI8(r *bytes.Reader) (int8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, ErrMalformed
	}
	return int8(b), nil
}

func WriteU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func ReadU16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrMalformed
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func WriteI16(buf *bytes.Buffer, v int16) { WriteU16(buf, uint16(v)) }
func ReadI16(r *bytes.Reader) (int16, error) {
	v, err := ReadU16(r)
	return int16(v), err
}

func WriteU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func ReadU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrMalformed
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func WriteI32(buf *bytes.Buffer, v int32) { WriteU32(buf, uint32(v)) }
func ReadI32(r *bytes.Reader) (int32, error) {
	v, err := ReadU32(r)
	return int32(v), err
}

func WriteF32(buf *bytes.Buffer, v float32) {
	WriteU32(buf, math.Float32bits(v))
}

func ReadF32(r *bytes.Reader) (float32, error) {
	v, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func WriteU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func ReadU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrMalformed
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func WriteI64(buf *bytes.Buffer, v int64) { WriteU64(buf, uint64(v)) }
func ReadI64(r *bytes.Reader) (int64, error) {
	v, err := ReadU64(r)
	return int64(v), err
}

func WriteF64(buf *bytes.Buffer, v float64) {
	WriteU64(buf, math.Float64bits(v))
}

func ReadF64(r *bytes.Reader) (float64, error) {
	v, err := ReadU64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// WriteString writes a u32 length prefix followed by the UTF-8 bytes (§4.3).
func WriteString(buf *bytes.Buffer, s string) {
	WriteU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// ReadString reads a u32-length-prefixed UTF-8 string, bounded by the
// reader's remaining length to reject an over-long declared size.
func ReadString(r *bytes.Reader) (string, error) {
	n, err := ReadU32(r)
	if err != nil {
		return "", err
	}
	if int64(n) > int64(r.Len()) {
		return "", ErrMalformed
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", ErrMalformed
	}
	return string(b), nil
}

// Time/Duration: u32 secs then u32 nsecs, little-endian (§4.3).
func WriteTime(buf *bytes.Buffer, t time.Time) {
	WriteU32(buf, uint32(t.Unix()))
	WriteU32(buf, uint32(t.Nanosecond()))
}

func ReadTime(r *bytes.Reader) (time.Time, error) {
	secs, err := ReadU32(r)
	if err != nil {
		return time.Time{}, err
	}
	nsecs, err := ReadU32(r)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), int64(nsecs)).UTC(), nil
}

func WriteDuration(buf *bytes.Buffer, d time.Duration) {
	secs := uint32(d / time.Second)
	nsecs := uint32(d % time.Second)
	WriteU32(buf, secs)
	WriteU32(buf, nsecs)
}

func ReadDuration(r *bytes.Reader) (time.Duration, error) {
	secs, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	nsecs, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs)*time.Second + time.Duration(nsecs), nil
}
