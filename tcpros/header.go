// Package tcpros implements the TCPROS connection header and the
// connection-oriented per-peer framing built on top of it (§4.5).
//
// Every frame is length-prefixed and decoded with io.ReadFull so a partial
// read never yields a corrupt decode; the connection header itself is a
// self-describing sequence of "key=value" fields rather than a fixed binary
// layout.
package tcpros

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"
)

// maxHeaderLen bounds a declared header length to reject a corrupt or
// hostile value before allocating.
const maxHeaderLen = 1 << 20

// WriteHeader writes the connection header: a u32 total length followed by
// a sequence of u32 field_length || "key=value" entries (§4.5). Fields are
// written in sorted key order for a deterministic wire encoding.
func WriteHeader(w io.Writer, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var body []byte
	for _, k := range keys {
		entry := k + "=" + fields[k]
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(entry)))
		body = append(body, lenBuf[:]...)
		body = append(body, entry...)
	}

	var totalBuf [4]byte
	binary.LittleEndian.PutUint32(totalBuf[:], uint32(len(body)))
	if _, err := w.Write(totalBuf[:]); err != nil {
		return &WriteFailedError{Reason: err.Error()}
	}
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return &WriteFailedError{Reason: err.Error()}
	}
	return nil
}

// ReadHeader reads a connection header written by WriteHeader.
func ReadHeader(r io.Reader) (map[string]string, error) {
	var totalBuf [4]byte
	if _, err := io.ReadFull(r, totalBuf[:]); err != nil {
		return nil, classifyReadErr(err)
	}
	total := binary.LittleEndian.Uint32(totalBuf[:])
	if total > maxHeaderLen {
		return nil, &MalformedError{Reason: fmt.Sprintf("declared header length %d exceeds limit", total)}
	}

	body := make([]byte, total)
	if total > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, classifyReadErr(err)
		}
	}

	fields := make(map[string]string)
	offset := 0
	for offset < len(body) {
		if offset+4 > len(body) {
			return nil, &MalformedError{Reason: "truncated field length"}
		}
		fieldLen := binary.LittleEndian.Uint32(body[offset : offset+4])
		offset += 4
		if offset+int(fieldLen) > len(body) {
			return nil, &MalformedError{Reason: "field length overruns header body"}
		}
		entry := string(body[offset : offset+int(fieldLen)])
		offset += int(fieldLen)

		idx := strings.IndexByte(entry, '=')
		if idx < 0 {
			return nil, &MalformedError{Reason: fmt.Sprintf("header field missing '=': %q", entry)}
		}
		fields[entry[:idx]] = entry[idx+1:]
	}
	return fields, nil
}

func classifyReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &PeerClosedError{}
	}
	return &MalformedError{Reason: err.Error()}
}
