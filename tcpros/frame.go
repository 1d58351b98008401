package tcpros

import (
	"io"

	"rosgo/wire"
)

// maxMessageLen bounds a single topic/service message frame.
const maxMessageLen = 64 << 20

// WriteMessage writes one framed message body (§4.3/§4.5): used for both
// the unbounded topic message stream and a service's single request frame.
func WriteMessage(w io.Writer, body []byte) error {
	if err := wire.EncodeFrame(w, body); err != nil {
		return &WriteFailedError{Reason: err.Error()}
	}
	return nil
}

// ReadMessage reads one framed message body.
func ReadMessage(r io.Reader) ([]byte, error) {
	body, err := wire.DecodeFrame(r, maxMessageLen)
	if err != nil {
		return nil, classifyReadErr(err)
	}
	return body, nil
}

// Service response status byte, preceding the framed body (§4.5): ok/fail
// are not part of the framed body, they are a single byte ahead of it.
const (
	StatusOK   byte = 1
	StatusFail byte = 0
)

// WriteServiceResponse writes the single status byte then the framed body.
func WriteServiceResponse(w io.Writer, ok bool, body []byte) error {
	status := StatusFail
	if ok {
		status = StatusOK
	}
	if _, err := w.Write([]byte{status}); err != nil {
		return &WriteFailedError{Reason: err.Error()}
	}
	return WriteMessage(w, body)
}

// ReadServiceResponse reads the status byte then the framed body.
func ReadServiceResponse(r io.Reader) (ok bool, body []byte, err error) {
	var statusBuf [1]byte
	if _, err := io.ReadFull(r, statusBuf[:]); err != nil {
		return false, nil, classifyReadErr(err)
	}
	body, err = ReadMessage(r)
	if err != nil {
		return false, nil, err
	}
	return statusBuf[0] == StatusOK, body, nil
}
