package wire

import "bytes"

// Message is the interface a statically generated (or hand-written,
// Design Note 9(a)) schema value implements: it knows its own wire type
// name and md5sum, used to populate TCPROS connection headers (§4.5), and
// encodes/decodes itself through the primitive helpers in this package.
type Message interface {
	Encode(buf *bytes.Buffer) error
	Decode(r *bytes.Reader) error
	MsgType() string
	MD5Sum() string
}

// Decode allocates a new value via factory and decodes payload into it.
// factory is typically a zero-arg constructor like func() wire.Message {
// return new(std_msgs.StringMsg) }.
func Decode(factory func() Message, payload []byte) (Message, error) {
	m := factory()
	if err := m.Decode(bytes.NewReader(payload)); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes m into a fresh byte slice.
func Encode(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
