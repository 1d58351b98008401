// Package std_msgs holds hand-written, statically typed counterparts to the
// std_msgs .msg definitions in msgs/std_msgs — the code-generation-style
// half of Design Note 9(a): each schema becomes a distinct Go value type
// with its own Encode/Decode, rather than a schema.Dynamic value tree.
package std_msgs

import (
	"bytes"

	"rosgo/msgs"
	"rosgo/wire"
)

// StringMsg is the canonical "hello world" message: a single string field.
type StringMsg struct {
	Data string
}

func (m *StringMsg) MsgType() string { return "std_msgs/String" }
func (m *StringMsg) MD5Sum() string  { return msgs.MD5("std_msgs", "String") }

func (m *StringMsg) Encode(buf *bytes.Buffer) error {
	wire.WriteString(buf, m.Data)
	return nil
}

func (m *StringMsg) Decode(r *bytes.Reader) error {
	s, err := wire.ReadString(r)
	if err != nil {
		return err
	}
	m.Data = s
	return nil
}
