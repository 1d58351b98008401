package std_msgs

import (
	"bytes"
	"time"

	"rosgo/msgs"
	"rosgo/wire"
)

// Header carries sequence/timestamp/frame metadata, aliased from the
// bareword "Header" in any schema (§3).
type Header struct {
	Seq     uint32
	Stamp   time.Time
	FrameID string
}

func (m *Header) MsgType() string { return "std_msgs/Header" }
func (m *Header) MD5Sum() string  { return msgs.MD5("std_msgs", "Header") }

func (m *Header) Encode(buf *bytes.Buffer) error {
	wire.WriteU32(buf, m.Seq)
	wire.WriteTime(buf, m.Stamp)
	wire.WriteString(buf, m.FrameID)
	return nil
}

func (m *Header) Decode(r *bytes.Reader) error {
	seq, err := wire.ReadU32(r)
	if err != nil {
		return err
	}
	stamp, err := wire.ReadTime(r)
	if err != nil {
		return err
	}
	frameID, err := wire.ReadString(r)
	if err != nil {
		return err
	}
	m.Seq, m.Stamp, m.FrameID = seq, stamp, frameID
	return nil
}
