package geometry_msgs

import (
	"bytes"

	"rosgo/msgs"
)

type Pose struct {
	Position    Point
	Orientation Quaternion
}

func (m *Pose) MsgType() string { return "geometry_msgs/Pose" }
func (m *Pose) MD5Sum() string  { return msgs.MD5("geometry_msgs", "Pose") }

func (m *Pose) Encode(buf *bytes.Buffer) error {
	if err := m.Position.Encode(buf); err != nil {
		return err
	}
	return m.Orientation.Encode(buf)
}

func (m *Pose) Decode(r *bytes.Reader) error {
	if err := m.Position.Decode(r); err != nil {
		return err
	}
	return m.Orientation.Decode(r)
}
