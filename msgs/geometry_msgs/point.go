// Package geometry_msgs holds hand-written, statically typed counterparts
// to the geometry_msgs .msg definitions in msgs/geometry_msgs.
package geometry_msgs

import (
	"bytes"

	"rosgo/msgs"
	"rosgo/wire"
)

type Point struct {
	X, Y, Z float64
}

func (m *Point) MsgType() string { return "geometry_msgs/Point" }
func (m *Point) MD5Sum() string  { return msgs.MD5("geometry_msgs", "Point") }

func (m *Point) Encode(buf *bytes.Buffer) error {
	wire.WriteF64(buf, m.X)
	wire.WriteF64(buf, m.Y)
	wire.WriteF64(buf, m.Z)
	return nil
}

func (m *Point) Decode(r *bytes.Reader) error {
	var err error
	if m.X, err = wire.ReadF64(r); err != nil {
		return err
	}
	if m.Y, err = wire.ReadF64(r); err != nil {
		return err
	}
	if m.Z, err = wire.ReadF64(r); err != nil {
		return err
	}
	return nil
}
