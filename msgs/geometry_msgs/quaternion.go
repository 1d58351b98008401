package geometry_msgs

import (
	"bytes"

	"rosgo/msgs"
	"rosgo/wire"
)

type Quaternion struct {
	X, Y, Z, W float64
}

func (m *Quaternion) MsgType() string { return "geometry_msgs/Quaternion" }
func (m *Quaternion) MD5Sum() string  { return msgs.MD5("geometry_msgs", "Quaternion") }

func (m *Quaternion) Encode(buf *bytes.Buffer) error {
	wire.WriteF64(buf, m.X)
	wire.WriteF64(buf, m.Y)
	wire.WriteF64(buf, m.Z)
	wire.WriteF64(buf, m.W)
	return nil
}

func (m *Quaternion) Decode(r *bytes.Reader) error {
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
	if m.W, err = wire.ReadF64(r); err != nil {
		return err
	}
	return nil
}
