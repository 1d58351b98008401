// Package rosgo_tutorials holds the built-in AddTwoInts-style demo service
// (S5/S6): TwoIntsReq{A, B int64} -> TwoIntsRes{Sum int64}.
package rosgo_tutorials

import (
	"bytes"

	"rosgo/msgs"
	"rosgo/wire"
)

type TwoIntsReq struct {
	A, B int64
}

func (m *TwoIntsReq) MsgType() string { return "rosgo_tutorials/TwoIntsReq" }
func (m *TwoIntsReq) MD5Sum() string  { return msgs.TwoIntsServiceMD5() }

func (m *TwoIntsReq) Encode(buf *bytes.Buffer) error {
	wire.WriteI64(buf, m.A)
	wire.WriteI64(buf, m.B)
	return nil
}

func (m *TwoIntsReq) Decode(r *bytes.Reader) error {
	var err error
	if m.A, err = wire.ReadI64(r); err != nil {
		return err
	}
	if m.B, err = wire.ReadI64(r); err != nil {
		return err
	}
	return nil
}

type TwoIntsRes struct {
	Sum int64
}

func (m *TwoIntsRes) MsgType() string { return "rosgo_tutorials/TwoIntsRes" }
func (m *TwoIntsRes) MD5Sum() string  { return msgs.TwoIntsServiceMD5() }

func (m *TwoIntsRes) Encode(buf *bytes.Buffer) error {
	wire.WriteI64(buf, m.Sum)
	return nil
}

func (m *TwoIntsRes) Decode(r *bytes.Reader) error {
	sum, err := wire.ReadI64(r)
	if err != nil {
		return err
	}
	m.Sum = sum
	return nil
}
