package wire

import (
	"bytes"
	"testing"
	"time"

	"rosgo/schema"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	WriteBool(&buf, true)
	WriteI8(&buf, -12)
	WriteU16(&buf, 4242)
	WriteI32(&buf, -123456)
	WriteU64(&buf, 1<<40)
	WriteF32(&buf, 3.5)
	WriteF64(&buf, 2.71828)
	WriteString(&buf, "hello, ros")
	now := time.Unix(1700000000, 123000000).UTC()
	WriteTime(&buf, now)
	WriteDuration(&buf, 90*time.Second+500*time.Millisecond)

	r := bytes.NewReader(buf.Bytes())
	if v, err := ReadBool(r); err != nil || v != true {
		t.Fatalf("bool: %v %v", v, err)
	}
	if v, err := ReadI8(r); err != nil || v != -12 {
		t.Fatalf("i8: %v %v", v, err)
	}
	if v, err := ReadU16(r); err != nil || v != 4242 {
		t.Fatalf("u16: %v %v", v, err)
	}
	if v, err := ReadI32(r); err != nil || v != -123456 {
		t.Fatalf("i32: %v %v", v, err)
	}
	if v, err := ReadU64(r); err != nil || v != 1<<40 {
		t.Fatalf("u64: %v %v", v, err)
	}
	if v, err := ReadF32(r); err != nil || v != 3.5 {
		t.Fatalf("f32: %v %v", v, err)
	}
	if v, err := ReadF64(r); err != nil || v != 2.71828 {
		t.Fatalf("f64: %v %v", v, err)
	}
	if v, err := ReadString(r); err != nil || v != "hello, ros" {
		t.Fatalf("string: %v %v", v, err)
	}
	if v, err := ReadTime(r); err != nil || !v.Equal(now) {
		t.Fatalf("time: %v %v", v, err)
	}
	if v, err := ReadDuration(r); err != nil || v != 90*time.Second+500*time.Millisecond {
		t.Fatalf("duration: %v %v", v, err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("a framed payload")
	if err := EncodeFrame(&buf, body); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeFrame(&buf, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("got %q, want %q", got, body)
	}
}

func TestFrameRejectsOverlongDeclaredLength(t *testing.T) {
	var buf bytes.Buffer
	EncodeFrame(&buf, make([]byte, 100))
	_, err := DecodeFrame(&buf, 10)
	if err != ErrMalformed {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestDynamicRoundTrip(t *testing.T) {
	point, err := schema.ParseMsg("geometry_msgs", "Point", "float64 x\nfloat64 y\nfloat64 z")
	if err != nil {
		t.Fatal(err)
	}
	pose, err := schema.ParseMsg("geometry_msgs", "Pose", "Point position\nfloat64[] samples\nuint8[2] flags")
	if err != nil {
		t.Fatal(err)
	}
	resolver := Resolver{
		point.Key(): point,
	}

	in := NewDynamic(pose)
	in.Values["position"] = &Dynamic{Def: point, Values: map[string]any{"x": 1.0, "y": 2.0, "z": 3.0}}
	in.Values["samples"] = []any{1.5, 2.5, 3.5}
	in.Values["flags"] = []any{uint8(9), uint8(10)}

	var buf bytes.Buffer
	if err := in.Encode(&buf, resolver); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, err := DecodeDynamic(bytes.NewReader(buf.Bytes()), pose, resolver)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	pos := out.Values["position"].(*Dynamic)
	if pos.Values["x"].(float64) != 1.0 || pos.Values["y"].(float64) != 2.0 || pos.Values["z"].(float64) != 3.0 {
		t.Errorf("unexpected nested struct: %+v", pos.Values)
	}
	samples := out.Values["samples"].([]any)
	if len(samples) != 3 || samples[1].(float64) != 2.5 {
		t.Errorf("unexpected vector: %+v", samples)
	}
	flags := out.Values["flags"].([]any)
	if len(flags) != 2 || flags[0].(uint8) != 9 {
		t.Errorf("unexpected array: %+v", flags)
	}
}

func TestDynamicSkipsConstants(t *testing.T) {
	m, err := schema.ParseMsg("test_msgs", "WithConst", "int32 FOO=42\nint32 value")
	if err != nil {
		t.Fatal(err)
	}
	d := NewDynamic(m)
	d.Values["value"] = int32(7)
	var buf bytes.Buffer
	if err := d.Encode(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4 {
		t.Errorf("expected only the non-constant int32 to be on the wire, got %d bytes", buf.Len())
	}
}
