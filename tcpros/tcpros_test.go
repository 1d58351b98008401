package tcpros

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := SubscriberHeader("/listener", "/chatter", "std_msgs/String", "992ce8a1687cec8c8bd883ec73ca41d1", true)
	if err := WriteHeader(&buf, in); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	out, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	for k, v := range in {
		if out[k] != v {
			t.Errorf("field %s: got %q want %q", k, out[k], v)
		}
	}
}

func TestMD5NegotiationExactMatch(t *testing.T) {
	if err := CheckMD5("abc", "abc"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
}

func TestMD5NegotiationWildcard(t *testing.T) {
	if err := CheckMD5(Wildcard, "abc"); err != nil {
		t.Errorf("expected wildcard to match, got %v", err)
	}
}

func TestMD5NegotiationMismatch(t *testing.T) {
	err := CheckMD5("abc", "def")
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if _, ok := err.(*HeaderMismatchError); !ok {
		t.Errorf("expected HeaderMismatchError, got %T", err)
	}
}

func TestMessageFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q", got)
	}
}

func TestServiceResponseFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteServiceResponse(&buf, true, []byte("sum=60")); err != nil {
		t.Fatal(err)
	}
	ok, body, err := ReadServiceResponse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(body) != "sum=60" {
		t.Errorf("ok=%v body=%q", ok, body)
	}

	buf.Reset()
	if err := WriteServiceResponse(&buf, false, []byte("boom")); err != nil {
		t.Fatal(err)
	}
	ok, body, err = ReadServiceResponse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if ok || string(body) != "boom" {
		t.Errorf("ok=%v body=%q", ok, body)
	}
}

func TestHeaderRejectsMissingSeparator(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{8, 0, 0, 0})
	buf.WriteString("nosepval")
	_, err := ReadHeader(&buf)
	if err == nil {
		t.Fatal("expected malformed header error")
	}
}
