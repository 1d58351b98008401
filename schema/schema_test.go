package schema

import "testing"

// S1: hash of a trivial message.
func TestMD5TrivialMessage(t *testing.T) {
	m, err := ParseMsg("std_msgs", "String", "string data")
	if err != nil {
		t.Fatalf("ParseMsg: %v", err)
	}
	hash, err := m.MD5(nil)
	if err != nil {
		t.Fatalf("MD5: %v", err)
	}
	want := "992ce8a1687cec8c8bd883ec73ca41d1"
	if hash != want {
		t.Errorf("MD5(std_msgs/String) = %q, want %q", hash, want)
	}
}

// S2: hash with a resolved struct dependency.
func TestMD5WithDependency(t *testing.T) {
	pose, err := ParseMsg("geometry_msgs", "Pose", "Point position\nQuaternion orientation")
	if err != nil {
		t.Fatalf("ParseMsg: %v", err)
	}
	resolved := map[Key]string{
		{Package: "geometry_msgs", Name: "Point"}:      "4a842b65f413084dc2b10fb484ea7f17",
		{Package: "geometry_msgs", Name: "Quaternion"}: "a779879fadf0160734f906b8c19c7004",
	}
	hash, err := pose.MD5(resolved)
	if err != nil {
		t.Fatalf("MD5: %v", err)
	}
	want := "e45d45a5a1ce597b249e23fb30fc871f"
	if hash != want {
		t.Errorf("MD5(geometry_msgs/Pose) = %q, want %q", hash, want)
	}
}

// S3: a string constant whose value legally contains a '#'.
func TestConstStringPreservesHash(t *testing.T) {
	m, err := ParseMsg("test_msgs", "Consts", "string   myname  =  this is # data")
	if err != nil {
		t.Fatalf("ParseMsg: %v", err)
	}
	if len(m.Fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(m.Fields))
	}
	f := m.Fields[0]
	if f.Case != Const {
		t.Errorf("expected Const, got %v", f.Case)
	}
	if f.Name != "myname" {
		t.Errorf("expected name myname, got %q", f.Name)
	}
	if f.Literal != "this is # data" {
		t.Errorf("expected literal to retain '#', got %q", f.Literal)
	}
}

func TestMD5StableAcrossWhitespaceAndComments(t *testing.T) {
	a, err := ParseMsg("test_msgs", "Variants", "int32 x\nint32 y")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseMsg("test_msgs", "Variants", "int32    x   # the x coordinate\nint32 y")
	if err != nil {
		t.Fatal(err)
	}
	ha, err := a.MD5(nil)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := b.MD5(nil)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("hash changed due to whitespace/comment: %q != %q", ha, hb)
	}
}

func TestFieldShapes(t *testing.T) {
	src := "int32 a\nfloat32[] b\nuint8[4] c\nint32 d=42\n# just a comment\n\nstring e = hi # not a comment here\n"
	m, err := ParseMsg("test_msgs", "Shapes", src)
	if err != nil {
		t.Fatalf("ParseMsg: %v", err)
	}
	if len(m.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d: %+v", len(m.Fields), m.Fields)
	}
	if m.Fields[0].Case != Unit || m.Fields[1].Case != Vector || m.Fields[2].Case != Array {
		t.Errorf("unexpected cases: %+v", m.Fields[:3])
	}
	if m.Fields[2].ArrayLen != 4 {
		t.Errorf("expected array len 4, got %d", m.Fields[2].ArrayLen)
	}
	if m.Fields[3].Case != Const || m.Fields[3].Literal != "42" {
		t.Errorf("unexpected numeric const: %+v", m.Fields[3])
	}
	if m.Fields[4].Literal != "hi # not a comment here" {
		t.Errorf("string const should retain trailing '#' text, got %q", m.Fields[4].Literal)
	}
}

func TestMalformedField(t *testing.T) {
	_, err := ParseMsg("test_msgs", "Bad", "not a valid line!!")
	var malformed *MalformedFieldError
	if err == nil {
		t.Fatal("expected error")
	}
	if !asMalformed(err, &malformed) {
		t.Errorf("expected MalformedFieldError, got %T: %v", err, err)
	}
}

func asMalformed(err error, target **MalformedFieldError) bool {
	e, ok := err.(*MalformedFieldError)
	if ok {
		*target = e
	}
	return ok
}

func TestDependencyCycle(t *testing.T) {
	a, _ := ParseMsg("test_msgs", "A", "B b")
	b, _ := ParseMsg("test_msgs", "B", "A a")
	_, err := Resolve([]*Msg{a, b})
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if _, ok := err.(*DependencyCycleError); !ok {
		t.Errorf("expected DependencyCycleError, got %T: %v", err, err)
	}
}

func TestMissingDependency(t *testing.T) {
	a, _ := ParseMsg("test_msgs", "A", "test_msgs/Missing m")
	_, err := Resolve([]*Msg{a})
	if err == nil {
		t.Fatal("expected missing dependency error")
	}
	if _, ok := err.(*MissingDependencyError); !ok {
		t.Errorf("expected MissingDependencyError, got %T: %v", err, err)
	}
}

func TestHeaderBareword(t *testing.T) {
	m, err := ParseMsg("test_msgs", "WithHeader", "Header header\nstring data")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != (Key{Package: "std_msgs", Name: "Header"}) {
		t.Errorf("expected Header to resolve to std_msgs/Header dependency, got %+v", m.Dependencies)
	}
}

func TestByteCharSynonyms(t *testing.T) {
	m, err := ParseMsg("test_msgs", "Synonyms", "byte b\nchar c")
	if err != nil {
		t.Fatal(err)
	}
	if m.Fields[0].Datatype.Primitive != I8 {
		t.Errorf("byte should alias int8")
	}
	if m.Fields[1].Datatype.Primitive != U8 {
		t.Errorf("char should alias uint8")
	}
}

func TestSrvSplitAndMD5(t *testing.T) {
	src := "int64 a\nint64 b\n---\nint64 sum"
	srv, err := ParseSrv("rosgo_tutorials", "TwoInts", src)
	if err != nil {
		t.Fatal(err)
	}
	if srv.Request.Name != "TwoIntsReq" || srv.Response.Name != "TwoIntsRes" {
		t.Errorf("unexpected derived names: %s / %s", srv.Request.Name, srv.Response.Name)
	}
	if _, err := srv.MD5(nil); err != nil {
		t.Errorf("Srv.MD5: %v", err)
	}
}
