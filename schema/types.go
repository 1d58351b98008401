// Package schema implements the message/service definition compiler: parsing
// textual .msg/.srv schemas, computing their canonical MD5 content hash, and
// describing the portable field layout consumed by the wire codec.
package schema

import "fmt"

// Datatype identifies a field's type: one of the 13 wire primitives or a
// reference to another message struct, local to the same package or in a
// remote one.
type Datatype struct {
	Primitive Primitive
	Struct    string // set only when Primitive == StructRef
	Package   string // set only for a remote struct reference; empty means local
}

// Primitive enumerates the scalar wire types plus the struct-reference marker.
type Primitive int

const (
	Bool Primitive = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	String
	Time
	Duration
	StructRef
)

// CanonicalName is the name used in MD5 canonicalization (§3) for primitives.
func (p Primitive) CanonicalName() string {
	switch p {
	case Bool:
		return "bool"
	case I8:
		return "int8"
	case I16:
		return "int16"
	case I32:
		return "int32"
	case I64:
		return "int64"
	case U8:
		return "uint8"
	case U16:
		return "uint16"
	case U32:
		return "uint32"
	case U64:
		return "uint64"
	case F32:
		return "float32"
	case F64:
		return "float64"
	case String:
		return "string"
	case Time:
		return "time"
	case Duration:
		return "duration"
	default:
		return ""
	}
}

// IsLocalStruct reports whether d references a struct in the message's own package.
func (d Datatype) IsLocalStruct() bool {
	return d.Primitive == StructRef && d.Package == ""
}

// IsStruct reports whether d is any struct reference (local or remote).
func (d Datatype) IsStruct() bool {
	return d.Primitive == StructRef
}

func (d Datatype) String() string {
	if d.Primitive != StructRef {
		return d.Primitive.CanonicalName()
	}
	if d.Package == "" {
		return d.Struct
	}
	return d.Package + "/" + d.Struct
}

// Case distinguishes how a field's datatype repeats, or whether it is a constant.
type Case int

const (
	Unit Case = iota
	Vector
	Array
	Const
)

// Field is a single line of a parsed message schema.
type Field struct {
	Datatype Datatype
	Name     string
	Case     Case
	ArrayLen int    // meaningful only when Case == Array
	Literal  string // meaningful only when Case == Const: the raw literal text
}

// IsConstant reports whether the field is a Const field.
func (f Field) IsConstant() bool { return f.Case == Const }

// Key identifies a message or service by its fully-qualified (package, name) pair.
type Key struct {
	Package string
	Name    string
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Package, k.Name) }

// Msg is a parsed message definition: its fields, the struct references it
// depends on, and the raw source it was parsed from.
type Msg struct {
	Package      string
	Name         string
	Fields       []Field
	Source       string
	Dependencies []Key
}

// Key returns the message's (package, name) identity.
func (m *Msg) Key() Key { return Key{Package: m.Package, Name: m.Name} }

// Srv is a parsed service definition: request and response messages named
// "<Name>Req" and "<Name>Res", split on a line matching ^---$.
type Srv struct {
	Package  string
	Name     string
	Source   string
	Request  *Msg
	Response *Msg
}

// RequestKey and ResponseKey identify the two synthetic messages a service
// derives, per Design Note 9(ii): the service is authoritative and Req/Res
// message types are derived from it rather than hand-written separately.
func (s *Srv) RequestKey() Key  { return Key{Package: s.Package, Name: s.Name + "Req"} }
func (s *Srv) ResponseKey() Key { return Key{Package: s.Package, Name: s.Name + "Res"} }
