package wire

import (
	"bytes"
	"fmt"
	"time"

	"rosgo/schema"
)

// Resolver looks up a message's schema.Msg definition by key, used to
// recurse into struct-typed fields. Dynamic values from the node package are
// typically backed by a static registry of the built-in msgs/ definitions.
type Resolver map[schema.Key]*schema.Msg

func (r Resolver) lookup(pkg string, d schema.Datatype) (*schema.Msg, error) {
	var k schema.Key
	if d.IsLocalStruct() {
		k = schema.Key{Package: pkg, Name: d.Struct}
	} else {
		k = schema.Key{Package: d.Package, Name: d.Struct}
	}
	m, ok := r[k]
	if !ok {
		return nil, fmt.Errorf("wire: no schema registered for %s", k)
	}
	return m, nil
}

// Dynamic is a schema-described value that carries its layout as data
// (Design Note 9(b)): a generic value tree usable by introspection tooling
// that only knows a topic's schema at runtime, never at compile time.
//
// Constant fields are descriptive only and are never present on the wire
// (ROS constants are compile-time values, not transmitted data) — Encode and
// Decode skip them entirely, matching the real TCPROS wire behavior.
type Dynamic struct {
	Def    *schema.Msg
	Values map[string]any
}

// NewDynamic creates an empty Dynamic value for def, with every non-constant
// field present in Values at its zero value.
func NewDynamic(def *schema.Msg) *Dynamic {
	d := &Dynamic{Def: def, Values: make(map[string]any)}
	for _, f := range def.Fields {
		if f.IsConstant() {
			continue
		}
		d.Values[f.Name] = zeroValue(f)
	}
	return d
}

func zeroValue(f schema.Field) any {
	if f.Case == schema.Vector {
		return []any{}
	}
	if f.Case == schema.Array {
		return make([]any, f.ArrayLen)
	}
	return zeroScalar(f.Datatype)
}

func zeroScalar(d schema.Datatype) any {
	switch d.Primitive {
	case schema.Bool:
		return false
	case schema.I8:
		return int8(0)
	case schema.I16:
		return int16(0)
	case schema.I32:
		return int32(0)
	case schema.I64:
		return int64(0)
	case schema.U8:
		return uint8(0)
	case schema.U16:
		return uint16(0)
	case schema.U32:
		return uint32(0)
	case schema.U64:
		return uint64(0)
	case schema.F32:
		return float32(0)
	case schema.F64:
		return float64(0)
	case schema.String:
		return ""
	case schema.Time:
		return time.Time{}
	case schema.Duration:
		return time.Duration(0)
	default:
		return nil
	}
}

func (d *Dynamic) MsgType() string {
	return d.Def.Package + "/" + d.Def.Name
}

// Encode serializes every non-constant field in schema declaration order.
func (d *Dynamic) Encode(buf *bytes.Buffer, resolver Resolver) error {
	for _, f := range d.Def.Fields {
		if f.IsConstant() {
			continue
		}
		v := d.Values[f.Name]
		if err := encodeField(buf, f, v, d.Def.Package, resolver); err != nil {
			return fmt.Errorf("wire: field %s: %w", f.Name, err)
		}
	}
	return nil
}

func encodeField(buf *bytes.Buffer, f schema.Field, v any, pkg string, resolver Resolver) error {
	switch f.Case {
	case schema.Unit:
		return encodeScalar(buf, f.Datatype, v, pkg, resolver)
	case schema.Vector:
		items, _ := v.([]any)
		WriteU32(buf, uint32(len(items)))
		for _, item := range items {
			if err := encodeScalar(buf, f.Datatype, item, pkg, resolver); err != nil {
				return err
			}
		}
		return nil
	case schema.Array:
		items, _ := v.([]any)
		if len(items) != f.ArrayLen {
			return fmt.Errorf("array length mismatch: want %d, got %d", f.ArrayLen, len(items))
		}
		for _, item := range items {
			if err := encodeScalar(buf, f.Datatype, item, pkg, resolver); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unexpected field case %d in encode", f.Case)
	}
}

func encodeScalar(buf *bytes.Buffer, d schema.Datatype, v any, pkg string, resolver Resolver) error {
	if d.Primitive == schema.StructRef {
		nested, ok := v.(*Dynamic)
		if !ok {
			return fmt.Errorf("expected *Dynamic for struct field, got %T", v)
		}
		return nested.Encode(buf, resolver)
	}
	switch d.Primitive {
	case schema.Bool:
		WriteBool(buf, v.(bool))
	case schema.I8:
		WriteI8(buf, v.(int8))
	case schema.I16:
		WriteI16(buf, v.(int16))
	case schema.I32:
		WriteI32(buf, v.(int32))
	case schema.I64:
		WriteI64(buf, v.(int64))
	case schema.U8:
		WriteU8(buf, v.(uint8))
	case schema.U16:
		WriteU16(buf, v.(uint16))
	case schema.U32:
		WriteU32(buf, v.(uint32))
	case schema.U64:
		WriteU64(buf, v.(uint64))
	case schema.F32:
		WriteF32(buf, v.(float32))
	case schema.F64:
		WriteF64(buf, v.(float64))
	case schema.String:
		WriteString(buf, v.(string))
	case schema.Time:
		WriteTime(buf, v.(time.Time))
	case schema.Duration:
		WriteDuration(buf, v.(time.Duration))
	default:
		return fmt.Errorf("unsupported primitive %d", d.Primitive)
	}
	return nil
}

// DecodeDynamic reads a value for def from r, recursing into struct fields
// via resolver.
func DecodeDynamic(r *bytes.Reader, def *schema.Msg, resolver Resolver) (*Dynamic, error) {
	d := &Dynamic{Def: def, Values: make(map[string]any)}
	for _, f := range def.Fields {
		if f.IsConstant() {
			continue
		}
		v, err := decodeField(r, f, def.Package, resolver)
		if err != nil {
			return nil, fmt.Errorf("wire: field %s: %w", f.Name, err)
		}
		d.Values[f.Name] = v
	}
	return d, nil
}

func decodeField(r *bytes.Reader, f schema.Field, pkg string, resolver Resolver) (any, error) {
	switch f.Case {
	case schema.Unit:
		return decodeScalar(r, f.Datatype, pkg, resolver)
	case schema.Vector:
		n, err := ReadU32(r)
		if err != nil {
			return nil, err
		}
		if int64(n) > int64(r.Len())+1 {
			return nil, ErrMalformed
		}
		items := make([]any, 0, n)
		for i := uint32(0); i < n; i++ {
			v, err := decodeScalar(r, f.Datatype, pkg, resolver)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case schema.Array:
		items := make([]any, f.ArrayLen)
		for i := range items {
			v, err := decodeScalar(r, f.Datatype, pkg, resolver)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected field case %d in decode", f.Case)
	}
}

func decodeScalar(r *bytes.Reader, d schema.Datatype, pkg string, resolver Resolver) (any, error) {
	if d.Primitive == schema.StructRef {
		nestedDef, err := resolver.lookup(pkg, d)
		if err != nil {
			return nil, err
		}
		return DecodeDynamic(r, nestedDef, resolver)
	}
	switch d.Primitive {
	case schema.Bool:
		return ReadBool(r)
	case schema.I8:
		return ReadI8(r)
	case schema.I16:
		return ReadI16(r)
	case schema.I32:
		return ReadI32(r)
	case schema.I64:
		return ReadI64(r)
	case schema.U8:
		return ReadU8(r)
	case schema.U16:
		return ReadU16(r)
	case schema.U32:
		return ReadU32(r)
	case schema.U64:
		return ReadU64(r)
	case schema.F32:
		return ReadF32(r)
	case schema.F64:
		return ReadF64(r)
	case schema.String:
		return ReadString(r)
	case schema.Time:
		return ReadTime(r)
	case schema.Duration:
		return ReadDuration(r)
	default:
		return nil, fmt.Errorf("unsupported primitive %d", d.Primitive)
	}
}
