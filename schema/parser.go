package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Field-shape regexes, grounded line-for-line on the rosrust message
// compiler (original_source/src/build_tools/msg.rs: match_field,
// match_vector_field, match_array_field, match_const_string,
// match_const_numeric). Whitespace is tolerant: any run of whitespace
// separates tokens, and brackets admit internal whitespace.
var (
	fieldTypeToken = `([a-zA-Z0-9_/]+)`
	fieldNameToken = `([a-zA-Z][a-zA-Z0-9_]*)`

	reUnit = regexp.MustCompile(`^` + fieldTypeToken + `\s+` + fieldNameToken + `$`)
	reVec  = regexp.MustCompile(`^` + fieldTypeToken + `\s*\[\s*\]\s+` + fieldNameToken + `$`)
	reArr  = regexp.MustCompile(`^` + fieldTypeToken + `\s*\[\s*([0-9]+)\s*\]\s+` + fieldNameToken + `$`)
	// string constants: recognized BEFORE comment stripping, so a '#' inside
	// the value is data, not a comment (§3, §4.1).
	reConstString  = regexp.MustCompile(`^(string)\s+` + fieldNameToken + `\s*=\s*(.*)$`)
	reConstNumeric = regexp.MustCompile(`^` + fieldTypeToken + `\s+` + fieldNameToken + `\s*=\s*(-?[0-9]+)$`)
)

// ParseMsg parses the raw schema text of a message named (pkg, name).
//
// Lines are tried in order: const-string (before comment stripping), then
// comment-stripped-and-trimmed unit/vector/array/const-numeric. Any
// non-empty line matching none of these fails with MalformedFieldError.
func ParseMsg(pkg, name, source string) (*Msg, error) {
	fields, err := parseFields(source)
	if err != nil {
		return nil, err
	}

	seen := map[Key]bool{}
	var deps []Key
	for _, f := range fields {
		if f.IsConstant() || !f.Datatype.IsStruct() {
			continue
		}
		var k Key
		if f.Datatype.IsLocalStruct() {
			k = Key{Package: pkg, Name: f.Datatype.Struct}
		} else {
			k = Key{Package: f.Datatype.Package, Name: f.Datatype.Struct}
		}
		if !seen[k] {
			seen[k] = true
			deps = append(deps, k)
		}
	}

	return &Msg{
		Package:      pkg,
		Name:         name,
		Fields:       fields,
		Source:       source,
		Dependencies: deps,
	}, nil
}

// ParseSrv parses a service schema: two messages separated by a line
// matching ^---$, named "<name>Req" and "<name>Res" (§3).
func ParseSrv(pkg, name, source string) (*Srv, error) {
	lines := strings.Split(source, "\n")
	sep := -1
	for i, l := range lines {
		if l == "---" {
			sep = i
			break
		}
	}
	if sep < 0 {
		return nil, &MalformedFieldError{Line: "missing '---' separator in service definition"}
	}

	reqSrc := strings.Join(lines[:sep], "\n")
	resSrc := strings.Join(lines[sep+1:], "\n")

	req, err := ParseMsg(pkg, name+"Req", reqSrc)
	if err != nil {
		return nil, err
	}
	res, err := ParseMsg(pkg, name+"Res", resSrc)
	if err != nil {
		return nil, err
	}

	return &Srv{Package: pkg, Name: name, Source: source, Request: req, Response: res}, nil
}

func parseFields(source string) ([]Field, error) {
	var fields []Field
	for _, rawLine := range strings.Split(source, "\n") {
		field, ok, err := parseLine(rawLine)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// parseLine mirrors rosrust's match_line: try const-string first (against
// the trimmed, UNSTRIPPED line, since '#' is legal data inside a string
// constant), then strip the comment suffix and try the remaining four shapes
// in order.
func parseLine(rawLine string) (Field, bool, error) {
	trimmed := strings.TrimSpace(rawLine)
	if m := reConstString.FindStringSubmatch(trimmed); m != nil {
		dt, err := parseDatatype(m[1])
		if err != nil {
			return Field{}, false, err
		}
		return Field{Datatype: dt, Name: m[2], Case: Const, Literal: m[3]}, true, nil
	}

	data := stripComment(rawLine)
	if data == "" {
		return Field{}, false, nil
	}

	if m := reUnit.FindStringSubmatch(data); m != nil {
		dt, err := parseDatatype(m[1])
		if err != nil {
			return Field{}, false, err
		}
		return Field{Datatype: dt, Name: m[2], Case: Unit}, true, nil
	}
	if m := reVec.FindStringSubmatch(data); m != nil {
		dt, err := parseDatatype(m[1])
		if err != nil {
			return Field{}, false, err
		}
		return Field{Datatype: dt, Name: m[2], Case: Vector}, true, nil
	}
	if m := reArr.FindStringSubmatch(data); m != nil {
		n, _ := strconv.Atoi(m[2])
		dt, err := parseDatatype(m[1])
		if err != nil {
			return Field{}, false, err
		}
		return Field{Datatype: dt, Name: m[3], Case: Array, ArrayLen: n}, true, nil
	}
	if m := reConstNumeric.FindStringSubmatch(data); m != nil {
		dt, err := parseDatatype(m[1])
		if err != nil {
			return Field{}, false, err
		}
		if dt.IsStruct() {
			return Field{}, false, &MalformedFieldError{Line: data}
		}
		return Field{Datatype: dt, Name: m[2], Case: Const, Literal: m[3]}, true, nil
	}

	return Field{}, false, &MalformedFieldError{Line: data}
}

// stripComment strips the suffix starting at the first '#' and trims the
// remainder (§4.1 step ii/iii).
func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// parseDatatype resolves a type token to a Datatype, applying the bareword
// Header alias and the byte/char synonyms, grounded on rosrust's
// parse_datatype.
func parseDatatype(token string) (Datatype, error) {
	switch token {
	case "bool":
		return Datatype{Primitive: Bool}, nil
	case "int8", "byte":
		return Datatype{Primitive: I8}, nil
	case "int16":
		return Datatype{Primitive: I16}, nil
	case "int32":
		return Datatype{Primitive: I32}, nil
	case "int64":
		return Datatype{Primitive: I64}, nil
	case "uint8", "char":
		return Datatype{Primitive: U8}, nil
	case "uint16":
		return Datatype{Primitive: U16}, nil
	case "uint32":
		return Datatype{Primitive: U32}, nil
	case "uint64":
		return Datatype{Primitive: U64}, nil
	case "float32":
		return Datatype{Primitive: F32}, nil
	case "float64":
		return Datatype{Primitive: F64}, nil
	case "string":
		return Datatype{Primitive: String}, nil
	case "time":
		return Datatype{Primitive: Time}, nil
	case "duration":
		return Datatype{Primitive: Duration}, nil
	case "Header":
		return Datatype{Primitive: StructRef, Package: "std_msgs", Struct: "Header"}, nil
	}

	parts := strings.Split(token, "/")
	for _, p := range parts {
		if p == "" {
			return Datatype{}, &UnsupportedTypeError{Datatype: token}
		}
	}
	switch len(parts) {
	case 1:
		return Datatype{Primitive: StructRef, Struct: parts[0]}, nil
	case 2:
		return Datatype{Primitive: StructRef, Package: parts[0], Struct: parts[1]}, nil
	default:
		return Datatype{}, &UnsupportedTypeError{Datatype: token}
	}
}
