package schema

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// md5String renders a single field's canonicalization (§3): the datatype's
// canonical name (primitive name, or the already-resolved hex digest of a
// struct reference), followed by name and case-specific suffix. Grounded on
// rosrust's FieldInfo::md5_string / DataType::md5_string.
func (f Field) md5String(pkg string, resolved map[Key]string) (string, error) {
	datatype, err := datatypeMD5String(f.Datatype, pkg, resolved)
	if err != nil {
		return "", err
	}
	switch f.Case {
	case Unit:
		return fmt.Sprintf("%s %s", datatype, f.Name), nil
	case Vector:
		return fmt.Sprintf("%s[] %s", datatype, f.Name), nil
	case Array:
		return fmt.Sprintf("%s[%d] %s", datatype, f.ArrayLen, f.Name), nil
	case Const:
		return fmt.Sprintf("%s %s=%s", datatype, f.Name, f.Literal), nil
	default:
		return "", fmt.Errorf("schema: unknown field case %d", f.Case)
	}
}

func datatypeMD5String(d Datatype, pkg string, resolved map[Key]string) (string, error) {
	if d.Primitive != StructRef {
		return d.Primitive.CanonicalName(), nil
	}
	var k Key
	if d.IsLocalStruct() {
		k = Key{Package: pkg, Name: d.Struct}
	} else {
		k = Key{Package: d.Package, Name: d.Struct}
	}
	hash, ok := resolved[k]
	if !ok {
		return "", &MissingDependencyError{Dependency: k}
	}
	return hash, nil
}

// MD5 computes the message's content hash (§3), given the already-resolved
// hashes of every message it (transitively) depends on. Constants are
// canonicalized first, then non-constant fields, joined by newlines; the
// result is the lowercase hex MD5 digest of that UTF-8 byte sequence.
func (m *Msg) MD5(resolved map[Key]string) (string, error) {
	var lines []string
	for _, f := range m.Fields {
		if !f.IsConstant() {
			continue
		}
		s, err := f.md5String(m.Package, resolved)
		if err != nil {
			return "", err
		}
		lines = append(lines, s)
	}
	for _, f := range m.Fields {
		if f.IsConstant() {
			continue
		}
		s, err := f.md5String(m.Package, resolved)
		if err != nil {
			return "", err
		}
		lines = append(lines, s)
	}

	representation := strings.Join(lines, "\n")
	sum := md5.Sum([]byte(representation))
	return hex.EncodeToString(sum[:]), nil
}

// MD5 computes a service's content hash: md5(canonical(Req) || canonical(Res))
// — the concatenation of the two canonical representations without a
// separator (§3).
func (s *Srv) MD5(resolved map[Key]string) (string, error) {
	reqRepr, err := s.Request.canonicalRepresentation(resolved)
	if err != nil {
		return "", err
	}
	resRepr, err := s.Response.canonicalRepresentation(resolved)
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(reqRepr + resRepr))
	return hex.EncodeToString(sum[:]), nil
}

func (m *Msg) canonicalRepresentation(resolved map[Key]string) (string, error) {
	var lines []string
	for _, f := range m.Fields {
		if !f.IsConstant() {
			continue
		}
		s, err := f.md5String(m.Package, resolved)
		if err != nil {
			return "", err
		}
		lines = append(lines, s)
	}
	for _, f := range m.Fields {
		if f.IsConstant() {
			continue
		}
		s, err := f.md5String(m.Package, resolved)
		if err != nil {
			return "", err
		}
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n"), nil
}

// Resolve computes MD5 hashes for every message in msgs, in topological
// order over the dependency DAG (§4.2). Cycles are forbidden and reported as
// a DependencyCycleError; a reference to a message not present in msgs is
// reported as a MissingDependencyError.
func Resolve(msgs []*Msg) (map[Key]string, error) {
	byKey := make(map[Key]*Msg, len(msgs))
	for _, m := range msgs {
		byKey[m.Key()] = m
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS stack
		black = 2 // fully resolved
	)
	color := make(map[Key]int, len(msgs))
	resolved := make(map[Key]string, len(msgs))
	var stack []Key

	var visit func(k Key) error
	visit = func(k Key) error {
		switch color[k] {
		case black:
			return nil
		case gray:
			cycle := append(append([]Key{}, stack...), k)
			return &DependencyCycleError{Cycle: cycle}
		}

		m, ok := byKey[k]
		if !ok {
			// k is referenced but not supplied: not computable yet.
			return &MissingDependencyError{Dependency: k}
		}

		color[k] = gray
		stack = append(stack, k)
		for _, dep := range m.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[k] = black

		hash, err := m.MD5(resolved)
		if err != nil {
			return err
		}
		resolved[k] = hash
		return nil
	}

	for _, m := range msgs {
		if err := visit(m.Key()); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}
