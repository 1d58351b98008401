package schema

import "fmt"

// MalformedFieldError reports a schema line that matched none of the five
// recognized field shapes (§4.1).
type MalformedFieldError struct {
	Line string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("schema: malformed field line: %q", e.Line)
}

// UnsupportedTypeError reports a type token that is not one of the 13
// primitives, the bareword Header, or a valid local/remote struct reference.
type UnsupportedTypeError struct {
	Datatype string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("schema: unsupported datatype: %q", e.Datatype)
}

// ErrMissingDependency is returned by Resolve when a message's dependency
// graph references a (package, name) pair with no known source.
type MissingDependencyError struct {
	Msg        Key
	Dependency Key
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("schema: %s depends on missing message %s", e.Msg, e.Dependency)
}

// ErrDependencyCycle is returned by Resolve when the dependency graph is not
// a DAG.
type DependencyCycleError struct {
	Cycle []Key
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("schema: dependency cycle detected: %v", e.Cycle)
}
