package node

import "strings"

// resolveName applies spec.md §4.10's resolution rule: an absolute name
// (leading "/") is taken as-is; a tilde-prefixed private name ("~x") is
// resolved against the node's fully-qualified name; anything else is
// resolved against the current namespace. Remap tokens are applied after
// normalization, on the resulting absolute name.
func resolveName(name, namespace, nodeFQN string, remap map[string]string) string {
	var resolved string
	switch {
	case strings.HasPrefix(name, "/"):
		resolved = name
	case strings.HasPrefix(name, "~"):
		resolved = joinNames(nodeFQN, name[1:])
	default:
		resolved = joinNames(namespace, name)
	}
	if to, ok := remap[resolved]; ok {
		return to
	}
	if to, ok := remap[name]; ok {
		return to
	}
	return resolved
}

// joinNames concatenates a namespace and a relative name into an absolute
// ROS graph name, e.g. ("/a", "b") -> "/a/b", ("/", "b") -> "/b".
func joinNames(namespace, relative string) string {
	namespace = strings.TrimSuffix(namespace, "/")
	relative = strings.TrimPrefix(relative, "/")
	if namespace == "" {
		return "/" + relative
	}
	return namespace + "/" + relative
}
