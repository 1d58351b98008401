package master

import "context"

// XMLRPCTransport sketches the wire binding a real master speaks: every
// Client call above, translated to an XML-RPC method call over HTTP. Out
// of scope (spec.md §1 "a well-understood protocol binding") — Client's
// concrete implementations in this package (InMemoryMaster, EtcdMaster)
// don't use it at all; it exists only as the interface shape a real binding
// would satisfy.
type XMLRPCTransport interface {
	Call(ctx context.Context, method string, args ...any) (any, error)
}

// NewXMLRPCClient would dial a real ROS master's XML-RPC endpoint; left
// unimplemented since encoding/decoding XML-RPC calls is explicitly out of
// scope (spec.md §1/§6).
func NewXMLRPCClient(uri string) (XMLRPCTransport, error) {
	return nil, ErrNotImplemented
}
