// Package paramclient sketches the parameter-server convenience wrapper a
// real node would use to get/set values on the master's parameter tree.
// Out of scope (spec.md §1): only the interface shape a caller would code
// against is given here, deliberately unimplemented.
package paramclient

import (
	"context"
	"errors"
)

// ErrNotImplemented is returned by every method: the parameter-server
// wire binding rides the same out-of-scope XML-RPC transport as the
// master client (spec.md §1/§6).
var ErrNotImplemented = errors.New("paramclient: parameter server is not implemented (out of scope, see spec.md §1)")

// Client is the shape a parameter-server convenience wrapper would expose.
type Client interface {
	GetParam(ctx context.Context, key string) (any, error)
	SetParam(ctx context.Context, key string, value any) error
	DeleteParam(ctx context.Context, key string) error
	HasParam(ctx context.Context, key string) (bool, error)
}

type unimplementedClient struct{}

// New returns a Client stub whose every method reports ErrNotImplemented.
func New() Client { return unimplementedClient{} }

func (unimplementedClient) GetParam(ctx context.Context, key string) (any, error) {
	return nil, ErrNotImplemented
}

func (unimplementedClient) SetParam(ctx context.Context, key string, value any) error {
	return ErrNotImplemented
}

func (unimplementedClient) DeleteParam(ctx context.Context, key string) error {
	return ErrNotImplemented
}

func (unimplementedClient) HasParam(ctx context.Context, key string) (bool, error) {
	return false, ErrNotImplemented
}
