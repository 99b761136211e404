// Package transport defines the party-to-party byte-stream collaborator
// consumed by registry.Core. The actual network transport is out of scope
// (spec §1): this package fixes the interface the core calls through, and
// provides an in-memory Loopback and a length-prefix-framing BatchSender,
// both used by cmd/mpcdemo.
package transport

import "context"

// Handler sends raw message bytes to one remote party. Framing and transport
// are handled by the implementation; the core treats a Handler as an opaque
// byte sink.
type Handler interface {
	// SendMessage delivers buf to the remote party this Handler addresses.
	SendMessage(ctx context.Context, buf []byte) error
}

