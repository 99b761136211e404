// Package ot declares the oblivious-transfer collaborator consumed by
// spprovider.Provider (spec §6). The core only ever calls RegisterSend,
// RegisterReceive, and the handle methods below; the OT primitive itself —
// its security, its extension protocol, its wire format — is out of scope
// (spec §1 Non-goals). internal/acot provides a protocol-shaped simulator
// implementing this interface for tests and cmd/mpcdemo.
package ot

import "context"

// BitString is a packed bit vector, little-endian within each byte (bit 0 of
// the vector is bit 0 of BitString[0]).
//
// When used as a sender message or a handle output, a BitString is exactly
// VectorLength bits wide (the AC-OT correlation value, or the resulting
// mask, for one OT instance). When used as a receiver's choice vector, a
// BitString is MessageCount bits wide: one choice bit per OT instance.
type BitString []byte

// SenderHandle is the sender side of one batch of additive-correlated OTs,
// returned by Provider.RegisterSend.
type SenderHandle interface {
	// SetInputs sets the per-instance correlation values. len(messages)
	// must equal the handle's MessageCount; each message is VectorLength
	// bits wide.
	SetInputs(messages []BitString) error

	// SendMessages drives the OT batch to completion from the sender's
	// side.
	SendMessages(ctx context.Context) error

	// GetOutputs returns the sender's random masks, one VectorLength-bit
	// BitString per instance. Valid only after SendMessages returns.
	GetOutputs(ctx context.Context) ([]BitString, error)
}

// ReceiverHandle is the receiver side of one batch of additive-correlated
// OTs, returned by Provider.RegisterReceive.
type ReceiverHandle interface {
	// SetChoices sets the receiver's choice bits: a single MessageCount-bit
	// BitString, one choice bit per OT instance.
	SetChoices(choices BitString) error

	// SendCorrections drives the OT batch to completion from the
	// receiver's side.
	SendCorrections(ctx context.Context) error

	// GetOutputs returns the receiver's outputs, one VectorLength-bit
	// BitString per instance. Valid only after SendCorrections returns.
	GetOutputs(ctx context.Context) ([]BitString, error)
}

// Provider registers OT batches against a specific peer party. One Provider
// instance models one local party's view of the OT layer.
type Provider interface {
	// RegisterSend registers a sender-side OT batch against peer, with the
	// given per-instance vector length (bits) and total instance count.
	RegisterSend(ctx context.Context, peer int, vectorLength, messageCount int) (SenderHandle, error)

	// RegisterReceive registers a receiver-side OT batch against peer, with
	// the given per-instance vector length (bits) and total instance count.
	RegisterReceive(ctx context.Context, peer int, vectorLength, messageCount int) (ReceiverHandle, error)
}
