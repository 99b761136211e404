// Package acot is a protocol-shaped simulator of the additive-correlated OT
// (AC-OT) collaborator spprovider.Provider consumes through the ot.Provider
// interface. It reproduces the message flow of spec §4.2's construction —
// sender derives per-instance masks and ships them alongside its chosen
// correlation, receiver folds in the correlation for the instances where its
// choice bit is set — without claiming OT security: masks are derived with
// an HKDF expansion (golang.org/x/crypto/hkdf) over a per-handle random
// secret, which gives the simulator a believable "derive pad material from a
// short seed" step without implementing an actual OT-extension base
// protocol. See SPEC_FULL.md's Non-goals.
package acot

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/ot"
)

type pairKey struct{ lo, hi int }

func keyOf(a, b int) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// exchange carries the sender's masks and correlation deltas to the
// matching receiver handle.
type exchange struct {
	masks  []ot.BitString
	deltas []ot.BitString
}

// Network is the shared rendezvous every party's Provider registers
// against. One Network simulates the point-to-point OT channels for a
// whole session; every party must share the same instance.
type Network struct {
	mu   sync.Mutex
	meta map[pairKey]chan chan *exchange
}

// NewNetwork constructs an empty Network.
func NewNetwork() *Network {
	return &Network{meta: make(map[pairKey]chan chan *exchange)}
}

func (n *Network) metaChan(key pairKey) chan chan *exchange {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.meta[key]
	if !ok {
		// Buffered generously: senders queue one session per RegisterSend
		// call during PreSetup, and the peer's RegisterReceive calls take
		// them off in the same order, possibly later.
		ch = make(chan chan *exchange, 4096)
		n.meta[key] = ch
	}
	return ch
}

// Provider implements ot.Provider for one party's view of net.
type Provider struct {
	net *Network
	me  int
}

// NewProvider constructs a Provider for party me, sharing net with its
// peers.
func NewProvider(net *Network, me int) *Provider {
	return &Provider{net: net, me: me}
}

func (p *Provider) RegisterSend(ctx context.Context, peer, vectorLength, messageCount int) (ot.SenderHandle, error) {
	if peer == p.me {
		return nil, fmt.Errorf("acot: RegisterSend: peer equals local party %d", p.me)
	}
	sess := make(chan *exchange, 1)
	select {
	case p.net.metaChan(keyOf(p.me, peer)) <- sess:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &senderHandle{vectorLength: vectorLength, messageCount: messageCount, sess: sess}, nil
}

func (p *Provider) RegisterReceive(ctx context.Context, peer, vectorLength, messageCount int) (ot.ReceiverHandle, error) {
	if peer == p.me {
		return nil, fmt.Errorf("acot: RegisterReceive: peer equals local party %d", p.me)
	}
	var sess chan *exchange
	select {
	case sess = <-p.net.metaChan(keyOf(p.me, peer)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &receiverHandle{vectorLength: vectorLength, messageCount: messageCount, sess: sess}, nil
}

type senderHandle struct {
	vectorLength int
	messageCount int
	sess         chan *exchange

	mu       sync.Mutex
	messages []ot.BitString
	masks    []ot.BitString
	sent     bool
}

func (h *senderHandle) SetInputs(messages []ot.BitString) error {
	if len(messages) != h.messageCount {
		return fmt.Errorf("acot: SetInputs: want %d messages, got %d", h.messageCount, len(messages))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = messages
	return nil
}

func (h *senderHandle) SendMessages(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.messages == nil {
		return fmt.Errorf("acot: SendMessages: SetInputs not called")
	}
	if h.sent {
		return nil
	}

	secret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return fmt.Errorf("acot: derive session secret: %w", err)
	}

	w := width.Width(h.vectorLength)
	masks := make([]ot.BitString, h.messageCount)
	for i := range masks {
		kdf := hkdf.New(sha256.New, secret, nil, []byte(fmt.Sprintf("acot-mask-%d", i)))
		mask := make([]byte, w.Bytes())
		if _, err := io.ReadFull(kdf, mask); err != nil {
			return fmt.Errorf("acot: expand mask %d: %w", i, err)
		}
		masks[i] = mask
	}
	h.masks = masks
	h.sent = true

	select {
	case h.sess <- &exchange{masks: masks, deltas: h.messages}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *senderHandle) GetOutputs(ctx context.Context) ([]ot.BitString, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.sent {
		return nil, fmt.Errorf("acot: GetOutputs: SendMessages not called")
	}
	return h.masks, nil
}

type receiverHandle struct {
	vectorLength int
	messageCount int
	sess         chan *exchange

	mu      sync.Mutex
	choices ot.BitString
	outputs []ot.BitString
	done    bool
}

func (h *receiverHandle) SetChoices(choices ot.BitString) error {
	want := (h.messageCount + 7) / 8
	if len(choices) != want {
		return fmt.Errorf("acot: SetChoices: want %d packed bytes, got %d", want, len(choices))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.choices = choices
	return nil
}

func (h *receiverHandle) SendCorrections(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.choices == nil {
		return fmt.Errorf("acot: SendCorrections: SetChoices not called")
	}
	if h.done {
		return nil
	}

	var ex *exchange
	select {
	case ex = <-h.sess:
	case <-ctx.Done():
		return ctx.Err()
	}
	if len(ex.masks) != h.messageCount || len(ex.deltas) != h.messageCount {
		return fmt.Errorf("acot: SendCorrections: protocol violation, expected %d instances", h.messageCount)
	}

	w := width.Width(h.vectorLength)
	outputs := make([]ot.BitString, h.messageCount)
	for i := 0; i < h.messageCount; i++ {
		if width.Bit(h.choices, uint(i)) == 1 {
			outputs[i] = width.Add(w, ex.masks[i], ex.deltas[i])
		} else {
			outputs[i] = append([]byte(nil), ex.masks[i]...)
		}
	}
	h.outputs = outputs
	h.done = true
	return nil
}

func (h *receiverHandle) GetOutputs(ctx context.Context) ([]ot.BitString, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		return nil, fmt.Errorf("acot: GetOutputs: SendCorrections not called")
	}
	return h.outputs, nil
}
