// Package otext implements a batched OT extension facade: a stable
// BatchRecvBytes/BatchRecvInts contract whose only shipping backend runs
// O(n) independent base OTs, with room for a future true-IKNP backend
// behind the same interface.
package otext

import (
	"fmt"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/zidserr"
)

// Backend selects the OTExtension's underlying implementation. "direct" is
// the only shipping backend; "iknp" is reserved for a future true IKNP
// engine behind this same facade.
type Backend string

const (
	BackendDirect Backend = "direct"
)

// Config configures an Extension.
type Config struct {
	Backend Backend
	Group   *ddhgroup.Group
}

// Extension is the batched OT facade. Its public surface
// (BatchRecvBytes/BatchRecvInts) must stay stable across backend swaps.
type Extension struct {
	cfg Config
}

// NewExtension validates cfg and returns a ready Extension.
func NewExtension(cfg Config) (*Extension, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendDirect
	}
	if cfg.Backend != BackendDirect {
		return nil, zidserr.InvalidParameterf("otext: unsupported backend %q", cfg.Backend)
	}
	if cfg.Group == nil {
		cfg.Group = ddhgroup.DefaultGroup()
	}
	return &Extension{cfg: cfg}, nil
}

// BatchRecvBytes runs n independent 1-of-2 base OTs, one per entry of
// messages/choices, and returns the n messages selected by choices. Both
// sender and receiver roles execute locally: this backend is a batched
// wrapper around base OTs, not a networked protocol.
func (e *Extension) BatchRecvBytes(messages [][2][]byte, choices []int) ([][]byte, error) {
	if len(messages) != len(choices) {
		return nil, zidserr.LengthMismatchf("otext: %d message pairs but %d choices", len(messages), len(choices))
	}
	out := make([][]byte, len(messages))
	for i, pair := range messages {
		bit := choices[i]
		if bit != 0 && bit != 1 {
			return nil, zidserr.InvalidParameterf("otext: choice bit at index %d must be 0 or 1, got %d", i, bit)
		}

		sender, err := ddhgroup.NewBaseOTSender(e.cfg.Group)
		if err != nil {
			return nil, fmt.Errorf("otext: new base OT sender: %w", err)
		}
		receiver, err := ddhgroup.NewBaseOTReceiver(e.cfg.Group, bit)
		if err != nil {
			return nil, fmt.Errorf("otext: new base OT receiver: %w", err)
		}

		b := receiver.GenerateB(sender.PublicKey())
		c0, c1, err := sender.Respond(b, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		chosen, err := receiver.Recover(c0, c1)
		if err != nil {
			return nil, err
		}
		out[i] = chosen
	}
	return out, nil
}

// BatchRecvInts is BatchRecvBytes specialized to small integer messages,
// the facade's convenience entry point for choosing among two small
// integers per index. Each integer is carried as a single byte, so only
// values in [0, 255] round-trip; larger values come back as their low 8
// bits.
func (e *Extension) BatchRecvInts(messages [][2]int, choices []int) ([]int, error) {
	byteMessages := make([][2][]byte, len(messages))
	for i, pair := range messages {
		byteMessages[i] = [2][]byte{{byte(pair[0])}, {byte(pair[1])}}
	}
	raw, err := e.BatchRecvBytes(byteMessages, choices)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raw))
	for i, r := range raw {
		out[i] = int(r[0])
	}
	return out, nil
}
