package ddhgroup

import (
	"fmt"
	"math/big"

	"github.com/SJieNg123/zids/zidserr"
	"github.com/SJieNg123/zids/zidscrypto"
)

// BaseOTSender runs the sender side of a single Naor-Pinkas 1-of-2 OT
// session.
type BaseOTSender struct {
	group *Group
	a     *big.Int
	A     *big.Int
}

// NewBaseOTSender samples the sender's secret exponent a and publishes
// A = g^a. A fresh sender must be created per OT session: reusing a across
// sessions is not part of this protocol's contract.
func NewBaseOTSender(group *Group) (*BaseOTSender, error) {
	a, err := group.RandomExponent()
	if err != nil {
		return nil, fmt.Errorf("ddhgroup: sample sender exponent: %w", err)
	}
	return &BaseOTSender{
		group: group,
		a:     a,
		A:     group.Power(group.G, a),
	}, nil
}

// PublicKey returns A = g^a, which the receiver needs before it can compute
// its own public key B.
func (s *BaseOTSender) PublicKey() *big.Int {
	return s.A
}

// Respond takes the receiver's public key B and two equal-length messages
// m0, m1, and returns (c0, c1) such that only the party who built B from the
// matching choice bit can recover the corresponding message.
func (s *BaseOTSender) Respond(b *big.Int, m0, m1 []byte) (c0, c1 []byte, err error) {
	if !s.group.InSubgroup(b) {
		return nil, nil, zidserr.BadPublicKeyf("ddhgroup: receiver public key B not in prime-order subgroup")
	}
	if len(m0) != len(m1) {
		return nil, nil, zidserr.LengthMismatchf("ddhgroup: OT messages must have equal length (%d != %d)", len(m0), len(m1))
	}
	k0 := s.group.Power(b, s.a)
	aInv := s.group.Inverse(s.A)
	bOverA := new(big.Int).Mul(b, aInv)
	bOverA.Mod(bOverA, s.group.P)
	k1 := s.group.Power(bOverA, s.a)

	keyLen := s.group.KeyByteLen()
	pad0 := zidscrypto.PRFLabeled(fixedBytes(k0, keyLen), []byte("OT2|m0"), len(m0))
	pad1 := zidscrypto.PRFLabeled(fixedBytes(k1, keyLen), []byte("OT2|m1"), len(m1))

	c0 = xor(m0, pad0)
	c1 = xor(m1, pad1)
	return c0, c1, nil
}

// BaseOTReceiver runs the receiver side for a chosen bit.
type BaseOTReceiver struct {
	group  *Group
	choice int
	b      *big.Int
	A      *big.Int
}

// NewBaseOTReceiver samples the receiver's secret exponent b for the given
// choice bit (0 or 1).
func NewBaseOTReceiver(group *Group, choice int) (*BaseOTReceiver, error) {
	if choice != 0 && choice != 1 {
		return nil, fmt.Errorf("ddhgroup: choice bit must be 0 or 1, got %d", choice)
	}
	b, err := group.RandomExponent()
	if err != nil {
		return nil, fmt.Errorf("ddhgroup: sample receiver exponent: %w", err)
	}
	return &BaseOTReceiver{group: group, choice: choice, b: b}, nil
}

// GenerateB takes the sender's public key A and derives B: g^b when
// choice == 0, or A*g^b when choice == 1. The receiver must call this
// before Recover.
func (r *BaseOTReceiver) GenerateB(a *big.Int) *big.Int {
	r.A = a
	gb := r.group.Power(r.group.G, r.b)
	if r.choice == 0 {
		return gb
	}
	out := new(big.Int).Mul(a, gb)
	out.Mod(out, r.group.P)
	return out
}

// Recover decrypts the ciphertext corresponding to the receiver's choice bit
// out of the sender's (c0, c1) response.
func (r *BaseOTReceiver) Recover(c0, c1 []byte) ([]byte, error) {
	if r.A == nil {
		return nil, fmt.Errorf("ddhgroup: GenerateB must be called before Recover")
	}
	k := r.group.Power(r.A, r.b)
	keyLen := r.group.KeyByteLen()
	kb := fixedBytes(k, keyLen)

	var chosen []byte
	var label string
	if r.choice == 0 {
		chosen, label = c0, "OT2|m0"
	} else {
		chosen, label = c1, "OT2|m1"
	}
	pad := zidscrypto.PRFLabeled(kb, []byte(label), len(chosen))
	return xor(chosen, pad), nil
}

func fixedBytes(x *big.Int, length int) []byte {
	b := x.Bytes()
	if len(b) == length {
		return b
	}
	out := make([]byte, length)
	copy(out[length-len(b):], b)
	return out
}

func xor(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
