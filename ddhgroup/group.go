// Package ddhgroup implements a DDH-hard prime-order subgroup of Z_p^* and
// the Naor-Pinkas 1-of-2 oblivious transfer protocol built on top of it.
package ddhgroup

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Group holds public DDH parameters (p, q, g): g has prime order q in the
// multiplicative group Z_p^*, with q | p-1.
type Group struct {
	P *big.Int
	Q *big.Int
	G *big.Int
}

var (
	two = big.NewInt(2)
	one = big.NewInt(1)
)

// NewGroup validates and wraps a caller-supplied (p, q, g) triple. It
// enforces the subgroup invariants: 2 < g < p-1, g^q ≡ 1 (mod p), and
// g^2 != 1 (reject tiny order).
func NewGroup(p, q, g *big.Int) (*Group, error) {
	grp := &Group{P: p, Q: q, G: g}
	if err := grp.validateGenerator(); err != nil {
		return nil, err
	}
	return grp, nil
}

func (grp *Group) validateGenerator() error {
	pMinus1 := new(big.Int).Sub(grp.P, one)
	if grp.G.Cmp(two) <= 0 || grp.G.Cmp(pMinus1) >= 0 {
		return fmt.Errorf("ddhgroup: generator out of range (2, p-1)")
	}
	if new(big.Int).Exp(grp.G, grp.Q, grp.P).Cmp(one) != 0 {
		return fmt.Errorf("ddhgroup: generator does not have order q (g^q != 1 mod p)")
	}
	if new(big.Int).Exp(grp.G, two, grp.P).Cmp(one) == 0 {
		return fmt.Errorf("ddhgroup: generator has order <= 2")
	}
	return nil
}

// RandomExponent samples a ← Z_q uniformly using rejection sampling on
// crypto/rand so the distribution is not skewed by modular reduction.
func (grp *Group) RandomExponent() (*big.Int, error) {
	return rand.Int(rand.Reader, grp.Q)
}

// Power computes base^exp mod p.
func (grp *Group) Power(base, exp *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, grp.P)
}

// Inverse computes the multiplicative inverse of x modulo p.
func (grp *Group) Inverse(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, grp.P)
}

// InSubgroup reports whether 1 < y < p and y^q ≡ 1 (mod p), i.e. y lies in
// the prime-order subgroup generated by g. This is the Naor-Pinkas receiver
// public-key check the sender runs before using a received public key.
func (grp *Group) InSubgroup(y *big.Int) bool {
	if y.Cmp(one) <= 0 || y.Cmp(grp.P) >= 0 {
		return false
	}
	return new(big.Int).Exp(y, grp.Q, grp.P).Cmp(one) == 0
}

// KeyByteLen is the fixed-length encoding size used whenever a group element
// (or Z_q scalar) must be serialized to bytes for PRF keying or OT messages:
// ceil(q.BitLen()/8).
func (grp *Group) KeyByteLen() int {
	return (grp.Q.BitLen() + 7) / 8
}

// DefaultGroup returns a fixed 2048-bit safe-prime DDH group suitable for
// tests and for CLI defaults when no group is supplied on the wire. p is a
// well-known RFC 3526 MODP group 14 safe prime; q = (p-1)/2, g = 2 rejected
// in favor of a quadratic residue generator of order q.
func DefaultGroup() *Group {
	p, ok := new(big.Int).SetString(modp2048Hex, 16)
	if !ok {
		panic("ddhgroup: embedded MODP prime failed to parse")
	}
	q := new(big.Int).Rsh(p, 1) // p = 2q+1 for a safe prime
	// g=4 = 2^2 is a quadratic residue, so it lies in the order-q subgroup
	// and, since q is prime and 4 != 1, generates it. g=2 is excluded by
	// NewGroup's 2 < g bound.
	g := big.NewInt(4)
	grp, err := NewGroup(p, q, g)
	if err != nil {
		panic("ddhgroup: default group failed validation: " + err.Error())
	}
	return grp
}

// modp2048Hex is RFC 3526's 2048-bit MODP Group 14 prime.
const modp2048Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD" +
	"129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A43" +
	"1B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637E" +
	"D6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE4" +
	"5B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA" +
	"3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA" +
	"18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06" +
	"F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A" +
	"8AACAA68FFFFFFFFFFFFFFFF"
