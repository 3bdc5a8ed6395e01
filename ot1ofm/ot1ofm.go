// Package ot1ofm implements 1-of-m oblivious transfer by bit-decomposition
// into ℓ=⌈log2 m⌉ base 1-of-2 OTs, and the 1-of-256 specialization used on
// every GDFA row.
package ot1ofm

import (
	"crypto/rand"
	"fmt"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/encode"
	"github.com/SJieNg123/zids/zidserr"
	"github.com/SJieNg123/zids/zidscrypto"
)

const seedLen = 32 // bytes; per-bit-position seed pair length
const sidLen = 16  // bytes; per-service domain-separation salt

// bitAtLSB returns the j-th bit of i, LSB-first.
func bitAtLSB(i, j int) int {
	return (i >> uint(j)) & 1
}

// Sender holds the full 1-of-m table (all m ciphertexts) plus the per-bit
// seed pairs the receiver learns via base OT. All payload entries must have
// identical length entryLen.
type Sender struct {
	group    *ddhgroup.Group
	label    []byte
	sid      []byte
	m        int
	entryLen int
	l        int // ℓ = ceil(log2 m)

	seed0 [][]byte
	seed1 [][]byte

	Ciphertexts [][]byte
}

// NewSender builds the sender's table from m fixed-length byte payloads. sid
// may be nil, in which case a fresh random 16-byte salt is sampled; callers
// that want cross-session token caching must supply a stable sid themselves.
func NewSender(group *ddhgroup.Group, payload [][]byte, label, sid []byte) (*Sender, error) {
	m := len(payload)
	if m <= 0 {
		return nil, zidserr.InvalidParameterf("ot1ofm: payload must be non-empty")
	}
	entryLen := len(payload[0])
	if entryLen <= 0 {
		return nil, zidserr.InvalidParameterf("ot1ofm: payload entries must be non-empty")
	}
	for i, p := range payload {
		if len(p) != entryLen {
			return nil, zidserr.LengthMismatchf("ot1ofm: payload[%d] length %d != %d", i, len(p), entryLen)
		}
	}
	if sid == nil {
		sid = make([]byte, sidLen)
		if _, err := rand.Read(sid); err != nil {
			return nil, fmt.Errorf("ot1ofm: sample sid: %w", err)
		}
	}

	l := bitLen(m - 1)
	s := &Sender{
		group:    group,
		label:    append([]byte(nil), label...),
		sid:      sid,
		m:        m,
		entryLen: entryLen,
		l:        l,
	}

	s.seed0 = make([][]byte, l)
	s.seed1 = make([][]byte, l)
	for j := 0; j < l; j++ {
		s0 := make([]byte, seedLen)
		s1 := make([]byte, seedLen)
		if _, err := rand.Read(s0); err != nil {
			return nil, fmt.Errorf("ot1ofm: sample seed0[%d]: %w", j, err)
		}
		if _, err := rand.Read(s1); err != nil {
			return nil, fmt.Errorf("ot1ofm: sample seed1[%d]: %w", j, err)
		}
		s.seed0[j] = s0
		s.seed1[j] = s1
	}

	s.Ciphertexts = make([][]byte, m)
	for t := 0; t < m; t++ {
		pad := s.padForOption(t)
		s.Ciphertexts[t] = encode.XorBytes(payload[t], pad)
	}
	return s, nil
}

func (s *Sender) padForOption(t int) []byte {
	pad := make([]byte, s.entryLen)
	for j := 0; j < s.l; j++ {
		info := s.bitInfo(j)
		var seed []byte
		if bitAtLSB(t, j) == 1 {
			seed = s.seed1[j]
		} else {
			seed = s.seed0[j]
		}
		block := zidscrypto.PRF(seed, info, s.entryLen)
		for k := range pad {
			pad[k] ^= block[k]
		}
	}
	return pad
}

func (s *Sender) bitInfo(j int) []byte {
	info := append([]byte(nil), s.label...)
	info = append(info, []byte("|j=")...)
	info = append(info, encode.I2OSP(uint64(j), 2)...)
	info = append(info, []byte("|sid=")...)
	info = append(info, s.sid...)
	return info
}

// M returns the number of options in the table.
func (s *Sender) M() int { return s.m }

// EntryLength returns the fixed byte length of every table entry.
func (s *Sender) EntryLength() int { return s.entryLen }

// BitLength returns ℓ, the number of base 1-of-2 OTs a choose composes.
func (s *Sender) BitLength() int { return s.l }

// SeedPair returns the sender's (seed0, seed1) for bit position j, the
// messages the receiver's j-th base OT transfers.
func (s *Sender) SeedPair(j int) (seed0, seed1 []byte) {
	return s.seed0[j], s.seed1[j]
}

// Chooser runs the receiver side of a 1-of-m OT: ℓ base 1-of-2 OTs against
// the sender's seed pairs, then reconstructs the pad and decrypts the chosen
// ciphertext.
type Chooser struct {
	group *ddhgroup.Group
	label []byte
	svc   *Sender
}

// NewChooser binds a receiver to a specific sender service and label. The
// label must match the one the sender table was built with, or decryption
// silently produces garbage.
func NewChooser(group *ddhgroup.Group, label []byte, svc *Sender) *Chooser {
	return &Chooser{group: group, label: append([]byte(nil), label...), svc: svc}
}

// Choose obliviously retrieves table entry index via ℓ base OTs.
func (c *Chooser) Choose(index int) ([]byte, error) {
	if index < 0 || index >= c.svc.m {
		return nil, zidserr.OutOfRangef("ot1ofm: index %d out of range [0,%d)", index, c.svc.m)
	}

	learned := make([][]byte, c.svc.l)
	for j := 0; j < c.svc.l; j++ {
		bit := bitAtLSB(index, j)
		sender, err := ddhgroup.NewBaseOTSender(c.group)
		if err != nil {
			return nil, err
		}
		receiver, err := ddhgroup.NewBaseOTReceiver(c.group, bit)
		if err != nil {
			return nil, err
		}
		b := receiver.GenerateB(sender.PublicKey())
		s0, s1 := c.svc.SeedPair(j)
		ct0, ct1, err := sender.Respond(b, s0, s1)
		if err != nil {
			return nil, err
		}
		seed, err := receiver.Recover(ct0, ct1)
		if err != nil {
			return nil, err
		}
		if len(seed) != seedLen {
			return nil, zidserr.LengthMismatchf("ot1ofm: recovered seed has length %d, expected %d", len(seed), seedLen)
		}
		learned[j] = seed
	}

	pad := make([]byte, c.svc.entryLen)
	for j, seed := range learned {
		info := append([]byte(nil), c.label...)
		info = append(info, []byte("|j=")...)
		info = append(info, encode.I2OSP(uint64(j), 2)...)
		info = append(info, []byte("|sid=")...)
		info = append(info, c.svc.sid...)
		block := zidscrypto.PRF(seed, info, c.svc.entryLen)
		for k := range pad {
			pad[k] ^= block[k]
		}
	}

	return encode.XorBytes(c.svc.Ciphertexts[index], pad), nil
}

// bitLen returns the number of bits needed to represent x, with
// bitLen(0) == 0.
func bitLen(x int) int {
	n := 0
	for x > 0 {
		n++
		x >>= 1
	}
	return n
}
