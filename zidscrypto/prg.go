package zidscrypto

import "github.com/SJieNg123/zids/encode"

// GBytes deterministically expands seed into exactly outLen bytes using the
// same counter-mode HMAC-SHA256 construction as PRF, but with a distinct
// "PRG|"+label+"|ctr=..|len=.." info string so PRF and PRG outputs never
// collide even when fed the same seed. Binding the requested length into the
// label prevents extending a short expansion into a longer one that shares a
// prefix.
func GBytes(seed []byte, outLen int, label []byte) []byte {
	if outLen < 0 {
		panic("zidscrypto: GBytes outLen must be non-negative")
	}
	out := make([]byte, 0, outLen)
	for counter := uint64(1); len(out) < outLen; counter++ {
		info := append([]byte("PRG|"), label...)
		info = append(info, []byte("|ctr=")...)
		info = append(info, encode.I2OSP(counter, 4)...)
		info = append(info, []byte("|len=")...)
		info = append(info, encode.I2OSP(uint64(outLen), 4)...)
		block := prgBlock(seed, info)
		out = append(out, block...)
	}
	return out[:outLen]
}

// prgBlock computes one 32-byte HMAC-SHA256 block for the PRG's counter
// expansion; factored out because GBytes needs a fresh per-iteration info
// string rather than PRF's single evolving info.
func prgBlock(seed, info []byte) []byte {
	return PRF(seed, info, 32)
}

// GBits expands seed into ceil(outBits/8) bytes and zeroes the low
// (8 - outBits%8) % 8 bits of the final byte, so the result represents
// exactly outBits bits MSB-first. This is the pad generator for GDFA cells,
// where pad_bits is rarely a multiple of 8.
func GBits(seed []byte, outBits int, label []byte) []byte {
	if outBits < 0 {
		panic("zidscrypto: GBits outBits must be non-negative")
	}
	outLen := (outBits + 7) / 8
	if outLen == 0 {
		return nil
	}
	buf := GBytes(seed, outLen, label)
	r := outBits & 7
	if r == 0 {
		return buf
	}
	mask := byte(0xFF << uint(8-r))
	buf[len(buf)-1] &= mask
	return buf
}
