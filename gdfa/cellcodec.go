package gdfa

import "math/big"

// packCell lays out (ns, aid) MSB-first with zero pad bits into exactly
// cellBytes bytes: ns_bits || aid_bits || pad_bits, where the pad_bits are
// the low-order bits and are always zero in the plaintext before PRG XOR.
func packCell(ns, aid, nsBits, aidBits, padBits, cellBytes int) []byte {
	v := new(big.Int).SetUint64(uint64(ns))
	v.Lsh(v, uint(aidBits))
	v.Or(v, new(big.Int).SetUint64(uint64(aid)))
	v.Lsh(v, uint(padBits))
	return fixedBytes(v, cellBytes)
}

// unpackCell is the inverse of packCell, returning (ns, aid) and whether the
// low pad_bits of pt are all zero (the online evaluator's validity check).
func unpackCell(pt []byte, nsBits, aidBits, padBits int) (ns, aid int, padOK bool) {
	v := new(big.Int).SetBytes(pt)
	padMask := new(big.Int).Lsh(big.NewInt(1), uint(padBits))
	padMask.Sub(padMask, big.NewInt(1))
	low := new(big.Int).And(v, padMask)
	padOK = low.Sign() == 0

	v.Rsh(v, uint(padBits))
	aidMask := (1 << uint(aidBits)) - 1
	nsMask := (1 << uint(nsBits)) - 1
	aidVal := new(big.Int).And(v, big.NewInt(int64(aidMask)))
	v.Rsh(v, uint(aidBits))
	nsVal := new(big.Int).And(v, big.NewInt(int64(nsMask)))
	return int(nsVal.Int64()), int(aidVal.Int64()), padOK
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
