// Package zidscrypto implements the counter-mode HMAC-SHA256 PRF and PRG used
// throughout the GDFA pipeline for key derivation and pad expansion.
package zidscrypto

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/SJieNg123/zids/encode"
)

// PRF is HMAC-SHA256 in counter mode: T_0 = "", T_i = HMAC(key, T_{i-1} ||
// info || I2OSP(i,4)), output = (T_1 || T_2 || ...) truncated to outLen.
//
// key must be non-empty; info carries the caller's domain-separation label.
func PRF(key, info []byte, outLen int) []byte {
	if len(key) == 0 {
		panic("zidscrypto: PRF key must be non-empty")
	}
	if outLen < 0 {
		panic("zidscrypto: PRF outLen must be non-negative")
	}
	out := make([]byte, 0, outLen)
	var t []byte
	for counter := uint64(1); len(out) < outLen; counter++ {
		mac := hmac.New(sha256.New, key)
		mac.Write(t)
		mac.Write(info)
		mac.Write(encode.I2OSP(counter, 4))
		t = mac.Sum(nil)
		out = append(out, t...)
	}
	return out[:outLen]
}

// PRFLabeled is PRF(key, "PRF|"+label, outLen), a convenience wrapper for
// call sites that only need a label and no further structured info.
func PRFLabeled(key, label []byte, outLen int) []byte {
	info := append([]byte("PRF|"), label...)
	return PRF(key, info, outLen)
}
