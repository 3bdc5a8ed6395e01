package odfa

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/SJieNg123/zids/zidserr"
)

// SamplePermutation draws a uniform random bijection new_row -> old_state
// over [0, n) via Fisher-Yates.
//
// A naive `int.from_bytes(os.urandom(2), "big") % (i+1)` draw would be
// biased whenever i+1 doesn't divide 2^16; crypto/rand.Int performs
// rejection sampling internally, drawing enough bytes and rejecting
// over-range values so every residue class is equally likely, so no
// modulo-bias correction is needed at the call site.
func SamplePermutation(n int) ([]int, error) {
	if n < 0 {
		return nil, zidserr.InvalidParameterf("odfa: n must be non-negative")
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("odfa: sample permutation: %w", err)
		}
		jj := int(j.Int64())
		perm[i], perm[jj] = perm[jj], perm[i]
	}
	return perm, nil
}

// IsPermutation reports whether perm is a bijection over [0, n).
func IsPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// InversePermutation computes inv such that inv[perm[i]] == i.
func InversePermutation(perm []int) ([]int, error) {
	n := len(perm)
	inv := make([]int, n)
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return nil, zidserr.InvalidParameterf("odfa: perm contains out-of-range value %d", v)
		}
		if seen[v] {
			return nil, zidserr.InvalidParameterf("odfa: perm is not a bijection (duplicate value %d)", v)
		}
		seen[v] = true
		inv[v] = i
	}
	return inv, nil
}
