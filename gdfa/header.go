// Package gdfa implements the offline GDFA builder, the per-row OT plan
// builder, and the online streaming evaluator with its OT pad oracle — the
// component that fuses every other package together.
package gdfa

import "github.com/SJieNg123/zids/zidserr"

// PublicHeader is the GDFA public header: everything needed to parse the
// row matrix, with nothing that leaks state identity beyond the published
// permutation itself.
type PublicHeader struct {
	AlphabetSize int   `json:"alphabet_size"`
	Outmax       int   `json:"outmax"`
	Cmax         int   `json:"cmax"`
	NumStates    int   `json:"num_states"`
	StartRow     int   `json:"start_row"`
	Permutation  []int `json:"permutation"`
	CellBytes    int   `json:"cell_bytes"`
	RowBytes     int   `json:"row_bytes"`
	AIDBits      int   `json:"aid_bits"`
}

// Validate checks the header is internally consistent: row_bytes ==
// outmax*cell_bytes, permutation is a bijection over [0, num_states), and
// start_row is in range.
func (h *PublicHeader) Validate() error {
	if h.NumStates <= 0 {
		return zidserr.MalformedODFAf("gdfa: num_states must be positive")
	}
	if len(h.Permutation) != h.NumStates {
		return zidserr.MalformedContainerf("gdfa: permutation length %d != num_states %d", len(h.Permutation), h.NumStates)
	}
	if h.RowBytes != h.Outmax*h.CellBytes {
		return zidserr.MalformedContainerf("gdfa: row_bytes %d != outmax(%d)*cell_bytes(%d)", h.RowBytes, h.Outmax, h.CellBytes)
	}
	if h.StartRow < 0 || h.StartRow >= h.NumStates {
		return zidserr.MalformedContainerf("gdfa: start_row %d out of range", h.StartRow)
	}
	seen := make([]bool, h.NumStates)
	for _, v := range h.Permutation {
		if v < 0 || v >= h.NumStates || seen[v] {
			return zidserr.MalformedContainerf("gdfa: permutation is not a bijection over [0,%d)", h.NumStates)
		}
		seen[v] = true
	}
	return nil
}

// CellBits returns cell_bytes*8, the bit-width decrypted for each cell.
func (h *PublicHeader) CellBits() int { return h.CellBytes * 8 }

// NSBits returns max(1, ceil(log2(num_states))), the number of bits the
// permuted next-state field occupies in every cell.
func (h *PublicHeader) NSBits() int {
	n := bitLength(h.NumStates - 1)
	if n < 1 {
		return 1
	}
	return n
}

// PadBits returns cell_bits - (ns_bits + aid_bits).
func (h *PublicHeader) PadBits() int {
	return h.CellBits() - (h.NSBits() + h.AIDBits)
}

func bitLength(x int) int {
	n := 0
	for x > 0 {
		n++
		x >>= 1
	}
	return n
}
