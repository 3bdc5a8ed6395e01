package odfa

import "github.com/SJieNg123/zids/zidserr"

// RowAlphabet maps, per row, each symbol (0..alphabet_size) to the sorted
// list of columns it belongs to in that row.
type RowAlphabet struct {
	AlphabetSize int
	Outmax       int
	Cmax         int
	SymToCols    [][]int
}

// Validate enforces the length, strictly-increasing, and cmax-bound
// invariants a well-formed RowAlphabet must satisfy.
func (a RowAlphabet) Validate() error {
	if len(a.SymToCols) != a.AlphabetSize {
		return zidserr.InvalidParameterf("odfa: RowAlphabet length %d != alphabet_size %d", len(a.SymToCols), a.AlphabetSize)
	}
	for x, cols := range a.SymToCols {
		if len(cols) > a.Cmax {
			return zidserr.InvalidParameterf("odfa: symbol %d belongs to %d columns, exceeds cmax %d", x, len(cols), a.Cmax)
		}
		for i, c := range cols {
			if c < 0 || c >= a.Outmax {
				return zidserr.InvalidParameterf("odfa: symbol %d column %d out of range [0,%d)", x, c, a.Outmax)
			}
			if i > 0 && cols[i-1] >= c {
				return zidserr.InvalidParameterf("odfa: symbol %d column list not strictly increasing", x)
			}
		}
	}
	return nil
}

// DefaultRowAlphabet builds the helper singleton partition col = x mod
// outmax, used as the default when no finer grouping is supplied.
func DefaultRowAlphabet(alphabetSize, outmax, cmax int) RowAlphabet {
	symToCols := make([][]int, alphabetSize)
	for x := 0; x < alphabetSize; x++ {
		symToCols[x] = []int{x % outmax}
	}
	return RowAlphabet{
		AlphabetSize: alphabetSize,
		Outmax:       outmax,
		Cmax:         cmax,
		SymToCols:    symToCols,
	}
}
