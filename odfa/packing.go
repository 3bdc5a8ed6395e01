package odfa

import "github.com/SJieNg123/zids/zidserr"

// CellFormat is the fixed bit layout of one GDFA cell plaintext, MSB-first:
// ns_bits || aid_bits || pad_bits.
type CellFormat struct {
	NSBits  int
	AIDBits int
	PadBits int
}

// TotalBits is ns_bits + aid_bits + pad_bits, which must equal
// PackingParams.GDFACellPadBits.
func (c CellFormat) TotalBits() int { return c.NSBits + c.AIDBits + c.PadBits }

// TotalBytes is ceil(TotalBits()/8), i.e. cell_bytes.
func (c CellFormat) TotalBytes() int { return ceilDiv(c.TotalBits(), 8) }

func ceilDiv(a, b int) int {
	if b <= 0 {
		panic("odfa: ceilDiv divisor must be positive")
	}
	return (a + b - 1) / b
}

// PlanCellFormat decides ns_bits (just enough to index num_states states
// after permutation) and fills the remainder of gdfa_cell_pad_bits with zero
// padding once aid_bits is fixed.
func PlanCellFormat(numStates int, pack PackingParams, aidBits int) (CellFormat, error) {
	if numStates <= 0 {
		return CellFormat{}, zidserr.InvalidParameterf("odfa: num_states must be positive")
	}
	if aidBits <= 0 {
		return CellFormat{}, zidserr.InvalidParameterf("odfa: aid_bits must be positive")
	}
	nsBits := bitLength(numStates - 1)
	if nsBits < 1 {
		nsBits = 1
	}
	needed := nsBits + aidBits
	if needed > pack.GDFACellPadBits {
		return CellFormat{}, zidserr.InvalidParameterf(
			"odfa: gdfa_cell_pad_bits (%d) too small for ns_bits(%d)+aid_bits(%d)",
			pack.GDFACellPadBits, nsBits, aidBits)
	}
	return CellFormat{
		NSBits:  nsBits,
		AIDBits: aidBits,
		PadBits: pack.GDFACellPadBits - needed,
	}, nil
}

// bitLength returns the number of bits needed to represent x, with
// bitLength(0) == 0.
func bitLength(x int) int {
	n := 0
	for x > 0 {
		n++
		x >>= 1
	}
	return n
}
