package gdfa

import "github.com/SJieNg123/zids/zidserr"

// EvalResult is the outcome of running a byte stream through a GDFARunner.
// LastAttackID tracks the attack_id of the most recent transition taken,
// including 0 (non-accepting); FirstAttackID tracks only the first
// transition whose attack_id was non-zero, and is -1 if none was ever seen.
// When Run returns a non-nil error, Steps/FinalRow/FirstAttackID/
// LastAttackID still hold the partial progress made before the failing
// step.
type EvalResult struct {
	Steps         int
	FinalRow      int
	FirstAttackID int // -1 if no accepting attack id was seen
	LastAttackID  int
}

// GDFARunner is the stateful online evaluator: it walks an input byte
// stream one symbol at a time, asking the PadOracle to resolve each
// transition against the current row's ciphertext.
type GDFARunner struct {
	Header *PublicHeader
	Rows   *RowStore
	Oracle PadOracle
}

// NewGDFARunner constructs a runner over a public header, its row store,
// and a PadOracle (typically an OTPadOracle backed by a live OT session or
// a cached TokenGetter).
func NewGDFARunner(header *PublicHeader, rows *RowStore, oracle PadOracle) *GDFARunner {
	return &GDFARunner{Header: header, Rows: rows, Oracle: oracle}
}

// Run evaluates input, stopping early once stopOnFirstAttack is true and an
// accepting (non-zero attack_id) transition has been taken.
func (r *GDFARunner) Run(input []byte, stopOnFirstAttack bool) (EvalResult, error) {
	res := EvalResult{FinalRow: r.Header.StartRow, FirstAttackID: -1}
	row := r.Header.StartRow

	for _, x := range input {
		cell, err := r.Rows.Row(row)
		if err != nil {
			res.FinalRow = row
			return res, err
		}
		ns, aid, err := r.Oracle.DeriveForRow(row, cell, x)
		if err == ErrNoTransition {
			res.FinalRow = row
			return res, zidserr.InvalidTokenf("gdfa: no (column, key) pair validated for row %d symbol %d", row, x)
		}
		if err != nil {
			res.FinalRow = row
			return res, err
		}
		row = ns
		res.Steps++
		res.LastAttackID = aid
		if aid != 0 {
			if res.FirstAttackID == -1 {
				res.FirstAttackID = aid
			}
			if stopOnFirstAttack {
				res.FinalRow = row
				return res, nil
			}
		}
	}

	res.FinalRow = row
	return res, nil
}
