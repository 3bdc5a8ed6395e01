package gdfa

import (
	"errors"

	"github.com/SJieNg123/zids/encode"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/zidscrypto"
	"github.com/SJieNg123/zids/zidserr"
)

// ErrNoTransition is returned by a PadOracle when no (column, key) pair
// decrypts validly for the given symbol in the given row. GDFARunner.Run
// converts this into a zidserr.InvalidTokenError and aborts the stream.
var ErrNoTransition = errors.New("gdfa: no transition for symbol in row")

// PadOracle resolves, for a streaming evaluator, the (next_state,
// attack_id) reached by reading symbol x from row rowID, given that row's
// ciphertext bytes.
type PadOracle interface {
	DeriveForRow(rowID int, row []byte, x byte) (ns, aid int, err error)
}

// TokenGetter fetches the OT256 table entry for (rowID, x) — the blob of
// cmax concatenated kprime_bytes group-key slots a client retrieves via OT
// (or, in the in-process/offline case, directly). Implementations include
// the token source's in-process chooser adapter and its HTTP client.
type TokenGetter interface {
	GetToken(rowID int, x byte) ([]byte, error)
}

// OTPadOracle is the online PadOracle: it pulls the OT256 entry for (row,
// x) via a TokenGetter, then tries every (column, candidate key) pair, in
// increasing column order and then increasing candidate-key order,
// accepting the first cell whose pad bits are all zero and whose decoded
// next-state is in range. Deliberately does not consult a RowAlphabet: the
// client must learn which column belongs to a symbol only by trial
// decryption, never by being handed the row's symbol-to-column partition,
// or the automaton's topology leaks outside the garbled row matrix.
type OTPadOracle struct {
	Tokens    TokenGetter
	Pack      odfa.PackingParams
	CellFmt   odfa.CellFormat
	CellBytes int
	NumStates int
}

// NewOTPadOracleFromHeader builds an OTPadOracle from a public header,
// reconstructing the cell format its NSBits/AIDBits/PadBits helpers
// describe.
func NewOTPadOracleFromHeader(h *PublicHeader, tokens TokenGetter, pack odfa.PackingParams) *OTPadOracle {
	return &OTPadOracle{
		Tokens:    tokens,
		Pack:      pack,
		CellFmt:   odfa.CellFormat{NSBits: h.NSBits(), AIDBits: h.AIDBits, PadBits: h.PadBits()},
		CellBytes: h.CellBytes,
		NumStates: h.NumStates,
	}
}

// DeriveForRow implements PadOracle.
func (o *OTPadOracle) DeriveForRow(rowID int, row []byte, x byte) (int, int, error) {
	blob, err := o.Tokens.GetToken(rowID, x)
	if err != nil {
		return 0, 0, err
	}
	kPrimeBytes := o.Pack.Sec.KPrimeBytes()
	kBytes := o.Pack.Sec.KBytes()
	wantLen := o.Pack.OT256EntryLen
	if len(blob) != wantLen {
		return 0, 0, zidserr.LengthMismatchf("gdfa: token for row %d symbol %d has length %d, expected %d", rowID, x, len(blob), wantLen)
	}
	numCandidates := len(blob) / kPrimeBytes

	for c := 0; c < o.Pack.Sparsity.Outmax; c++ {
		cellLo, cellHi := c*o.CellBytes, (c+1)*o.CellBytes
		if cellHi > len(row) {
			continue
		}
		for j := 0; j < numCandidates; j++ {
			gk := blob[j*kPrimeBytes : (j+1)*kPrimeBytes]
			seed := DeriveSeed(gk, rowID, c, kBytes)
			pad := zidscrypto.GBits(seed, o.Pack.GDFACellPadBits, []byte("PRG|GDFA|cell"))

			plaintext := encode.XorBytes(row[cellLo:cellHi], pad)
			ns, aid, padOK := unpackCell(plaintext, o.CellFmt.NSBits, o.CellFmt.AIDBits, o.CellFmt.PadBits)
			if !padOK {
				continue
			}
			if ns < 0 || ns >= o.NumStates {
				continue
			}
			return ns, aid, nil
		}
	}
	return 0, 0, ErrNoTransition
}
