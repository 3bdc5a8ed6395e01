package gdfa

import (
	"crypto/rand"
	"fmt"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/ot1ofm"
	"github.com/SJieNg123/zids/zidserr"
)

// BuildRowOTPlan assembles the server-side 1-of-256 OT table for one row:
// entry x concatenates GK[row][c] for every column c the symbol x belongs
// to (per alpha.SymToCols[x], in increasing column order), then pads with
// fresh random kprime_bytes blocks up to cmax total. gk must hold
// pack.Sparsity.Outmax entries, one group key per column (nil entries are
// never read for symbols that don't reference that column).
func BuildRowOTPlan(group *ddhgroup.Group, rowID int, gk [][]byte, alpha odfa.RowAlphabet, pack odfa.PackingParams, label []byte) (*ot1ofm.Table256, error) {
	return BuildRowOTPlanWithSID(group, rowID, gk, alpha, pack, label, nil)
}

// BuildRowOTPlanWithSID is BuildRowOTPlan with an explicit per-session OT
// sid salt: a server juggling several concurrent client sessions against
// the same frozen GK matrix must give each session's table its own sid so
// their OT pads don't collide.
func BuildRowOTPlanWithSID(group *ddhgroup.Group, rowID int, gk [][]byte, alpha odfa.RowAlphabet, pack odfa.PackingParams, label, sid []byte) (*ot1ofm.Table256, error) {
	if alpha.AlphabetSize != 256 {
		return nil, zidserr.InvalidParameterf("gdfa: OT256 row plan requires alphabet_size 256, got %d", alpha.AlphabetSize)
	}
	if len(gk) != pack.Sparsity.Outmax {
		return nil, zidserr.LengthMismatchf("gdfa: row %d has %d group keys, expected outmax %d", rowID, len(gk), pack.Sparsity.Outmax)
	}
	kPrimeBytes := pack.Sec.KPrimeBytes()
	entryLen := pack.OT256EntryLen

	table := make([][]byte, 256)
	for x := 0; x < 256; x++ {
		cols := alpha.SymToCols[x]
		buf := make([]byte, 0, entryLen)
		for _, c := range cols {
			if c < 0 || c >= len(gk) {
				return nil, zidserr.OutOfRangef("gdfa: row %d symbol %d references out-of-range column %d", rowID, x, c)
			}
			if len(gk[c]) != kPrimeBytes {
				return nil, zidserr.LengthMismatchf("gdfa: row %d column %d group key has length %d, expected %d", rowID, c, len(gk[c]), kPrimeBytes)
			}
			buf = append(buf, gk[c]...)
		}
		for len(buf) < entryLen {
			filler := make([]byte, kPrimeBytes)
			if _, err := rand.Read(filler); err != nil {
				return nil, fmt.Errorf("gdfa: sample OT256 filler: %w", err)
			}
			buf = append(buf, filler...)
		}
		table[x] = buf
	}

	return ot1ofm.NewTable256(group, table, RowOTLabel(label, rowID), sid)
}

// RowOTLabel derives the per-row domain-separation label used for a row's
// OT256 table: base + "|row=" + the row id as 4 big-endian bytes. A chooser
// must use the identical label when querying that row's table, or pad
// reconstruction silently produces garbage.
func RowOTLabel(base []byte, rowID int) []byte {
	label := append(append([]byte(nil), base...), []byte("|row=")...)
	return append(label, byte(rowID>>24), byte(rowID>>16), byte(rowID>>8), byte(rowID))
}
