package gdfa

import (
	"testing"

	"github.com/SJieNg123/zids/encode"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/zidscrypto"
)

// TestScenarioAOfflineEndToEnd is the literal offline fixture: 4 states,
// start=0, accepting={2:7}, rows=[[(0,1,0),(1,2,0)], [(2,2,7)], [(0,3,0)],
// []], outmax=3, cmax=2, aid_bits=16, k_bits=kprime_bits=128. Every cell —
// including the dummy cells padded on to rows with fewer than outmax real
// edges — must decrypt to (ns=inv_perm[edge.next_state], aid=edge.attack_id).
func TestScenarioAOfflineEndToEnd(t *testing.T) {
	a := &odfa.ODFA{
		NumStates:  4,
		StartState: 0,
		Accepting:  map[int]int{2: 7},
		Rows: []odfa.Row{
			{Edges: []odfa.Edge{{GroupID: 0, NextState: 1, AttackID: 0}, {GroupID: 1, NextState: 2, AttackID: 0}}},
			{Edges: []odfa.Edge{{GroupID: 2, NextState: 2, AttackID: 7}}},
			{Edges: []odfa.Edge{{GroupID: 0, NextState: 3, AttackID: 0}}},
			{Edges: nil},
		},
	}
	sec := odfa.SecurityParams{KBits: 128, KPrimeBits: 128, Kappa: 128, AlphabetSize: 256}
	sp := odfa.SparsityParams{Outmax: 3, Cmax: 2}

	header, rows, _, secrets, err := BuildGDFA(a, sec, sp, BuildOptions{AIDBits: 16})
	if err != nil {
		t.Fatalf("BuildGDFA: %v", err)
	}
	pack, err := odfa.MakePacking(sec, sp)
	if err != nil {
		t.Fatalf("MakePacking: %v", err)
	}
	cellFmt := odfa.CellFormat{NSBits: header.NSBits(), AIDBits: header.AIDBits, PadBits: header.PadBits()}

	for newRow := 0; newRow < a.NumStates; newRow++ {
		oldState := header.Permutation[newRow]
		paddedEdges := a.Rows[oldState].PadToOutmax(sp.Outmax)
		for c, edge := range paddedEdges {
			seed := secrets.PadSeeds[newRow][c]
			cellLo, cellHi := c*header.CellBytes, (c+1)*header.CellBytes
			ns, aid, padOK := decryptCellForTest(rows[newRow][cellLo:cellHi], seed, pack, cellFmt)
			if !padOK {
				t.Fatalf("row %d col %d: pad bits not zero", newRow, c)
			}
			wantNS := secrets.InversePermutation[edge.NextState]
			if ns != wantNS || aid != edge.AttackID {
				t.Fatalf("row %d col %d: got (ns=%d,aid=%d), want (ns=%d,aid=%d)", newRow, c, ns, aid, wantNS, edge.AttackID)
			}
			if edge.IsDummy() && (ns != secrets.InversePermutation[0] || aid != 0) {
				t.Fatalf("row %d col %d: dummy cell decoded to (ns=%d,aid=%d), want (ns=%d,aid=0)", newRow, c, ns, aid, secrets.InversePermutation[0])
			}
		}
	}
}

// deterministicOracle implements PadOracle directly from known per-cell
// seeds, bypassing OT entirely — the "deterministic oracle col = x mod
// outmax" of the online-evaluation scenario.
type deterministicOracle struct {
	outmax    int
	cellBytes int
	pack      odfa.PackingParams
	cellFmt   odfa.CellFormat
	seeds     [][][]byte // seeds[row][col]
}

func (o *deterministicOracle) DeriveForRow(rowID int, row []byte, x byte) (int, int, error) {
	c := int(x) % o.outmax
	seed := o.seeds[rowID][c]
	pad := zidscrypto.GBits(seed, o.pack.GDFACellPadBits, []byte("PRG|GDFA|cell"))
	cellLo, cellHi := c*o.cellBytes, (c+1)*o.cellBytes
	plaintext := encode.XorBytes(row[cellLo:cellHi], pad)
	ns, aid, padOK := unpackCell(plaintext, o.cellFmt.NSBits, o.cellFmt.AIDBits, o.cellFmt.PadBits)
	if !padOK {
		return 0, 0, ErrNoTransition
	}
	return ns, aid, nil
}

// TestScenarioBOnlineSynthetic is the literal online-evaluation fixture:
// num_states=4, outmax=2, cmax=2, aid_bits=8, cell_bits=64, identity
// permutation, start_row=0. Column 0 sends r -> (r+1) mod 4; column 1 is a
// self-loop; row 2 column 0 carries attack_id=9.
func TestScenarioBOnlineSynthetic(t *testing.T) {
	const numStates = 4
	const outmax = 2
	const kPrimeBits = 32 // cell_bits(64) / outmax(2), so gdfa_cell_pad_bits == cell_bits
	pack := odfa.PackingParams{
		Sec:             odfa.SecurityParams{KBits: 128, KPrimeBits: kPrimeBits, Kappa: 128, AlphabetSize: 256},
		Sparsity:        odfa.SparsityParams{Outmax: outmax, Cmax: 2},
		OT256EntryLen:   2 * (kPrimeBits / 8),
		GDFACellPadBits: outmax * kPrimeBits, // == 64 == cell_bits
	}
	cellFmt, err := odfa.PlanCellFormat(numStates, pack, 8)
	if err != nil {
		t.Fatalf("PlanCellFormat: %v", err)
	}
	cellBytes := cellFmt.TotalBytes()
	if cellBytes != 8 {
		t.Fatalf("cell_bytes = %d, want 8 (cell_bits=64)", cellBytes)
	}

	seeds := make([][][]byte, numStates)
	rows := make([][]byte, numStates)
	for r := 0; r < numStates; r++ {
		seeds[r] = make([][]byte, outmax)
		rowBuf := make([]byte, 0, outmax*cellBytes)
		for c := 0; c < outmax; c++ {
			ns := r
			aid := 0
			if c == 0 {
				ns = (r + 1) % numStates
				if r == 2 {
					aid = 9
				}
			}
			seed := []byte{byte(r), byte(c), 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
			seeds[r][c] = seed
			pt := packCell(ns, aid, cellFmt.NSBits, cellFmt.AIDBits, cellFmt.PadBits, cellBytes)
			pad := zidscrypto.GBits(seed, pack.GDFACellPadBits, []byte("PRG|GDFA|cell"))
			rowBuf = append(rowBuf, encode.XorBytes(pt, pad)...)
		}
		rows[r] = rowBuf
	}

	header := &PublicHeader{
		AlphabetSize: 256,
		Outmax:       outmax,
		Cmax:         2,
		NumStates:    numStates,
		StartRow:     0,
		Permutation:  []int{0, 1, 2, 3},
		CellBytes:    cellBytes,
		RowBytes:     outmax * cellBytes,
		AIDBits:      8,
	}
	rowStore, err := NewRowStore(header.RowBytes, rows)
	if err != nil {
		t.Fatalf("NewRowStore: %v", err)
	}
	oracle := &deterministicOracle{outmax: outmax, cellBytes: cellBytes, pack: pack, cellFmt: cellFmt, seeds: seeds}
	runner := NewGDFARunner(header, rowStore, oracle)

	res, err := runner.Run([]byte{0x00, 0x00, 0x00, 0x00}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Steps != 3 || res.FirstAttackID != 9 {
		t.Fatalf("got (steps=%d, first_attack_id=%d), want (3, 9)", res.Steps, res.FirstAttackID)
	}

	res2, err := runner.Run([]byte{0x00, 0x01, 0x00, 0x01}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res2.Steps != 4 || res2.LastAttackID != 0 || res2.FinalRow != 2 {
		t.Fatalf("got (steps=%d, last_attack_id=%d, final_row=%d), want (4, 0, 2)", res2.Steps, res2.LastAttackID, res2.FinalRow)
	}
}
