package gdfa

import (
	"testing"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/ot1ofm"
	"github.com/SJieNg123/zids/zidserr"
)

// inProcessTokens answers GetToken by running the real 1-of-256 OT protocol
// in-process against a live Table256 per row, simulating a client that
// holds a direct (non-HTTP) connection to the server's OT responder.
type inProcessTokens struct {
	group *ddhgroup.Group
	label []byte
	rows  map[int]*ot1ofm.Table256
}

func (t *inProcessTokens) GetToken(rowID int, x byte) ([]byte, error) {
	table := t.rows[rowID]
	chooser := ot1ofm.NewChooser256(t.group, RowOTLabel(t.label, rowID), table)
	return chooser.Choose(int(x))
}

func TestGDFARunnerOnlineOT(t *testing.T) {
	a := buildFourStateODFA()
	sec := odfa.DefaultSecurityParams()
	sp := odfa.SparsityParams{Outmax: 2, Cmax: 2}

	header, rows, alphas, secrets, err := BuildGDFA(a, sec, sp, BuildOptions{
		PadSeedFunc: GKBoundPadSeedFunc(sec.KPrimeBytes()),
	})
	if err != nil {
		t.Fatalf("BuildGDFA: %v", err)
	}
	rowStore, err := NewRowStore(header.RowBytes, rows)
	if err != nil {
		t.Fatalf("NewRowStore: %v", err)
	}

	pack, err := odfa.MakePacking(sec, sp)
	if err != nil {
		t.Fatalf("MakePacking: %v", err)
	}

	group := ddhgroup.DefaultGroup()
	label := []byte("test-gdfa-ot")
	tokens := &inProcessTokens{group: group, label: label, rows: make(map[int]*ot1ofm.Table256)}
	for row := 0; row < header.NumStates; row++ {
		table, err := BuildRowOTPlan(group, row, secrets.GK[row], alphas[row], pack, label)
		if err != nil {
			t.Fatalf("BuildRowOTPlan(%d): %v", row, err)
		}
		tokens.rows[row] = table
	}

	oracle := NewOTPadOracleFromHeader(header, tokens, pack)
	runner := NewGDFARunner(header, rowStore, oracle)

	// Drive the automaton 0 -(col0)-> 1 -(col0, self row's single edge)-> 2
	// (accepting, attack_id 7) -(col0)-> 3 (dead end). Column 0 is the
	// only column each row's fixture Alpha maps symbol 0 to.
	res, err := runner.Run([]byte{0, 0, 0}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Steps != 3 {
		t.Fatalf("steps = %d, want 3", res.Steps)
	}
	if res.FirstAttackID != 7 || res.LastAttackID != 0 {
		t.Fatalf("attack ids = (first=%d,last=%d), want (first=7,last=0)", res.FirstAttackID, res.LastAttackID)
	}

	// A fourth step from the dead-end state 3 (no out-edges, and its fixture
	// Alpha maps symbol 0 to no column) must abort with InvalidToken: no
	// (column, key) pair in the OT token decrypts validly.
	res2, err := runner.Run([]byte{0, 0, 0, 0}, false)
	if _, ok := err.(*zidserr.InvalidTokenError); !ok {
		t.Fatalf("Run (extended): got err=%v, want *zidserr.InvalidTokenError", err)
	}
	if res2.Steps != 3 {
		t.Fatalf("partial steps = %d, want 3", res2.Steps)
	}
}

func TestGDFARunnerStopOnFirstAttack(t *testing.T) {
	a := buildFourStateODFA()
	sec := odfa.DefaultSecurityParams()
	sp := odfa.SparsityParams{Outmax: 2, Cmax: 2}

	header, rows, alphas, secrets, err := BuildGDFA(a, sec, sp, BuildOptions{
		PadSeedFunc: GKBoundPadSeedFunc(sec.KPrimeBytes()),
	})
	if err != nil {
		t.Fatalf("BuildGDFA: %v", err)
	}
	rowStore, err := NewRowStore(header.RowBytes, rows)
	if err != nil {
		t.Fatalf("NewRowStore: %v", err)
	}
	pack, err := odfa.MakePacking(sec, sp)
	if err != nil {
		t.Fatalf("MakePacking: %v", err)
	}
	group := ddhgroup.DefaultGroup()
	label := []byte("test-gdfa-ot-stop")
	tokens := &inProcessTokens{group: group, label: label, rows: make(map[int]*ot1ofm.Table256)}
	for row := 0; row < header.NumStates; row++ {
		table, err := BuildRowOTPlan(group, row, secrets.GK[row], alphas[row], pack, label)
		if err != nil {
			t.Fatalf("BuildRowOTPlan(%d): %v", row, err)
		}
		tokens.rows[row] = table
	}
	oracle := NewOTPadOracleFromHeader(header, tokens, pack)
	runner := NewGDFARunner(header, rowStore, oracle)

	res, err := runner.Run([]byte{0, 0, 0, 0, 0}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Steps != 2 {
		t.Fatalf("steps = %d, want 2 (stopped at first accepting transition)", res.Steps)
	}
	if res.FirstAttackID != 7 {
		t.Fatalf("first_attack_id = %d, want 7", res.FirstAttackID)
	}
}
