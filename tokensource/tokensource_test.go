package tokensource

import (
	"testing"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/ot1ofm"
)

type fakeSource struct {
	calls int
	fixed map[int][]byte // rowID -> fixed-length blob independent of x, for call-counting tests
}

func (f *fakeSource) GetToken(rowID int, x byte) ([]byte, error) {
	f.calls++
	return f.fixed[rowID], nil
}

func TestBuilderCachesAndCountsHits(t *testing.T) {
	src := &fakeSource{fixed: map[int][]byte{0: make([]byte, 32)}}
	b, err := NewBuilder(src, 0, 32)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := b.GetToken(0, 0x42); err != nil {
			t.Fatalf("GetToken: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1 (4 should have hit cache)", src.calls)
	}
	stats := b.Stats()
	if stats.Requests != 5 || stats.Hits != 4 {
		t.Fatalf("stats = %+v, want requests=5 hits=4", stats)
	}

	if _, err := b.GetToken(0, 0x43); err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("distinct (row,x) must miss cache: source called %d times, want 2", src.calls)
	}
}

// TestTokenLengthEnforcement is the literal Scenario E property: tokens of
// 31 or 33 bytes are rejected with LengthMismatch; exactly 32 bytes proceeds.
func TestTokenLengthEnforcement(t *testing.T) {
	for _, n := range []int{31, 33} {
		src := &fakeSource{fixed: map[int][]byte{0: make([]byte, n)}}
		b, err := NewBuilder(src, 0, 32)
		if err != nil {
			t.Fatalf("NewBuilder: %v", err)
		}
		if _, err := b.GetToken(0, 0); err == nil {
			t.Fatalf("token of %d bytes should have been rejected", n)
		}
	}

	src := &fakeSource{fixed: map[int][]byte{0: make([]byte, 32)}}
	b, err := NewBuilder(src, 0, 32)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := b.GetToken(0, 0); err != nil {
		t.Fatalf("32-byte token should be accepted: %v", err)
	}
}

type staticTableProvider struct {
	table *ot1ofm.Table256
}

func (p *staticTableProvider) RowTable(rowID int) (*ot1ofm.Table256, error) {
	return p.table, nil
}

func TestInProcessSourceRealOT(t *testing.T) {
	group := ddhgroup.DefaultGroup()
	label := []byte("tokensource-test")

	entries := make([][]byte, 256)
	for i := range entries {
		entries[i] = make([]byte, 16)
		entries[i][0] = byte(i)
	}
	table, err := ot1ofm.NewTable256(group, entries, gdfa.RowOTLabel(label, 3), nil)
	if err != nil {
		t.Fatalf("NewTable256: %v", err)
	}

	src := NewInProcessSource(group, label, &staticTableProvider{table: table})
	b, err := NewBuilder(src, 0, 16)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	got, err := b.GetToken(3, 0x2A)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if got[0] != 0x2A {
		t.Fatalf("got entry[0] = %d, want %d", got[0], 0x2A)
	}
}

func TestBatchGetTokensPreservesOrder(t *testing.T) {
	group := ddhgroup.DefaultGroup()
	label := []byte("tokensource-batch-test")
	entries := make([][]byte, 256)
	for i := range entries {
		entries[i] = make([]byte, 8)
		entries[i][0] = byte(i)
	}
	table, err := ot1ofm.NewTable256(group, entries, gdfa.RowOTLabel(label, 0), nil)
	if err != nil {
		t.Fatalf("NewTable256: %v", err)
	}
	src := NewInProcessSource(group, label, &staticTableProvider{table: table})
	b, err := NewBuilder(src, 0, 8)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	xs := []byte{5, 200, 5, 1}
	toks, err := b.BatchGetTokens(0, xs)
	if err != nil {
		t.Fatalf("BatchGetTokens: %v", err)
	}
	for i, x := range xs {
		if toks[i][0] != x {
			t.Fatalf("token[%d][0] = %d, want %d", i, toks[i][0], x)
		}
	}
}
