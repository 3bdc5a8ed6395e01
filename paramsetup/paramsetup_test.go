package paramsetup

import (
	"testing"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/odfa"
)

func TestAcceptRoundTrip(t *testing.T) {
	group := ddhgroup.DefaultGroup()
	sec := odfa.DefaultSecurityParams()
	sp := odfa.SparsityParams{Outmax: 4, Cmax: 2}

	pp := Advertise(group, sec, sp)
	state, err := Accept(pp)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if state.Group.P.Cmp(group.P) != 0 || state.Group.G.Cmp(group.G) != 0 {
		t.Fatalf("group mismatch after round trip")
	}
	if state.Security != sec || state.Sparsity != sp {
		t.Fatalf("params mismatch after round trip")
	}
}

func TestAcceptRejectsBadGenerator(t *testing.T) {
	group := ddhgroup.DefaultGroup()
	sec := odfa.DefaultSecurityParams()
	sp := odfa.SparsityParams{Outmax: 4, Cmax: 2}
	pp := Advertise(group, sec, sp)
	pp.GHex = "2" // g=2 fails NewGroup's 2 < g < p-1 generator bound

	if _, err := Accept(pp); err == nil {
		t.Fatalf("expected bad-generator group to be rejected")
	}
}

func TestAcceptRejectsMalformedHex(t *testing.T) {
	group := ddhgroup.DefaultGroup()
	pp := Advertise(group, odfa.DefaultSecurityParams(), odfa.SparsityParams{Outmax: 1, Cmax: 1})
	pp.PHex = "not-hex"

	if _, err := Accept(pp); err == nil {
		t.Fatalf("expected malformed p_hex to be rejected")
	}
}

func TestAcceptRejectsInvalidSecurityParams(t *testing.T) {
	group := ddhgroup.DefaultGroup()
	pp := Advertise(group, odfa.SecurityParams{KBits: 0, KPrimeBits: 128, Kappa: 128, AlphabetSize: 256}, odfa.SparsityParams{Outmax: 1, Cmax: 1})

	if _, err := Accept(pp); err == nil {
		t.Fatalf("expected invalid security params to be rejected")
	}
}
