package ddhgroup

import (
	"bytes"
	"math/big"
	"testing"
)

func TestBaseOTRecoversChosenMessageOnly(t *testing.T) {
	group := DefaultGroup()
	m0 := []byte("message-zero-16b")
	m1 := []byte("message-one--16b")

	for _, choice := range []int{0, 1} {
		sender, err := NewBaseOTSender(group)
		if err != nil {
			t.Fatalf("NewBaseOTSender: %v", err)
		}
		receiver, err := NewBaseOTReceiver(group, choice)
		if err != nil {
			t.Fatalf("NewBaseOTReceiver: %v", err)
		}

		b := receiver.GenerateB(sender.PublicKey())
		c0, c1, err := sender.Respond(b, m0, m1)
		if err != nil {
			t.Fatalf("Respond: %v", err)
		}
		got, err := receiver.Recover(c0, c1)
		if err != nil {
			t.Fatalf("Recover: %v", err)
		}

		want := m0
		other := m1
		if choice == 1 {
			want, other = m1, m0
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("choice=%d: recovered %q, want %q", choice, got, want)
		}
		if bytes.Equal(got, other) {
			t.Fatalf("choice=%d: recovered the unchosen message", choice)
		}
	}
}

func TestBaseOTRejectsUnequalLengthMessages(t *testing.T) {
	group := DefaultGroup()
	sender, err := NewBaseOTSender(group)
	if err != nil {
		t.Fatalf("NewBaseOTSender: %v", err)
	}
	receiver, err := NewBaseOTReceiver(group, 0)
	if err != nil {
		t.Fatalf("NewBaseOTReceiver: %v", err)
	}
	b := receiver.GenerateB(sender.PublicKey())
	_, _, err = sender.Respond(b, []byte("short"), []byte("a-longer-message"))
	if err == nil {
		t.Fatal("expected LengthMismatch, got nil")
	}
}

func TestBaseOTRejectsBadPublicKey(t *testing.T) {
	group := DefaultGroup()
	sender, err := NewBaseOTSender(group)
	if err != nil {
		t.Fatalf("NewBaseOTSender: %v", err)
	}
	// 1 is never a generator of the prime-order subgroup (order 1, not q).
	_, _, err = sender.Respond(big.NewInt(1), []byte("msg0-16-bytes!!!"), []byte("msg1-16-bytes!!!"))
	if err == nil {
		t.Fatal("expected BadPublicKey for B=1, got nil")
	}
}
