package encode

import (
	"math/big"
	"testing"
)

func TestI2OSPOS2IPRoundTrip(t *testing.T) {
	cases := []struct {
		x      uint64
		length int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{1 << 20, 4},
		{1<<32 - 1, 4},
	}
	for _, c := range cases {
		enc := I2OSP(c.x, c.length)
		if len(enc) != c.length {
			t.Fatalf("I2OSP(%d, %d) returned %d bytes", c.x, c.length, len(enc))
		}
		got := OS2IP(enc)
		if got != c.x {
			t.Fatalf("OS2IP(I2OSP(%d, %d)) = %d", c.x, c.length, got)
		}
	}
}

func TestI2OSPPanicsWhenValueDoesNotFit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected I2OSP to panic on overflow")
		}
	}()
	I2OSP(256, 1)
}

func TestXorBytesCorrectness(t *testing.T) {
	a := []byte{0x0f, 0xf0, 0xaa}
	b := []byte{0xff, 0x0f, 0x55}
	got := XorBytes(a, b)
	want := []byte{0xf0, 0xff, 0xff}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("XorBytes mismatch at %d: got %x, want %x", i, got[i], want[i])
		}
	}
}

func TestXorBytesPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected XorBytes to panic on length mismatch")
		}
	}()
	XorBytes([]byte{1, 2}, []byte{1})
}

func TestQByteLen(t *testing.T) {
	cases := []struct {
		q    *big.Int
		want int
	}{
		{big.NewInt(255), 1},
		{big.NewInt(256), 2},
		{big.NewInt(1 << 16), 3},
	}
	for _, c := range cases {
		if got := QByteLen(c.q); got != c.want {
			t.Fatalf("QByteLen(%v) = %d, want %d", c.q, got, c.want)
		}
	}
}
