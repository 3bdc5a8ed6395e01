package otext

import "testing"

func TestBatchRecvBytesSelectsChoice(t *testing.T) {
	ext, err := NewExtension(Config{})
	if err != nil {
		t.Fatalf("NewExtension: %v", err)
	}

	messages := [][2][]byte{
		{[]byte("aaaaaaaa"), []byte("bbbbbbbb")},
		{[]byte("cccccccc"), []byte("dddddddd")},
		{[]byte("eeeeeeee"), []byte("ffffffff")},
	}
	choices := []int{0, 1, 1}

	got, err := ext.BatchRecvBytes(messages, choices)
	if err != nil {
		t.Fatalf("BatchRecvBytes: %v", err)
	}
	want := []string{"aaaaaaaa", "dddddddd", "ffffffff"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("entry %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestBatchRecvIntsSelectsChoice(t *testing.T) {
	ext, err := NewExtension(Config{Backend: BackendDirect})
	if err != nil {
		t.Fatalf("NewExtension: %v", err)
	}
	messages := [][2]int{{10, 20}, {30, 40}}
	choices := []int{1, 0}
	got, err := ext.BatchRecvInts(messages, choices)
	if err != nil {
		t.Fatalf("BatchRecvInts: %v", err)
	}
	if got[0] != 20 || got[1] != 30 {
		t.Fatalf("got %v, want [20 30]", got)
	}
}

func TestBatchRecvBytesRejectsLengthMismatch(t *testing.T) {
	ext, err := NewExtension(Config{})
	if err != nil {
		t.Fatalf("NewExtension: %v", err)
	}
	if _, err := ext.BatchRecvBytes([][2][]byte{{[]byte("a"), []byte("b")}}, []int{0, 1}); err == nil {
		t.Fatalf("expected LengthMismatch for mismatched slice lengths")
	}
}

func TestUnsupportedBackendRejected(t *testing.T) {
	if _, err := NewExtension(Config{Backend: "iknp"}); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}
