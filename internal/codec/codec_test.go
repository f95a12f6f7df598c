package codec

import (
	"os"
	"testing"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "datefile-codec-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHeaderWriteRead(t *testing.T) {
	f := tempFile(t)

	written, err := WriteHeader(f, 0, 64)
	if err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	if err := PatchBit1(f, written, 33); err != nil {
		t.Fatalf("PatchBit1: %v", err)
	}

	got, err := ReadHeader(f)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.Bit1 != 33 {
		t.Errorf("Bit1 = %d, want 33", got.Bit1)
	}
	if got.Bitn != 64 {
		t.Errorf("Bitn = %d, want 64", got.Bitn)
	}
}

func TestHeaderBadMagic(t *testing.T) {
	f := tempFile(t)
	if _, err := f.Write([]byte("notadate" + string(make([]byte, 25)))); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	if _, err := ReadHeader(f); err == nil {
		t.Fatal("expected magic mismatch error, got nil")
	}
}

func TestHeaderPrecisionOverflow(t *testing.T) {
	f := tempFile(t)
	if _, err := WriteHeader(f, 33, 65); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := ReadHeader(f); err == nil {
		t.Fatal("expected precision overflow error, got nil")
	}
}

func TestNodeAppendReadAndPatch(t *testing.T) {
	f := tempFile(t)

	n, err := AppendNode(f, 0, 0, 0)
	if err != nil {
		t.Fatalf("AppendNode: %v", err)
	}

	if err := PatchChild(f, n, 0, 999); err != nil {
		t.Fatalf("PatchChild: %v", err)
	}
	if err := PatchChild(f, n, 1, 1001); err != nil {
		t.Fatalf("PatchChild: %v", err)
	}
	if err := PatchNodeEvent(f, n, 42); err != nil {
		t.Fatalf("PatchNodeEvent: %v", err)
	}

	got, err := ReadNode(f, n.Offset)
	if err != nil {
		t.Fatalf("ReadNode: %v", err)
	}
	if got.Child0 != 999 || got.Child1 != 1001 || got.Event != 42 {
		t.Errorf("ReadNode = %+v, want Child0=999 Child1=1001 Event=42", got)
	}
}

func TestEventPointerAppendReadAndPatchSlot(t *testing.T) {
	f := tempFile(t)

	ep, err := AppendEventPointer(f, 0, 7, 0, 123)
	if err != nil {
		t.Fatalf("AppendEventPointer: %v", err)
	}

	if err := PatchSlot(f, ep.NextOffset, 555); err != nil {
		t.Fatalf("PatchSlot: %v", err)
	}

	got, err := ReadEventPointer(f, ep.Offset)
	if err != nil {
		t.Fatalf("ReadEventPointer: %v", err)
	}
	if got.Next != 555 {
		t.Errorf("Next = %d, want 555", got.Next)
	}
	if got.Prev != 7 || got.Ptr != 123 {
		t.Errorf("ReadEventPointer = %+v, want Prev=7 Ptr=123", got)
	}
}

func TestEventDataRoundTripNegativeInstants(t *testing.T) {
	f := tempFile(t)

	d, err := AppendEventData(f, -5, 5, "Z")
	if err != nil {
		t.Fatalf("AppendEventData: %v", err)
	}

	if err := PatchFirstev(f, d, 77); err != nil {
		t.Fatalf("PatchFirstev: %v", err)
	}

	got, err := ReadEventData(f, d.Offset)
	if err != nil {
		t.Fatalf("ReadEventData: %v", err)
	}
	if got.Start != -5 || got.End != 5 {
		t.Errorf("Start/End = %d/%d, want -5/5", got.Start, got.End)
	}
	if got.Name != "Z" {
		t.Errorf("Name = %q, want %q", got.Name, "Z")
	}
	if got.Firstev != 77 {
		t.Errorf("Firstev = %d, want 77", got.Firstev)
	}
}

func TestEventDataEmptyName(t *testing.T) {
	f := tempFile(t)

	d, err := AppendEventData(f, 0, 0, "")
	if err != nil {
		t.Fatalf("AppendEventData: %v", err)
	}
	got, err := ReadEventData(f, d.Offset)
	if err != nil {
		t.Fatalf("ReadEventData: %v", err)
	}
	if got.Name != "" {
		t.Errorf("Name = %q, want empty", got.Name)
	}
}

func TestNameDigestStable(t *testing.T) {
	if NameDigest("same") != NameDigest("same") {
		t.Error("NameDigest should be deterministic for the same input")
	}
	if NameDigest("a") == NameDigest("b") {
		t.Error("NameDigest collided for distinct trivial inputs (possible but extremely unlikely)")
	}
}
