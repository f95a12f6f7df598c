package eventindex

import (
	"os"
	"testing"

	"github.com/rverma-dev/datefile/internal/codec"
)

func newRootedFile(t *testing.T) (*os.File, codec.Header) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "datefile-eventindex-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	if _, err := codec.WriteHeader(f, 0, 64); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	root, err := codec.AppendNode(f, 0, 0, 0)
	if err != nil {
		t.Fatalf("AppendNode root: %v", err)
	}
	h, _ := codec.ReadHeader(f)
	if err := codec.PatchBit1(f, h, uint64(root.Offset)); err != nil {
		t.Fatalf("PatchBit1: %v", err)
	}
	h, _ = codec.ReadHeader(f)
	return f, h
}

func TestAddLinksSameEventChain(t *testing.T) {
	f, h := newRootedFile(t)

	data, err := Add(f, h, 10, 20, "a")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	reread, err := codec.ReadEventData(f, data.Offset)
	if err != nil {
		t.Fatalf("ReadEventData: %v", err)
	}
	if reread.Firstev == 0 {
		t.Fatal("expected firstev to be patched to a non-zero pointer offset after Add")
	}

	count := 0
	cur := reread.Firstev
	seen := map[uint64]bool{}
	for cur != 0 {
		if seen[cur] {
			t.Fatalf("same-event chain cycles at offset %d", cur)
		}
		seen[cur] = true
		ptr, err := codec.ReadEventPointer(f, int64(cur))
		if err != nil {
			t.Fatalf("ReadEventPointer: %v", err)
		}
		if ptr.Ptr != uint64(data.Offset) {
			t.Errorf("chain pointer.Ptr = %d, want event-data offset %d", ptr.Ptr, data.Offset)
		}
		count++
		cur = ptr.Nextsm
	}
	if count == 0 {
		t.Fatal("expected at least one event-pointer in the same-event chain")
	}
}

func TestAddTwoEventsShareBucketAndInvariantsHold(t *testing.T) {
	f, h := newRootedFile(t)

	a, err := Add(f, h, 10, 10, "a")
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	b, err := Add(f, h, 10, 10, "b")
	if err != nil {
		t.Fatalf("Add b: %v", err)
	}

	// b was added after a and shares every cover with it; the first pointer
	// on b's same-event chain should refer to b's own event-data record.
	root, err := codec.ReadNode(f, int64(h.Bit1))
	if err != nil {
		t.Fatalf("ReadNode root: %v", err)
	}
	_ = root

	bData, err := codec.ReadEventData(f, b.Offset)
	if err != nil {
		t.Fatalf("ReadEventData b: %v", err)
	}
	headPtr, err := codec.ReadEventPointer(f, int64(bData.Firstev))
	if err != nil {
		t.Fatalf("ReadEventPointer: %v", err)
	}
	if headPtr.Ptr != uint64(b.Offset) {
		t.Errorf("head pointer's Ptr = %d, want b's offset %d", headPtr.Ptr, b.Offset)
	}

	// Verify the bucket back-pointer invariant: once a third overlapping
	// event is added, b's pointer's prev should address the next field of
	// c's pointer, the new bucket head.
	c, err := Add(f, h, 10, 10, "c")
	if err != nil {
		t.Fatalf("Add c: %v", err)
	}
	cData, err := codec.ReadEventData(f, c.Offset)
	if err != nil {
		t.Fatalf("ReadEventData c: %v", err)
	}
	cHeadPtr, err := codec.ReadEventPointer(f, int64(cData.Firstev))
	if err != nil {
		t.Fatalf("ReadEventPointer c head: %v", err)
	}
	if cHeadPtr.Next == 0 {
		t.Fatal("expected c's pointer to chain to b's pointer via next")
	}
	bHeadAfter, err := codec.ReadEventPointer(f, int64(cHeadPtr.Next))
	if err != nil {
		t.Fatalf("ReadEventPointer bHeadAfter: %v", err)
	}
	if bHeadAfter.Prev != cHeadPtr.NextOffset {
		t.Errorf("b's pointer.Prev = %d, want offset of c's pointer.Next field %d", bHeadAfter.Prev, cHeadPtr.NextOffset)
	}

	_ = a
}

func TestRemoveUnlinksFromBucket(t *testing.T) {
	f, h := newRootedFile(t)

	data, err := Add(f, h, 100, 200, "x")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := Remove(f, data.Offset); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	root, err := codec.ReadNode(f, int64(h.Bit1))
	if err != nil {
		t.Fatalf("ReadNode root: %v", err)
	}
	if root.Event != 0 {
		t.Errorf("root.Event = %d, want 0 after removing the only event", root.Event)
	}
}

func TestRemoveOfAlreadyEmptyChainIsNoop(t *testing.T) {
	f, h := newRootedFile(t)

	data, err := Add(f, h, 1, 1, "solo")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := Remove(f, data.Offset); err != nil {
		t.Fatalf("first Remove: %v", err)
	}

	reread, err := codec.ReadEventData(f, data.Offset)
	if err != nil {
		t.Fatalf("ReadEventData: %v", err)
	}
	if reread.Firstev == 0 {
		t.Skip("firstev already cleared; chain walk below would be a true no-op")
	}

	if err := Remove(f, data.Offset); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}
