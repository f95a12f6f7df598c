package compaction

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/rverma-dev/datefile/internal/codec"
	"github.com/rverma-dev/datefile/internal/eventindex"
	"github.com/rverma-dev/datefile/internal/search"
)

func newDatefile(t *testing.T) (string, *os.File, codec.Header) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datefile")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
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
	return path, f, h
}

func TestRunPreservesSearchResultsAndShrinksFile(t *testing.T) {
	path, f, h := newDatefile(t)

	a, err := eventindex.Add(f, h, 1, 10, "a")
	if err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if _, err := eventindex.Add(f, h, 5, 15, "b"); err != nil {
		t.Fatalf("Add b: %v", err)
	}
	c, err := eventindex.Add(f, h, 20, 30, "c")
	if err != nil {
		t.Fatalf("Add c: %v", err)
	}

	if err := eventindex.Remove(f, c.Offset); err != nil {
		t.Fatalf("Remove c: %v", err)
	}

	statBefore, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	sizeBefore := statBefore.Size()

	if err := f.Close(); err != nil {
		t.Fatalf("Close before defrag: %v", err)
	}

	log := zap.NewNop().Sugar()
	if err := Run(path, "defrag", log); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reopened, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	statAfter, err := reopened.Stat()
	if err != nil {
		t.Fatalf("Stat after: %v", err)
	}
	if statAfter.Size() >= sizeBefore {
		t.Errorf("defragged file size %d should be smaller than pre-defrag size %d", statAfter.Size(), sizeBefore)
	}

	newHeader, err := codec.ReadHeader(reopened)
	if err != nil {
		t.Fatalf("ReadHeader after defrag: %v", err)
	}

	got, err := search.Search(reopened, newHeader, 0, 1000, 16)
	if err != nil {
		t.Fatalf("Search after defrag: %v", err)
	}
	gotNames := map[string]bool{}
	for _, e := range got {
		gotNames[e.Name] = true
	}
	if len(got) != 2 || !gotNames["a"] || !gotNames["b"] {
		t.Fatalf("Search after defrag = %+v, want {a,b}", got)
	}

	_ = a
}

func TestRunOnEmptyFileIsNoop(t *testing.T) {
	path, f, _ := newDatefile(t)
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	log := zap.NewNop().Sugar()
	if err := Run(path, "defrag", log); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reopened, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	h, err := codec.ReadHeader(reopened)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	got, err := search.Search(reopened, h, 0, 1000, 16)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty search after defragging an empty file, got %+v", got)
	}
}
