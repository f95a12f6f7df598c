// Package compaction implements spec §4.8: a type-aware copying collector
// that rebuilds a datefile from its header, visiting every reachable
// record exactly once and rewriting pointer fields to the fresh image's
// offsets via a typed, per-record-kind src-offset-to-dst-offset map.
package compaction

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rverma-dev/datefile/internal/codec"
	"github.com/rverma-dev/datefile/pkg/filesys"
)

// copier holds the three typed visited-maps the collector needs. Keeping
// one map per record kind (rather than one map keyed by a (kind, offset)
// pair) is what spec §9's memoization note asks for: it makes the
// recursive copy functions below homogeneous, and a numeric offset from one
// record kind can never collide with another kind's map by construction.
type copier struct {
	nodeMap map[uint64]uint64
	ptrMap  map[uint64]uint64
	dataMap map[uint64]uint64
}

func newCopier() *copier {
	return &copier{
		nodeMap: make(map[uint64]uint64),
		ptrMap:  make(map[uint64]uint64),
		dataMap: make(map[uint64]uint64),
	}
}

// copyHeader is the collector's entry point: copy[Header](0, in, out).
func (c *copier) copyHeader(in, out *os.File) error {
	header, err := codec.ReadHeader(in)
	if err != nil {
		return err
	}

	if _, err := codec.WriteHeader(out, 0, header.Bitn); err != nil {
		return err
	}

	dstRoot, err := c.copyNode(in, out, header.Bit1)
	if err != nil {
		return err
	}

	outHeader, err := codec.ReadHeader(out)
	if err != nil {
		return err
	}
	return codec.PatchBit1(out, outHeader, dstRoot)
}

// copyNode is copy[Node]: it appends a fresh node, recurses into both
// children and the bucket head, and patches pointer fields once each
// target's destination offset is known.
func (c *copier) copyNode(in, out *os.File, src uint64) (uint64, error) {
	if src == 0 {
		return 0, nil
	}
	if dst, ok := c.nodeMap[src]; ok {
		return dst, nil
	}

	node, err := codec.ReadNode(in, int64(src))
	if err != nil {
		return 0, err
	}

	newNode, err := codec.AppendNode(out, 0, 0, 0)
	if err != nil {
		return 0, err
	}
	c.nodeMap[src] = uint64(newNode.Offset)

	dstChild0, err := c.copyNode(in, out, node.Child0)
	if err != nil {
		return 0, err
	}
	if dstChild0 != 0 {
		if err := codec.PatchChild(out, newNode, 0, dstChild0); err != nil {
			return 0, err
		}
	}

	dstChild1, err := c.copyNode(in, out, node.Child1)
	if err != nil {
		return 0, err
	}
	if dstChild1 != 0 {
		if err := codec.PatchChild(out, newNode, 1, dstChild1); err != nil {
			return 0, err
		}
	}

	dstEvent, err := c.copyEventPointer(in, out, node.Event)
	if err != nil {
		return 0, err
	}
	if dstEvent != 0 {
		if err := codec.PatchNodeEvent(out, newNode, dstEvent); err != nil {
			return 0, err
		}
		// The bucket head's back-pointer addresses the slot that points at
		// it, not a record identity (spec §9). That slot is this node's
		// Event field, whose destination offset only becomes known here.
		headPtr, err := codec.ReadEventPointer(out, int64(dstEvent))
		if err != nil {
			return 0, err
		}
		if err := codec.PatchSlot(out, headPtr.PrevOffset, uint64(newNode.EventOffset)); err != nil {
			return 0, err
		}
	}

	return uint64(newNode.Offset), nil
}

// copyEventPointer is copy[EventPointer]. It never copies the source
// record's Prev field directly — Prev is reconstructed from the forward
// link that is established here (either a node's Event field or a
// predecessor pointer's Next field), exactly mirroring how eventindex.Add
// sets it in the first place.
func (c *copier) copyEventPointer(in, out *os.File, src uint64) (uint64, error) {
	if src == 0 {
		return 0, nil
	}
	if dst, ok := c.ptrMap[src]; ok {
		return dst, nil
	}

	ptr, err := codec.ReadEventPointer(in, int64(src))
	if err != nil {
		return 0, err
	}

	newPtr, err := codec.AppendEventPointer(out, 0, 0, 0, 0)
	if err != nil {
		return 0, err
	}
	c.ptrMap[src] = uint64(newPtr.Offset)

	dstNext, err := c.copyEventPointer(in, out, ptr.Next)
	if err != nil {
		return 0, err
	}
	if dstNext != 0 {
		if err := codec.PatchSlot(out, newPtr.NextOffset, dstNext); err != nil {
			return 0, err
		}
		successor, err := codec.ReadEventPointer(out, int64(dstNext))
		if err != nil {
			return 0, err
		}
		if err := codec.PatchSlot(out, successor.PrevOffset, uint64(newPtr.NextOffset)); err != nil {
			return 0, err
		}
	}

	dstNextsm, err := c.copyEventPointer(in, out, ptr.Nextsm)
	if err != nil {
		return 0, err
	}
	if dstNextsm != 0 {
		if err := codec.PatchSlot(out, newPtr.NextsmOffset, dstNextsm); err != nil {
			return 0, err
		}
	}

	dstData, err := c.copyEventData(in, out, ptr.Ptr)
	if err != nil {
		return 0, err
	}
	if dstData != 0 {
		if err := codec.PatchSlot(out, newPtr.PtrOffset, dstData); err != nil {
			return 0, err
		}
	}

	return uint64(newPtr.Offset), nil
}

// copyEventData is copy[EventData].
func (c *copier) copyEventData(in, out *os.File, src uint64) (uint64, error) {
	if src == 0 {
		return 0, nil
	}
	if dst, ok := c.dataMap[src]; ok {
		return dst, nil
	}

	data, err := codec.ReadEventData(in, int64(src))
	if err != nil {
		return 0, err
	}

	newData, err := codec.AppendEventData(out, data.Start, data.End, data.Name)
	if err != nil {
		return 0, err
	}
	c.dataMap[src] = uint64(newData.Offset)

	dstFirstev, err := c.copyEventPointer(in, out, data.Firstev)
	if err != nil {
		return 0, err
	}
	if dstFirstev != 0 {
		if err := codec.PatchFirstev(out, newData, dstFirstev); err != nil {
			return 0, err
		}
	}

	return uint64(newData.Offset), nil
}

// Run rebuilds the datefile at path into a fresh sibling file and
// atomically replaces the original with it. The sibling is named with a
// random uuid suffix (rather than a fixed name derived from tempPattern
// alone) so two defrag attempts against the same path — say, one left
// behind by a crash mid-defrag — never collide on the same working file.
func Run(path, tempPattern string, log *zap.SugaredLogger) error {
	in, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer in.Close()

	tmpPath := path + "." + tempPattern + "-" + uuid.NewString() + ".tmp"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	log.Infow("defrag starting", "path", path, "tempPath", tmpPath)

	c := newCopier()
	if err := c.copyHeader(in, out); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	beforeSize, _ := in.Seek(0, io.SeekEnd)
	if err := filesys.Rename(tmpPath, path); err != nil {
		return err
	}

	log.Infow("defrag complete", "path", path, "nodesCopied", len(c.nodeMap),
		"pointersCopied", len(c.ptrMap), "eventsCopied", len(c.dataMap), "beforeSize", beforeSize)

	return nil
}
