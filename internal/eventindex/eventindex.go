// Package eventindex implements spec §4.5 (insertion) and §4.6 (removal):
// linking one event-data record into the bucket of every trie node named
// by the prefix enumerator's cover of an event's range, and unlinking every
// such link when the event is removed.
package eventindex

import (
	"os"

	"github.com/rverma-dev/datefile/internal/codec"
	"github.com/rverma-dev/datefile/internal/keyspace"
	"github.com/rverma-dev/datefile/internal/trie"
)

// Add appends an event-data record for [start, end] named name, links one
// event-pointer into the bucket at each trie node covering
// [su64(start), su64(end)], and threads all of those pointers onto the
// event's same-event chain. It returns the event-data record; its Offset
// field is the event's stable id.
func Add(f *os.File, header codec.Header, start, end int64, name string) (codec.EventData, error) {
	data, err := codec.AppendEventData(f, start, end, name)
	if err != nil {
		return codec.EventData{}, err
	}

	covers := keyspace.EnumerateCovers(keyspace.SU64(start), keyspace.SU64(end))

	chainTailPtr := data.FirstevOffset

	for _, cover := range covers {
		node, err := trie.WalkOrCreate(f, header, cover.Prefix, cover.Precision)
		if err != nil {
			return codec.EventData{}, err
		}

		oldHead := node.Event

		ptr, err := codec.AppendEventPointer(f, oldHead, uint64(node.EventOffset), 0, uint64(data.Offset))
		if err != nil {
			return codec.EventData{}, err
		}

		if oldHead != 0 {
			oldHeadRecord, err := codec.ReadEventPointer(f, int64(oldHead))
			if err != nil {
				return codec.EventData{}, err
			}
			if err := codec.PatchSlot(f, oldHeadRecord.PrevOffset, uint64(ptr.NextOffset)); err != nil {
				return codec.EventData{}, err
			}
		}

		if err := codec.PatchNodeEvent(f, node, uint64(ptr.Offset)); err != nil {
			return codec.EventData{}, err
		}

		if err := codec.PatchSlot(f, chainTailPtr, uint64(ptr.Offset)); err != nil {
			return codec.EventData{}, err
		}
		chainTailPtr = ptr.NextsmOffset
	}

	return data, nil
}

// Remove unlinks every event-pointer on the same-event chain rooted at the
// event-data record at id from its bucket. The event-data record itself is
// left in place as garbage for a future defrag pass to reclaim.
func Remove(f *os.File, id int64) error {
	data, err := codec.ReadEventData(f, id)
	if err != nil {
		return err
	}

	cur := data.Firstev
	for cur != 0 {
		ptr, err := codec.ReadEventPointer(f, int64(cur))
		if err != nil {
			return err
		}

		if err := codec.PatchSlot(f, int64(ptr.Prev), ptr.Next); err != nil {
			return err
		}

		if ptr.Next != 0 {
			successor, err := codec.ReadEventPointer(f, int64(ptr.Next))
			if err != nil {
				return err
			}
			if err := codec.PatchSlot(f, successor.PrevOffset, ptr.Prev); err != nil {
				return err
			}
		}

		cur = ptr.Nextsm
	}

	return nil
}
