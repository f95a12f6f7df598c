// Package search implements spec §4.7: a recursive descent of the trie,
// pruned by overlap with the query window, collecting every event reachable
// from a visited node's bucket and deduplicating by event-data offset.
package search

import (
	"encoding/binary"
	"os"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rverma-dev/datefile/internal/codec"
	"github.com/rverma-dev/datefile/internal/keyspace"
)

// Event is a logical event returned to callers: the event-data record's
// offset (its stable id), its range, and its name.
type Event struct {
	ID    int64
	Start int64
	End   int64
	Name  string
}

// dedupe fronts an authoritative offset set with a bloom filter: a filter
// miss is conclusive (the offset has never been seen) and skips the map
// probe entirely, while a filter hit falls through to the map, which is
// always the final word on whether an offset has actually been emitted
// already. The filter never changes which events are returned — it only
// changes how many map lookups get done getting there.
type dedupe struct {
	filter *bloom.BloomFilter
	seen   map[uint64]bool
}

func newDedupe(capacityHint uint) *dedupe {
	if capacityHint == 0 {
		capacityHint = 256
	}
	return &dedupe{
		filter: bloom.NewWithEstimates(capacityHint, 0.01),
		seen:   make(map[uint64]bool),
	}
}

func (d *dedupe) seenBefore(offset uint64) bool {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], offset)

	if !d.filter.Test(key[:]) {
		d.filter.Add(key[:])
		d.seen[offset] = true
		return false
	}

	if d.seen[offset] {
		return true
	}
	d.seen[offset] = true
	return false
}

// Search returns every event whose stored range intersects [qlo, qhi]
// (both inclusive instants), in trie pre-order — an order that is neither
// time-sorted nor otherwise specified, per spec §4.7.
func Search(f *os.File, header codec.Header, qlo, qhi int64, capacityHint uint) ([]Event, error) {
	keyLo := keyspace.SU64(qlo)
	keyHi := keyspace.SU64(qhi)

	dd := newDedupe(capacityHint)
	var results []Event

	if err := visit(f, header, dd, &results, header.Bit1, 0, 0, keyLo, keyHi); err != nil {
		return nil, err
	}

	return results, nil
}

func visit(f *os.File, header codec.Header, dd *dedupe, results *[]Event, nodePtr uint64, prefix uint64, precision int, keyLo, keyHi uint64) error {
	if nodePtr == 0 {
		return nil
	}

	coverLo := prefix
	coverHi := prefix | keyspace.Fill1(int(header.Bitn)-precision)
	if coverHi < keyLo || coverLo > keyHi {
		return nil
	}

	node, err := codec.ReadNode(f, int64(nodePtr))
	if err != nil {
		return err
	}

	if node.Event != 0 {
		cur := node.Event
		for cur != 0 {
			ptr, err := codec.ReadEventPointer(f, int64(cur))
			if err != nil {
				return err
			}

			if !dd.seenBefore(ptr.Ptr) {
				data, err := codec.ReadEventData(f, int64(ptr.Ptr))
				if err != nil {
					return err
				}
				*results = append(*results, Event{
					ID:    data.Offset,
					Start: data.Start,
					End:   data.End,
					Name:  data.Name,
				})
			}

			cur = ptr.Next
		}
	}

	if precision >= int(header.Bitn) {
		return nil
	}

	if err := visit(f, header, dd, results, node.Child0, prefix, precision+1, keyLo, keyHi); err != nil {
		return err
	}

	bit := uint64(1) << (uint(header.Bitn) - 1 - uint(precision))
	if err := visit(f, header, dd, results, node.Child1, prefix|bit, precision+1, keyLo, keyHi); err != nil {
		return err
	}

	return nil
}
