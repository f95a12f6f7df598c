// Package codec implements spec §4.1: reading and writing the datefile's
// fixed-layout, big-endian records, and capturing each field's absolute
// byte offset so callers can patch a single field later without rereading
// or rewriting the whole record. Every record type below also remembers
// its own start offset, since that is itself frequently the pointer value
// some other record's field holds.
package codec

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/rverma-dev/datefile/pkg/errors"
	"github.com/rverma-dev/datefile/internal/keyspace"
)

// Magic is the eight-byte signature every datefile begins with.
const Magic = "datefile"

const (
	// HeaderSize is the on-disk size of a Header record: 8-byte magic,
	// 8-byte bit1, 1-byte bitn, 16 reserved bytes. Despite what a stray
	// summary label elsewhere might suggest, there is no additional
	// reserved block beyond these 16 bytes — the field-by-field layout is
	// authoritative.
	HeaderSize = 8 + 8 + 1 + 16

	// NodeSize is the on-disk size of a trie Node record: three 8-byte
	// pointers plus 16 reserved bytes.
	NodeSize = 8 + 8 + 8 + 16

	// EventPointerSize is the on-disk size of an EventPointer record: four
	// 8-byte fields plus 16 reserved bytes.
	EventPointerSize = 8 + 8 + 8 + 8 + 16

	// EventDataFixedSize is the on-disk size of an EventData record not
	// counting its variable-length name.
	EventDataFixedSize = 8 + 8 + 8 + 8 + 8
)

var reservedZeros [16]byte

// Header is the file header record (spec §3, §6).
type Header struct {
	Offset int64 // Always 0.

	Bit1 uint64 // Offset of the root trie node.
	Bitn uint8  // Bits of key precision; must be <= 64.

	Bit1Offset int64
	BitnOffset int64
}

// Node is a binary trie node record (spec §3, §4.4).
type Node struct {
	Offset int64

	Child0 uint64
	Child1 uint64
	Event  uint64

	Child0Offset int64
	Child1Offset int64
	EventOffset  int64
}

// EventPointer is one bucket/same-event-chain link record (spec §3, §4.5,
// §4.6).
type EventPointer struct {
	Offset int64

	Next   uint64
	Prev   uint64
	Nextsm uint64
	Ptr    uint64

	NextOffset   int64
	PrevOffset   int64
	NextsmOffset int64
	PtrOffset    int64
}

// EventData is the canonical per-event record (spec §3, §4.5).
type EventData struct {
	Offset int64

	Functions uint64 // Reserved, always 0.
	Firstev   uint64 // Offset of the first event-pointer chained to this event, 0 if none.
	Start     int64
	End       int64
	Name      string

	FirstevOffset int64
}

// NameDigest returns an xxhash64 of an event's name, used only as a
// correlation id in the engine's debug log line for a successful insert.
// It is never written to disk and never used to compare or look up events.
func NameDigest(name string) uint64 {
	return xxhash.Sum64String(name)
}

func ioErr(err error, offset int64, recordKind, operation string) error {
	return apperrors.NewIOError(err, "datefile I/O failure").
		WithOffset(offset).
		WithRecordKind(recordKind).
		WithOperation(operation)
}

func readFull(f *os.File, buf []byte, offset int64, recordKind, operation string) error {
	if _, err := f.ReadAt(buf, offset); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ioErr(apperrors.NewFormatError(err, apperrors.ErrorCodeTruncatedRecord, "record truncated").
				WithOffset(offset), offset, recordKind, operation)
		}
		return ioErr(err, offset, recordKind, operation)
	}
	return nil
}

func writeFull(f *os.File, buf []byte, offset int64, recordKind, operation string) error {
	if _, err := f.WriteAt(buf, offset); err != nil {
		return ioErr(err, offset, recordKind, operation)
	}
	return nil
}

// ReadHeader reads the file header at offset 0.
func ReadHeader(f *os.File) (Header, error) {
	buf := make([]byte, HeaderSize)
	if err := readFull(f, buf, 0, "header", "read"); err != nil {
		return Header{}, err
	}

	if string(buf[0:8]) != Magic {
		return Header{}, apperrors.NewMagicMismatchError(buf[0:8])
	}

	bit1 := binary.BigEndian.Uint64(buf[8:16])
	bitn := buf[16]
	if bitn > 64 {
		return Header{}, apperrors.NewPrecisionOverflowError(bitn)
	}

	return Header{
		Offset:     0,
		Bit1:       bit1,
		Bitn:       bitn,
		Bit1Offset: 8,
		BitnOffset: 16,
	}, nil
}

// WriteHeader writes a new file header at offset 0.
func WriteHeader(f *os.File, bit1 uint64, bitn uint8) (Header, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], Magic)
	binary.BigEndian.PutUint64(buf[8:16], bit1)
	buf[16] = bitn
	copy(buf[17:33], reservedZeros[:])

	if err := writeFull(f, buf, 0, "header", "write"); err != nil {
		return Header{}, err
	}

	return Header{
		Offset:     0,
		Bit1:       bit1,
		Bitn:       bitn,
		Bit1Offset: 8,
		BitnOffset: 16,
	}, nil
}

// PatchBit1 overwrites the header's bit1 field in place.
func PatchBit1(f *os.File, h Header, bit1 uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bit1)
	return writeFull(f, buf[:], h.Bit1Offset, "header", "write")
}

// ReadNode reads a trie node at the given offset.
func ReadNode(f *os.File, offset int64) (Node, error) {
	buf := make([]byte, NodeSize)
	if err := readFull(f, buf, offset, "node", "read"); err != nil {
		return Node{}, err
	}
	return Node{
		Offset:       offset,
		Child0:       binary.BigEndian.Uint64(buf[0:8]),
		Child1:       binary.BigEndian.Uint64(buf[8:16]),
		Event:        binary.BigEndian.Uint64(buf[16:24]),
		Child0Offset: offset + 0,
		Child1Offset: offset + 8,
		EventOffset:  offset + 16,
	}, nil
}

// AppendNode appends a new trie node at end-of-file and returns it with its
// offset populated.
func AppendNode(f *os.File, child0, child1, event uint64) (Node, error) {
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return Node{}, ioErr(err, -1, "node", "seek")
	}

	buf := make([]byte, NodeSize)
	binary.BigEndian.PutUint64(buf[0:8], child0)
	binary.BigEndian.PutUint64(buf[8:16], child1)
	binary.BigEndian.PutUint64(buf[16:24], event)
	copy(buf[24:40], reservedZeros[:])

	if err := writeFull(f, buf, offset, "node", "write"); err != nil {
		return Node{}, err
	}

	return Node{
		Offset:       offset,
		Child0:       child0,
		Child1:       child1,
		Event:        event,
		Child0Offset: offset + 0,
		Child1Offset: offset + 8,
		EventOffset:  offset + 16,
	}, nil
}

// PatchChild overwrites one of a node's child pointers in place. bit
// selects child0 (0) or child1 (1).
func PatchChild(f *os.File, n Node, bit uint8, child uint64) error {
	offset := n.Child0Offset
	if bit != 0 {
		offset = n.Child1Offset
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], child)
	return writeFull(f, buf[:], offset, "node", "write")
}

// PatchNodeEvent overwrites a node's event (bucket head) field in place.
func PatchNodeEvent(f *os.File, n Node, event uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], event)
	return writeFull(f, buf[:], n.EventOffset, "node", "write")
}

// ReadEventPointer reads an event-pointer record at the given offset.
func ReadEventPointer(f *os.File, offset int64) (EventPointer, error) {
	buf := make([]byte, EventPointerSize)
	if err := readFull(f, buf, offset, "event_pointer", "read"); err != nil {
		return EventPointer{}, err
	}
	return EventPointer{
		Offset:       offset,
		Next:         binary.BigEndian.Uint64(buf[0:8]),
		Prev:         binary.BigEndian.Uint64(buf[8:16]),
		Nextsm:       binary.BigEndian.Uint64(buf[16:24]),
		Ptr:          binary.BigEndian.Uint64(buf[24:32]),
		NextOffset:   offset + 0,
		PrevOffset:   offset + 8,
		NextsmOffset: offset + 16,
		PtrOffset:    offset + 24,
	}, nil
}

// AppendEventPointer appends a new event-pointer record at end-of-file.
func AppendEventPointer(f *os.File, next, prev, nextsm, ptr uint64) (EventPointer, error) {
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return EventPointer{}, ioErr(err, -1, "event_pointer", "seek")
	}

	buf := make([]byte, EventPointerSize)
	binary.BigEndian.PutUint64(buf[0:8], next)
	binary.BigEndian.PutUint64(buf[8:16], prev)
	binary.BigEndian.PutUint64(buf[16:24], nextsm)
	binary.BigEndian.PutUint64(buf[24:32], ptr)
	copy(buf[32:48], reservedZeros[:])

	if err := writeFull(f, buf, offset, "event_pointer", "write"); err != nil {
		return EventPointer{}, err
	}

	return EventPointer{
		Offset:       offset,
		Next:         next,
		Prev:         prev,
		Nextsm:       nextsm,
		Ptr:          ptr,
		NextOffset:   offset + 0,
		PrevOffset:   offset + 8,
		NextsmOffset: offset + 16,
		PtrOffset:    offset + 24,
	}, nil
}

// PatchSlot overwrites an arbitrary 8-byte pointer slot at the given
// absolute offset. Both the bucket list and the same-event chain are
// unlinked purely through slot patches of this shape (spec §4.6, §9's note
// on back-pointers addressing slots rather than records).
func PatchSlot(f *os.File, slotOffset int64, value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return writeFull(f, buf[:], slotOffset, "event_pointer", "write")
}

// ReadEventData reads an event-data record at the given offset, including
// its variable-length name.
func ReadEventData(f *os.File, offset int64) (EventData, error) {
	fixed := make([]byte, EventDataFixedSize)
	if err := readFull(f, fixed, offset, "event_data", "read"); err != nil {
		return EventData{}, err
	}

	functions := binary.BigEndian.Uint64(fixed[0:8])
	firstev := binary.BigEndian.Uint64(fixed[8:16])
	start := keyspace.US64(binary.BigEndian.Uint64(fixed[16:24]))
	end := keyspace.US64(binary.BigEndian.Uint64(fixed[24:32]))
	nameLen := binary.BigEndian.Uint64(fixed[32:40])

	nameBuf := make([]byte, nameLen)
	if nameLen > 0 {
		if err := readFull(f, nameBuf, offset+EventDataFixedSize, "event_data", "read"); err != nil {
			return EventData{}, err
		}
	}

	return EventData{
		Offset:        offset,
		Functions:     functions,
		Firstev:       firstev,
		Start:         start,
		End:           end,
		Name:          string(nameBuf),
		FirstevOffset: offset + 8,
	}, nil
}

// AppendEventData appends a new event-data record at end-of-file with
// firstev left at 0, to be patched once the first event-pointer chained to
// it is known.
func AppendEventData(f *os.File, start, end int64, name string) (EventData, error) {
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return EventData{}, ioErr(err, -1, "event_data", "seek")
	}

	nameBytes := []byte(name)
	buf := make([]byte, EventDataFixedSize+len(nameBytes))
	binary.BigEndian.PutUint64(buf[0:8], 0)
	binary.BigEndian.PutUint64(buf[8:16], 0)
	binary.BigEndian.PutUint64(buf[16:24], keyspace.SU64(start))
	binary.BigEndian.PutUint64(buf[24:32], keyspace.SU64(end))
	binary.BigEndian.PutUint64(buf[32:40], uint64(len(nameBytes)))
	copy(buf[40:], nameBytes)

	if err := writeFull(f, buf, offset, "event_data", "write"); err != nil {
		return EventData{}, err
	}

	return EventData{
		Offset:        offset,
		Functions:     0,
		Firstev:       0,
		Start:         start,
		End:           end,
		Name:          name,
		FirstevOffset: offset + 8,
	}, nil
}

// PatchFirstev overwrites an event-data record's firstev field in place.
func PatchFirstev(f *os.File, d EventData, firstev uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], firstev)
	return writeFull(f, buf[:], d.FirstevOffset, "event_data", "write")
}
