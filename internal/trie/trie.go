// Package trie implements spec §4.4: walking the in-file binary trie from
// its root, allocating nodes lazily on first traversal of an absent
// branch, and patching the parent's child pointer to the freshly allocated
// child.
package trie

import (
	"os"

	"github.com/rverma-dev/datefile/internal/codec"
)

// bitAt returns the bit of prefix at position (bitn-1-i), recomputed fresh
// on every call rather than carried forward as a running shifted mask. The
// original implementation this is grounded on used a pre-shifted mask that
// decremented across iterations; spec §9 calls that out as a subtle bug
// once precision can be 0 (the walk never touches the mask, so a
// pre-shifted variable would start stale on the very next call). Recomputing
// per iteration makes each step self-contained.
func bitAt(prefix uint64, bitn uint8, i int) uint8 {
	shift := uint(bitn) - 1 - uint(i)
	if (prefix>>shift)&1 != 0 {
		return 1
	}
	return 0
}

// WalkOrCreate descends the trie from the root named by header, following
// precision bits of prefix (the high bits, per the prefix enumerator's
// convention), allocating any missing node along the way. It returns the
// terminal node — the node reached after consuming all precision bits.
func WalkOrCreate(f *os.File, header codec.Header, prefix uint64, precision int) (codec.Node, error) {
	node, err := codec.ReadNode(f, int64(header.Bit1))
	if err != nil {
		return codec.Node{}, err
	}

	for i := 0; i < precision; i++ {
		bit := bitAt(prefix, header.Bitn, i)

		child := node.Child0
		if bit != 0 {
			child = node.Child1
		}

		if child == 0 {
			newNode, err := codec.AppendNode(f, 0, 0, 0)
			if err != nil {
				return codec.Node{}, err
			}
			if err := codec.PatchChild(f, node, bit, uint64(newNode.Offset)); err != nil {
				return codec.Node{}, err
			}
			child = uint64(newNode.Offset)
		}

		node, err = codec.ReadNode(f, int64(child))
		if err != nil {
			return codec.Node{}, err
		}
	}

	return node, nil
}
