// Package keyspace implements spec §4.2 (the signed-instant encoding) and
// §4.3 (the prefix enumerator). Both are pure functions over uint64/int64 —
// no file I/O, no allocation beyond the slice of covers EnumerateCovers
// returns — which is why they live below internal/codec in the dependency
// graph even though codec needs SU64/US64 to encode event start/end fields.
package keyspace

import "github.com/bits-and-blooms/bitset"

// signBit is the bit that separates the negative and non-negative halves of
// the signed 64-bit range once flipped.
const signBit = uint64(1) << 63

// SU64 maps a signed 64-bit instant to its unsigned key such that ordinary
// unsigned comparison on the result matches signed comparison on the input:
// su64(a) < su64(b) for signed a < b.
func SU64(v int64) uint64 {
	return signBit ^ uint64(v)
}

// US64 is the inverse of SU64, with one documented edge case: Go's
// uint64(v ^ signBit) conversion to int64 already yields math.MinInt64 for
// v == 0, so unlike the C original (which needed an explicit branch to work
// around its unsigned-to-signed conversion rules), no special case is
// needed here — but the identity US64(0) == math.MinInt64 is still the
// contract callers rely on, and is asserted directly in the tests.
func US64(v uint64) int64 {
	return int64(v ^ signBit)
}

// Fill1 returns a uint64 with its low n bits set and the rest clear.
// Fill1(64) is math.MaxUint64 — the original C implementation left n=64
// undefined behavior (shifting a uint64 by 64 bits); spec §9 requires the Go
// port to define it.
func Fill1(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	if n <= 0 {
		return 0
	}
	return (uint64(1) << uint(n)) - 1
}

// Cover names a contiguous range of keys by its fixed high bits (Prefix,
// with the free low bits zero) and the count of fixed bits (Precision, in
// [0, 64]). The range it names is [Low(), High()].
type Cover struct {
	Prefix    uint64
	Precision int
}

// Low returns the smallest key this cover names.
func (c Cover) Low() uint64 {
	return c.Prefix
}

// High returns the largest key this cover names.
func (c Cover) High() uint64 {
	return c.Prefix | Fill1(64-c.Precision)
}

// Bits renders the cover's fixed high bits as a *bitset.BitSet of width 64,
// most significant bit first logically but addressed by bit index (bit 63
// is the most significant). This is a debug/logging aid only — see
// SPEC_FULL.md §5 — the enumerator below never consults it.
func (c Cover) Bits() *bitset.BitSet {
	b := bitset.New(64)
	for i := 0; i < c.Precision; i++ {
		bitIndex := uint(63 - i)
		if c.Prefix&(uint64(1)<<bitIndex) != 0 {
			b.Set(bitIndex)
		}
	}
	return b
}

// EnumerateCovers produces the minimal, pairwise-disjoint sequence of covers
// whose union is exactly [lo, hi], in ascending order, per spec §4.3.
//
// At each step it grows the current lower bound's prefix (shrinks its
// precision) by flipping the lowest zero bit to one as long as doing so
// keeps the result within hi; that flip is exactly the claim "the next
// 2^k keys down to the current lower bound all belong to this cover". Once
// no further bit can be flipped without passing hi, the accumulated prefix
// and its precision name the next cover, and the loop continues from
// cur+1. Runs in O(b²) for a b-bit key, as documented in spec §4.3.
func EnumerateCovers(lo, hi uint64) []Cover {
	var covers []Cover

	cur := lo
	for cur <= hi {
		precision := 0
		for precision < 64 {
			bit := uint64(1) << uint(precision)
			flipped := cur ^ bit
			if flipped <= cur || flipped > hi {
				break
			}
			cur = flipped
			precision++
		}

		covers = append(covers, Cover{Prefix: cur &^ Fill1(precision), Precision: 64 - precision})

		if cur == ^uint64(0) {
			break
		}
		cur++
	}

	return covers
}
