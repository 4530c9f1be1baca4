// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

// boolArray is a sparse bitset supporting O(1) Clear, used as the
// collision detector in tryAssoValue and the final verification pass. It
// is implemented as a slice of generation stamps plus a current
// generation counter: Clear increments the counter, and SetBit reports
// whether a slot's stamp already equals the current generation before
// overwriting it with the current generation.
type boolArray struct {
	stamps     []uint32
	generation uint32
}

// newBoolArray returns a boolArray sized for indices [0, size).
func newBoolArray(size int) *boolArray {
	return &boolArray{
		stamps:     make([]uint32, size),
		generation: 1,
	}
}

// Clear resets every bit to false in O(1).
func (b *boolArray) Clear() {
	b.generation++

	// Generation is a uint32; wrapping after 2^32 clears would reuse stale
	// stamps. Reset the backing storage on wraparound, which is the only
	// case that costs O(n).
	if b.generation == 0 {
		for i := range b.stamps {
			b.stamps[i] = 0
		}

		b.generation = 1
	}
}

// SetBit marks index i as set and returns whether it was already set in
// the current generation.
func (b *boolArray) SetBit(i int) bool {
	wasSet := b.stamps[i] == b.generation
	b.stamps[i] = b.generation

	return wasSet
}
