// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

// LastChar denotes "the last byte of each keyword, whatever its length."
// It sorts as the smallest element of Positions, so it is the last value
// produced by descending iteration.
const LastChar = -1

// MaxKeyPos bounds the 1-based byte positions Positions can hold.
const MaxKeyPos = 255

// maxPositionsSize bounds the number of distinct positions a Positions can
// hold: MaxKeyPos 1-based positions plus LastChar.
const maxPositionsSize = MaxKeyPos + 1

// Positions is an ordered set of distinct ints drawn from
// {1..MaxKeyPos} ∪ {LastChar}, stored in strictly descending order.
// The zero value is an empty set ready to use.
type Positions struct {
	values []int // strictly descending
}

// NewPositions returns a Positions set containing the given values, which
// need not be sorted or deduplicated.
func NewPositions(values ...int) *Positions {
	p := &Positions{}
	for _, v := range values {
		p.Add(v)
	}

	return p
}

// Size returns the number of positions currently held.
func (p *Positions) Size() int {
	if p == nil {
		return 0
	}

	return len(p.values)
}

// Contains reports whether i is a member of the set.
func (p *Positions) Contains(i int) bool {
	if p == nil {
		return false
	}

	_, found := p.search(i)
	return found
}

// Add inserts i, maintaining descending order. Adding a value already
// present is a no-op.
func (p *Positions) Add(i int) {
	idx, found := p.search(i)
	if found {
		return
	}

	p.values = append(p.values, 0)
	copy(p.values[idx+1:], p.values[idx:])
	p.values[idx] = i
}

// Remove deletes i from the set, if present.
func (p *Positions) Remove(i int) {
	idx, found := p.search(i)
	if !found {
		return
	}

	p.values = append(p.values[:idx], p.values[idx+1:]...)
}

// search returns the index at which i is found, or the index at which it
// should be inserted to keep p.values strictly descending.
func (p *Positions) search(i int) (index int, found bool) {
	// Descending order: scan from the front. The sets involved here are
	// tiny (bounded by maxLen), so a linear scan beats the bookkeeping of
	// a binary search.
	for idx, v := range p.values {
		if v == i {
			return idx, true
		}

		if v < i {
			return idx, false
		}
	}

	return len(p.values), false
}

// At returns the i-th position in descending iteration order.
func (p *Positions) At(i int) int {
	return p.values[i]
}

// Iterate calls fn for each position in descending order (LastChar last,
// if present). Iteration stops early if fn returns false.
func (p *Positions) Iterate(fn func(pos int) bool) {
	if p == nil {
		return
	}

	for _, v := range p.values {
		if !fn(v) {
			return
		}
	}
}

// clone returns a deep copy.
func (p *Positions) clone() *Positions {
	if p == nil {
		return &Positions{}
	}

	cp := &Positions{values: make([]int, len(p.values))}
	copy(cp.values, p.values)

	return cp
}

// equal reports whether p and other hold the same set of positions.
func (p *Positions) equal(other *Positions) bool {
	if p.Size() != other.Size() {
		return false
	}

	for i := range p.values {
		if p.values[i] != other.values[i] {
			return false
		}
	}

	return true
}

// hasTrailingLastChar reports whether the smallest (last, in descending
// iteration) element is LastChar — used by findAlphaInc (§4.5) to decide
// whether to exclude the final index from the increment search.
func (p *Positions) hasTrailingLastChar() bool {
	n := p.Size()
	return n > 0 && p.values[n-1] == LastChar
}
