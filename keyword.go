// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

// Keyword is one immutable input string supplied by the (out-of-scope)
// input parser. AllChars must be non-empty; Rest and Lineno are carried
// through unexamined for the (out-of-scope) output emitter.
type Keyword struct {
	AllChars []byte // the keyword's bytes
	Rest     []byte // per-keyword trailing declaration fields, opaque here
	Lineno   int    // source line, for diagnostics only
}

// Len returns the keyword's byte length.
func (k *Keyword) Len() int {
	return len(k.AllChars)
}

// KeywordExt is the mutable, search-owned extension of a Keyword: it adds
// the derived selchars multiset and the bookkeeping fields the three
// search stages, duplicate-equivalence construction, and the (out-of-scope)
// output emitter need. KeywordExt nodes are exclusively owned by the
// Search that created them until Optimize returns (§5).
type KeywordExt struct {
	Keyword *Keyword

	Selchars []uint // the selected-character tuple or multiset

	HashValue  int // current hash under the current asso
	Occurrence int // sum of occurrences[c] over Selchars, set by reorder

	DuplicateLink *KeywordExt // singly linked chain of equivalence peers
	FinalIndex    int         // assigned by the (out-of-scope) output layer

	selcharsBuf *[]uint // the arena buffer backing Selchars, if pooled
}

// newKeywordExt wraps k for use by the search.
func newKeywordExt(k *Keyword) *KeywordExt {
	return &KeywordExt{Keyword: k}
}

// Len returns the wrapped keyword's byte length.
func (ke *KeywordExt) Len() int {
	return ke.Keyword.Len()
}

// byteAt resolves a 1-based position (or LastChar) against this keyword,
// returning the byte and whether the position is in range. Positions past
// the keyword's length are out of range and contribute nothing — this is
// how a single Pos set can serve keywords of varying length.
func (ke *KeywordExt) byteAt(pos int) (b byte, ok bool) {
	n := ke.Len()

	idx := pos - 1
	if pos == LastChar {
		idx = n - 1
	}

	if idx < 0 || idx >= n {
		return 0, false
	}

	return ke.Keyword.AllChars[idx], true
}

// alphaIndex maps a 1-based position (or LastChar) to the 0-based index
// into an alphaInc array.
func (ke *KeywordExt) alphaIndex(pos int) int {
	if pos == LastChar {
		return ke.Len() - 1
	}

	return pos - 1
}

// initSelcharsTuple builds Selchars as the ordered tuple of bytes at the
// positions in pos (descending iteration order), or every byte of the
// keyword when useAllChars is set. Each byte is widened to uint unchanged
// (SevenBit only bounds the base alphabet size; it does not change
// selchars encoding).
func (ke *KeywordExt) initSelcharsTuple(useAllChars bool, pos *Positions) {
	n := ke.Len()

	if useAllChars {
		bufp := acquireSelchars(n)
		buf := *bufp

		for i := 0; i < n; i++ {
			buf = append(buf, uint(ke.Keyword.AllChars[i]))
		}

		*bufp = buf
		ke.selcharsBuf = bufp
		ke.Selchars = buf

		return
	}

	bufp := acquireSelchars(pos.Size())
	buf := *bufp

	pos.Iterate(func(p int) bool {
		if b, ok := ke.byteAt(p); ok {
			buf = append(buf, uint(b))
		}

		return true
	})

	*bufp = buf
	ke.selcharsBuf = bufp
	ke.Selchars = buf
}

// initSelcharsMultiset builds Selchars like initSelcharsTuple, additionally
// adding alphaInc[i] (indexed by the 0-based key position) to each byte,
// then sorts the result ascending so equal multisets compare identically.
// Duplicates are preserved (multiset semantics).
func (ke *KeywordExt) initSelcharsMultiset(useAllChars bool, pos *Positions, alphaInc []uint) {
	n := ke.Len()

	if useAllChars {
		bufp := acquireSelchars(n)
		buf := *bufp

		for i := 0; i < n; i++ {
			buf = append(buf, uint(ke.Keyword.AllChars[i])+alphaInc[i])
		}

		*bufp = buf
		ke.selcharsBuf = bufp
		ke.Selchars = buf
	} else {
		bufp := acquireSelchars(pos.Size())
		buf := *bufp

		pos.Iterate(func(p int) bool {
			if b, ok := ke.byteAt(p); ok {
				buf = append(buf, uint(b)+alphaInc[ke.alphaIndex(p)])
			}

			return true
		})

		*bufp = buf
		ke.selcharsBuf = bufp
		ke.Selchars = buf
	}

	insertionSortUint(ke.Selchars)
}

// deleteSelchars releases the scratch buffer backing Selchars. Safe to call
// more than once; safe to call when Selchars was never built.
func (ke *KeywordExt) deleteSelchars() {
	if ke.selcharsBuf != nil {
		releaseSelchars(ke.selcharsBuf)
		ke.selcharsBuf = nil
	}

	ke.Selchars = nil
}

// insertionSortUint sorts a short []uint ascending in place. The multisets
// here are bounded by maxLen (rarely more than a few dozen elements), so
// insertion sort's low overhead beats sort.Slice's interface dispatch.
func insertionSortUint(s []uint) {
	for i := 1; i < len(s); i++ {
		v := s[i]

		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}

		s[j+1] = v
	}
}
