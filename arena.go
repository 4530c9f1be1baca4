// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

import "sync"

// selcharsArena pools the []uint scratch buffers backing KeywordExt.Selchars
// during Stage 1/2, where every trial position set rebuilds every keyword's
// selchars and then discards them (§4.2, §9 "selchars scratch lifecycle").
// Pooling these avoids one heap allocation per keyword per trial, which
// Stage 1's position search (up to O(maxLen^3) trial sets per swap round)
// would otherwise incur many times over. Modeled on the teacher's sliding window dictionary pool
// (sliding_window_pool.go), adapted from a single fixed-size struct pool to
// a variable-length []uint pool.
var selcharsArena = sync.Pool{
	New: func() any {
		buf := make([]uint, 0, 16)
		return &buf
	},
}

// acquireSelchars returns a scratch []uint with at least the given capacity,
// truncated to length 0.
func acquireSelchars(capHint int) *[]uint {
	bufp := selcharsArena.Get().(*[]uint)
	buf := (*bufp)[:0]

	if cap(buf) < capHint {
		buf = make([]uint, 0, capHint)
	}

	*bufp = buf

	return bufp
}

// releaseSelchars returns a scratch buffer to the pool.
func releaseSelchars(bufp *[]uint) {
	if bufp == nil {
		return
	}

	selcharsArena.Put(bufp)
}
