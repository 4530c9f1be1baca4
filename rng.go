// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

import (
	"math/rand"
	"sync"
	"time"
)

// processRNG is the single process-wide pseudo-random generator used by
// Stage 3 (§5 "RNG"). It is seeded once from wall time, lazily, the first
// time a Search actually needs randomness (Options.Random, or Options.Jump
// == 0). No third-party RNG library appears anywhere in the retrieved
// corpus, so this stays on the standard library; the choice of algorithm
// does not affect correctness, only reproducibility, and math/rand's
// default source is sufficient for a collision-avoidance search.
var (
	processRNG     *rand.Rand
	processRNGOnce sync.Once
	processRNGMu   sync.Mutex
)

func seedProcessRNG() {
	processRNGOnce.Do(func() {
		processRNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	})
}

// randInt returns a pseudo-random non-negative int from the process RNG.
// The caller must have triggered seedProcessRNG first.
func randInt() int {
	processRNGMu.Lock()
	defer processRNGMu.Unlock()

	return processRNG.Int()
}
