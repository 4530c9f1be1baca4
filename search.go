// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

import (
	"bytes"
	"log/slog"
	"math"
	"math/bits"
	"sort"
)

// Search owns every piece of state for one perfect-hash search. A Search is
// not reentrant and not safe for concurrent use; create one Search per
// process per keyword set (§5).
type Search struct {
	opts *Options

	entries []*KeywordExt // dense, stable storage in original input order
	order   []int         // current list order, as indices into entries

	totalKeys int
	minKeyLen int
	maxKeyLen int

	keyPositions *Positions
	alphaInc     []uint // shape [maxKeyLen]

	alphaSize   int
	occurrences []int
	assoValues  []int
	determined  []bool

	assoValueMax      int
	maxHashValue      int
	collisionDetector *boolArray

	initialAssoValue int
	jump             int
	fewestCollisions int

	totalDuplicates int
}

// New validates keywords and returns a Search ready for Optimize. keywords
// is copied defensively; the returned Search owns its own KeywordExt nodes.
func New(keywords []Keyword, opts *Options) (*Search, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	o := opts.clone()
	if o.Jump != 0 && o.Jump%2 == 0 {
		return nil, ErrJumpMustBeOdd
	}

	entries := make([]*KeywordExt, len(keywords))
	order := make([]int, len(keywords))

	for i := range keywords {
		kw := keywords[i]
		entries[i] = newKeywordExt(&kw)
		order[i] = i
	}

	s := &Search{opts: o, entries: entries, order: order}

	if err := s.preprepare(); err != nil {
		return nil, err
	}

	return s, nil
}

// logger returns the effective diagnostics logger, defaulting to
// slog.Default() when Options.Logger is unset.
func (s *Search) logger() *slog.Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}

	return slog.Default()
}

// ----------------------------- Outputs (§6) -----------------------------

// Head returns the current representative list, in list order (ascending
// hash value after Optimize returns).
func (s *Search) Head() []*KeywordExt {
	out := make([]*KeywordExt, len(s.order))
	for i, idx := range s.order {
		out[i] = s.entries[idx]
	}

	return out
}

// TotalKeys returns N, the number of keywords given to New.
func (s *Search) TotalKeys() int { return s.totalKeys }

// MinLen returns the shortest keyword's length.
func (s *Search) MinLen() int { return s.minKeyLen }

// MaxLen returns the longest keyword's length.
func (s *Search) MaxLen() int { return s.maxKeyLen }

// KeyPositions returns a copy of the chosen byte positions.
func (s *Search) KeyPositions() *Positions {
	return s.keyPositions.clone()
}

// AlphaInc returns a copy of the chosen per-position increments.
func (s *Search) AlphaInc() []uint {
	return append([]uint(nil), s.alphaInc...)
}

// TotalDuplicates returns the number of input keywords folded into
// equivalence classes.
func (s *Search) TotalDuplicates() int { return s.totalDuplicates }

// AlphaSize returns the upper bound on asso indices.
func (s *Search) AlphaSize() int { return s.alphaSize }

// AssoValues returns a copy of the chosen per-alphabet-byte values.
func (s *Search) AssoValues() []int {
	return append([]int(nil), s.assoValues...)
}

// ComputeHash returns ke's hash value under the current AssoValues,
// recomputing and storing it in ke.HashValue.
func (s *Search) ComputeHash(ke *KeywordExt) int {
	return s.computeHash(ke)
}

// ------------------------ Initialization (§4, preprepare) ------------------------

func (s *Search) preprepare() error {
	s.totalKeys = len(s.entries)

	minLen := math.MaxInt
	maxLen := 0

	for _, ke := range s.entries {
		n := ke.Len()
		if n < minLen {
			minLen = n
		}

		if n > maxLen {
			maxLen = n
		}
	}

	if minLen == 0 {
		return ErrEmptyKeyword
	}

	s.minKeyLen = minLen
	s.maxKeyLen = maxLen

	return nil
}

// --------------------- Stage 1: finding good byte positions (§4.4) ---------------------

func (s *Search) countDuplicatesTuple(pos *Positions) int {
	for _, ke := range s.entries {
		ke.initSelcharsTuple(s.opts.AllChars, pos)
	}

	ht := newHashTable(s.totalKeys, s.opts.NoLength)

	count := 0
	for _, ke := range s.entries {
		if ht.Insert(ke) != nil {
			count++
		}
	}

	for _, ke := range s.entries {
		ke.deleteSelchars()
	}

	return count
}

func (s *Search) findPositions() {
	imax := s.maxKeyLen
	if imax > MaxKeyPos {
		imax = MaxKeyPos
	}

	mandatory := &Positions{}

	if !s.opts.Dup {
		for i1 := 0; i1 < len(s.entries)-1; i1++ {
			k1 := s.entries[i1]

			for i2 := i1 + 1; i2 < len(s.entries); i2++ {
				k2 := s.entries[i2]

				if k1.Len() != k2.Len() {
					continue
				}

				n := k1.Len()

				i := 1
				for i < n && k1.Keyword.AllChars[i-1] == k2.Keyword.AllChars[i-1] {
					i++
				}

				if i < n && bytes.Equal(k1.Keyword.AllChars[i:n], k2.Keyword.AllChars[i:n]) {
					mandatory.Add(i)
				}
			}
		}
	}

	current := mandatory.clone()
	currentCount := s.countDuplicatesTuple(current)

	// Phase A: add positions while it strictly decreases duplicates.
	for {
		var best *Positions
		bestCount := math.MaxInt

		for i := imax; i >= 0; i-- {
			if current.Contains(i) {
				continue
			}

			trial := current.clone()
			trial.Add(i)
			tryCount := s.countDuplicatesTuple(trial)

			if tryCount < bestCount || (tryCount == bestCount && i > 0) {
				best = trial
				bestCount = tryCount
			}
		}

		if best == nil || bestCount >= currentCount {
			break
		}

		current, currentCount = best, bestCount
	}

	// Phase B: drop positions as long as it doesn't increase duplicates.
	for {
		var best *Positions
		bestCount := math.MaxInt

		for i := imax; i >= 0; i-- {
			if !current.Contains(i) || mandatory.Contains(i) {
				continue
			}

			trial := current.clone()
			trial.Remove(i)
			tryCount := s.countDuplicatesTuple(trial)

			if tryCount < bestCount || (tryCount == bestCount && i == 0) {
				best = trial
				bestCount = tryCount
			}
		}

		if best == nil || bestCount > currentCount {
			break
		}

		current, currentCount = best, bestCount
	}

	// Phase C: replace two positions by one, as long as it doesn't increase duplicates.
	for {
		var best *Positions
		bestCount := math.MaxInt

		for i1 := imax; i1 >= 0; i1-- {
			if !current.Contains(i1) || mandatory.Contains(i1) {
				continue
			}

			for i2 := imax; i2 >= 0; i2-- {
				if i2 == i1 || !current.Contains(i2) || mandatory.Contains(i2) {
					continue
				}

				for i3 := imax; i3 >= 0; i3-- {
					if current.Contains(i3) {
						continue
					}

					trial := current.clone()
					trial.Remove(i1)
					trial.Remove(i2)
					trial.Add(i3)
					tryCount := s.countDuplicatesTuple(trial)

					if tryCount < bestCount || (tryCount == bestCount && (i1 == 0 || i2 == 0 || i3 > 0)) {
						best = trial
						bestCount = tryCount
					}
				}
			}
		}

		if best == nil || bestCount > currentCount {
			break
		}

		current, currentCount = best, bestCount
	}

	s.keyPositions = current
}

// --------------------- Stage 2: finding good alpha increments (§4.5) ---------------------

func (s *Search) countDuplicatesMultiset(alphaInc []uint) int {
	for _, ke := range s.entries {
		ke.initSelcharsMultiset(s.opts.AllChars, s.keyPositions, alphaInc)
	}

	ht := newHashTable(s.totalKeys, s.opts.NoLength)

	count := 0
	for _, ke := range s.entries {
		if ht.Insert(ke) != nil {
			count++
		}
	}

	for _, ke := range s.entries {
		ke.deleteSelchars()
	}

	return count
}

func (s *Search) findAlphaInc() {
	duplicatesGoal := s.countDuplicatesTuple(s.keyPositions)

	current := make([]uint, s.maxKeyLen)
	currentCount := s.countDuplicatesMultiset(current)

	if currentCount > duplicatesGoal {
		var indices []int

		if s.opts.AllChars {
			indices = make([]int, s.maxKeyLen)
			for j := range indices {
				indices[j] = j
			}
		} else {
			nindices := s.keyPositions.Size()
			if s.keyPositions.hasTrailingLastChar() {
				nindices--
			}

			indices = make([]int, 0, nindices)
			count := 0

			s.keyPositions.Iterate(func(p int) bool {
				if count >= nindices {
					return false
				}

				indices = append(indices, p-1)
				count++

				return true
			})
		}

		for currentCount > duplicatesGoal {
			for inc := 1; ; inc++ {
				bestCount := math.MaxInt

				var best []uint

				for _, idx := range indices {
					trial := append([]uint(nil), current...)
					trial[idx] += uint(inc)

					tryCount := s.countDuplicatesMultiset(trial)
					if tryCount < bestCount {
						best = trial
						bestCount = tryCount
					}
				}

				if bestCount < currentCount {
					current, currentCount = best, bestCount
					break
				}
			}
		}
	}

	s.alphaInc = current
}

// ------------------------- Duplicate equivalence classes (§4.6) -------------------------

func (s *Search) getMaxKeysigSize() int {
	if s.opts.AllChars {
		return s.maxKeyLen
	}

	return s.keyPositions.Size()
}

func (s *Search) prepare() error {
	for _, ke := range s.entries {
		ke.initSelcharsMultiset(s.opts.AllChars, s.keyPositions, s.alphaInc)
	}

	listLen := s.totalKeys
	s.totalDuplicates = 0

	ht := newHashTable(listLen, s.opts.NoLength)
	newOrder := make([]int, 0, len(s.order))

	for _, idx := range s.order {
		ke := s.entries[idx]

		other := ht.Insert(ke)
		if other != nil {
			s.totalDuplicates++
			listLen--

			ke.DuplicateLink = other.DuplicateLink
			other.DuplicateLink = ke

			if s.opts.Debug || !s.opts.Dup {
				s.logger().Debug("key link",
					"keyword", string(ke.Keyword.AllChars),
					"equals", string(other.Keyword.AllChars))
			}
		} else {
			ke.DuplicateLink = nil
			newOrder = append(newOrder, idx)
		}
	}

	s.order = newOrder

	if s.totalDuplicates > 0 {
		if s.opts.Dup {
			s.logger().Debug("keys share hash values",
				"count", s.totalDuplicates)
		} else {
			return ErrDuplicateKeywords
		}
	}

	maxAlphaInc := uint(0)
	for _, v := range s.alphaInc {
		if v > maxAlphaInc {
			maxAlphaInc = v
		}
	}

	base := 256
	if s.opts.SevenBit {
		base = 128
	}

	s.alphaSize = base + int(maxAlphaInc)
	s.occurrences = make([]int, s.alphaSize)

	for _, idx := range s.order {
		for _, c := range s.entries[idx].Selchars {
			s.occurrences[c]++
		}
	}

	s.assoValues = make([]int, s.alphaSize)
	s.determined = make([]bool, s.alphaSize)

	return nil
}

// ------------------------- Optional reorder (§4.7) -------------------------

func (s *Search) computeOccurrence(ke *KeywordExt) int {
	value := 0
	for _, c := range ke.Selchars {
		value += s.occurrences[c]
	}

	return value
}

func (s *Search) clearDetermined() {
	for i := range s.determined {
		s.determined[i] = false
	}
}

func (s *Search) setDetermined(ke *KeywordExt) {
	for _, c := range ke.Selchars {
		s.determined[c] = true
	}
}

func (s *Search) alreadyDetermined(ke *KeywordExt) bool {
	for _, c := range ke.Selchars {
		if !s.determined[c] {
			return false
		}
	}

	return true
}

// reorder front-loads keywords whose hash is fully constrained so
// collisions surface early (Cichelli's 1980 JACM approach). It operates on
// a next-pointer array over s.order's current arrangement rather than a
// linked list, per the index-based design in §9, but the control flow is a
// direct translation of the original's list splicing.
func (s *Search) reorder() {
	n := len(s.order)
	if n == 0 {
		return
	}

	items := make([]*KeywordExt, n)
	itemIdx := make([]int, n)

	for i, idx := range s.order {
		items[i] = s.entries[idx]
		items[i].Occurrence = s.computeOccurrence(items[i])
		itemIdx[i] = idx
	}

	sort.Stable(&byOccurrenceDesc{items: items, idx: itemIdx})

	next := make([]int, n)
	for i := range next {
		if i+1 < n {
			next[i] = i + 1
		} else {
			next[i] = -1
		}
	}

	s.clearDetermined()

	ptr := 0
	for ptr != -1 && next[ptr] != -1 {
		s.setDetermined(items[ptr])

		currPtr := ptr
		nextPtr := next[currPtr]

		for nextPtr != -1 {
			if s.alreadyDetermined(items[nextPtr]) {
				if currPtr == ptr {
					currPtr = nextPtr
				} else {
					next[currPtr] = next[nextPtr]
					next[nextPtr] = next[ptr]
					next[ptr] = nextPtr
				}

				ptr = next[ptr]
			} else {
				currPtr = nextPtr
			}

			nextPtr = next[currPtr]
		}

		ptr = next[ptr]
	}

	newOrder := make([]int, 0, n)
	for i := 0; i != -1; i = next[i] {
		newOrder = append(newOrder, itemIdx[i])
	}

	s.order = newOrder
}

// byOccurrenceDesc sorts items (and the parallel idx slice, kept in lockstep)
// descending by Occurrence.
type byOccurrenceDesc struct {
	items []*KeywordExt
	idx   []int
}

func (b *byOccurrenceDesc) Len() int { return len(b.items) }

func (b *byOccurrenceDesc) Less(i, j int) bool {
	return b.items[i].Occurrence > b.items[j].Occurrence
}

func (b *byOccurrenceDesc) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.idx[i], b.idx[j] = b.idx[j], b.idx[i]
}

// --------------------------- Stage 3: finding good asso values (§4.8) ---------------------------

// roundUpPowerOfTwo matches the original's OR-shift-then-increment ladder:
// an input that is already a power of two rounds up to the next one, not
// itself (asso_value_max |= asso_value_max>>1; ...; asso_value_max++ never
// leaves a power-of-two input unchanged).
func roundUpPowerOfTwo(v int) int {
	if v <= 0 {
		v = 1
	}

	return 1 << bits.Len(uint(v))
}

func (s *Search) prepareAssoValues() {
	nonLinked := len(s.order)
	sm := s.opts.SizeMultiple

	var rawMax int

	switch {
	case sm == 0:
		rawMax = nonLinked
	case sm > 0:
		rawMax = nonLinked * sm
	default:
		rawMax = nonLinked / (-sm)
	}

	if rawMax < 1 {
		rawMax = 1
	}

	s.assoValueMax = roundUpPowerOfTwo(rawMax)

	maxKeysig := s.getMaxKeysigSize()

	lenTerm := 0
	if !s.opts.NoLength {
		lenTerm = s.maxKeyLen
	}

	s.maxHashValue = lenTerm + (s.assoValueMax-1)*maxKeysig
	s.collisionDetector = newBoolArray(s.maxHashValue + 1)

	if s.opts.Random || s.opts.Jump == 0 {
		seedProcessRNG()
	}

	s.initialAssoValue = s.opts.InitialAssoValue
	if s.opts.Random {
		s.initialAssoValue = -1
	}

	s.jump = s.opts.Jump

	if s.opts.Debug {
		s.logger().Debug("prepared asso values",
			"nonLinked", nonLinked,
			"assoValueMax", s.assoValueMax,
			"maxHashValue", s.maxHashValue)
	}
}

func (s *Search) initAssoValues() {
	if s.initialAssoValue < 0 {
		for i := range s.assoValues {
			s.assoValues[i] = randInt() & (s.assoValueMax - 1)
		}

		return
	}

	v := s.initialAssoValue & (s.assoValueMax - 1)
	for i := range s.assoValues {
		s.assoValues[i] = v
	}
}

func (s *Search) computeHash(ke *KeywordExt) int {
	sum := 0
	if !s.opts.NoLength {
		sum = ke.Len()
	}

	for _, c := range ke.Selchars {
		sum += s.assoValues[c]
	}

	ke.HashValue = sum

	return sum
}

// computeDisjointUnion returns the ordered set of characters contained with
// a different multiplicity in the two ordered multisets a and b (§4.8).
func computeDisjointUnion(a, b []uint) []uint {
	result := make([]uint, 0, len(a)+len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			i++
			j++
		case a[i] < b[j]:
			if len(result) == 0 || result[len(result)-1] != a[i] {
				result = append(result, a[i])
			}

			i++
		default:
			if len(result) == 0 || result[len(result)-1] != b[j] {
				result = append(result, b[j])
			}

			j++
		}
	}

	for ; i < len(a); i++ {
		if len(result) == 0 || result[len(result)-1] != a[i] {
			result = append(result, a[i])
		}
	}

	for ; j < len(b); j++ {
		if len(result) == 0 || result[len(result)-1] != b[j] {
			result = append(result, b[j])
		}
	}

	return result
}

// sortByOccurrence sorts set ascending by s.occurrences[c], stably. The sets
// here are tiny, so a plain insertion sort (stable, no allocation) beats
// sort.SliceStable's interface dispatch.
func (s *Search) sortByOccurrence(set []uint) {
	for i := 1; i < len(set); i++ {
		v := set[i]

		j := i - 1
		for j >= 0 && s.occurrences[set[j]] > s.occurrences[v] {
			set[j+1] = set[j]
			j--
		}

		set[j+1] = v
	}
}

// tryAssoValue tries iterations candidate values for asso[c], each obtained
// by stepping the previous value by Jump (or a random step when Jump==0).
// It returns false and keeps the first value that drives the collision
// count strictly below fewestCollisions over order[0:currPos+1]; otherwise
// it restores the original value and returns true.
func (s *Search) tryAssoValue(c uint, currPos int, iterations int) bool {
	original := s.assoValues[c]

iterLoop:
	for it := 0; it < iterations; it++ {
		step := s.jump
		if step == 0 {
			step = randInt()
		}

		s.assoValues[c] = (s.assoValues[c] + step) & (s.assoValueMax - 1)

		s.collisionDetector.Clear()

		collisions := 0

		for j := 0; j <= currPos; j++ {
			h := s.computeHash(s.entries[s.order[j]])

			if s.collisionDetector.SetBit(h) {
				collisions++
				if collisions >= s.fewestCollisions {
					continue iterLoop
				}
			}

			if j == currPos {
				s.fewestCollisions = collisions
				return false
			}
		}
	}

	s.assoValues[c] = original

	return true
}

// changeSomeAssoValue attempts to resolve a collision between prior and the
// keyword at order[currPos] by changing a single asso[c].
func (s *Search) changeSomeAssoValue(prior, curr *KeywordExt, currPos int) {
	union := computeDisjointUnion(prior.Selchars, curr.Selchars)
	s.sortByOccurrence(union)

	iterations := s.assoValueMax
	if s.opts.Fast {
		iterations = s.opts.Iterations
		if iterations == 0 {
			iterations = len(s.order)
		}
	}

	for _, c := range union {
		if !s.tryAssoValue(c, currPos, iterations) {
			if s.opts.Debug {
				s.logger().Debug("resolved collision",
					"char", c, "newAssoValue", s.assoValues[c])
			}

			return
		}
	}

	// Failed to resolve: restore correctness of hash values up to currPos.
	for j := 0; j <= currPos; j++ {
		s.computeHash(s.entries[s.order[j]])
	}

	if s.opts.Debug {
		s.logger().Debug("collision not resolved",
			"fewestCollisions", s.fewestCollisions,
			"totalDuplicates", s.totalDuplicates)
	}
}

// findAssoValues runs the main Stage 3 loop once, using s.initialAssoValue
// and s.jump as currently set.
func (s *Search) findAssoValues() {
	s.fewestCollisions = 0
	s.initAssoValues()

	for i, idx := range s.order {
		curr := s.entries[idx]
		s.computeHash(curr)

		for j := 0; j < i; j++ {
			prior := s.entries[s.order[j]]

			if prior.HashValue == curr.HashValue {
				s.fewestCollisions++
				s.changeSomeAssoValue(prior, curr, i)

				break
			}
		}
	}
}

// optimizeMultiSeed runs findAssoValues over the (initialAssoValue, jump)
// seed sequence from §4.9 and keeps the asso[] with fewest collisions,
// tie-broken by smaller maxHashValue.
func (s *Search) optimizeMultiSeed() {
	bestAsso := make([]int, s.alphaSize)
	bestCollisions := math.MaxInt
	bestMaxHash := math.MaxInt

	initVal, jumpVal := 0, 1

	for iter := 0; iter < s.opts.AssoIterations; iter++ {
		s.initialAssoValue = initVal
		s.jump = jumpVal

		s.findAssoValues()

		collisions := 0
		maxHash := math.MinInt

		s.collisionDetector.Clear()

		for _, idx := range s.order {
			h := s.computeHash(s.entries[idx])
			if h > maxHash {
				maxHash = h
			}

			if s.collisionDetector.SetBit(h) {
				collisions++
			}
		}

		if collisions < bestCollisions || (collisions == bestCollisions && maxHash < bestMaxHash) {
			copy(bestAsso, s.assoValues)
			bestCollisions = collisions
			bestMaxHash = maxHash
		}

		if initVal >= 2 {
			initVal -= 2
			jumpVal += 2
		} else {
			initVal += jumpVal
			jumpVal = 1
		}
	}

	copy(s.assoValues, bestAsso)
}

// finalVerifyAndSort recomputes every hash, checks for residual collisions,
// and sorts the representative list ascending by hash value (§4.10).
func (s *Search) finalVerifyAndSort() error {
	s.collisionDetector.Clear()

	for _, idx := range s.order {
		h := s.computeHash(s.entries[idx])

		if s.collisionDetector.SetBit(h) {
			if s.opts.Dup {
				s.totalDuplicates++
			} else {
				return ErrInternalCollision
			}
		}
	}

	sort.SliceStable(s.order, func(i, j int) bool {
		return s.entries[s.order[i]].HashValue < s.entries[s.order[j]].HashValue
	})

	return nil
}

// DumpDiagnostics writes a snapshot of occurrences, asso values, and the
// sorted keyword list through the effective logger. It runs automatically
// from Optimize when Options.Debug is set, mirroring the original's
// destructor-time dump (search.cc's Search::~Search).
func (s *Search) DumpDiagnostics() {
	log := s.logger()

	for c, occ := range s.occurrences {
		if occ != 0 {
			log.Debug("alphabet entry", "char", c, "assoValue", s.assoValues[c], "occurrences", occ)
		}
	}

	log.Debug("keyword list summary",
		"listLen", len(s.order),
		"totalKeys", s.totalKeys,
		"totalDuplicates", s.totalDuplicates,
		"maxKeyLen", s.maxKeyLen)

	for _, idx := range s.order {
		ke := s.entries[idx]
		log.Debug("keyword",
			"hashValue", ke.HashValue,
			"len", ke.Len(),
			"finalIndex", ke.FinalIndex,
			"keyword", string(ke.Keyword.AllChars))
	}
}

// Optimize runs the full three-stage search and leaves Head sorted
// ascending by hash value. It returns ErrDuplicateKeywords or
// ErrInternalCollision when Options.Dup is not set and duplicates or a
// residual collision are found.
func (s *Search) Optimize() error {
	if s.opts.KeyPositions != nil {
		s.keyPositions = s.opts.KeyPositions.clone()
	} else {
		s.findPositions()
	}

	s.findAlphaInc()

	if err := s.prepare(); err != nil {
		return err
	}

	if s.opts.Order {
		s.reorder()
	}

	s.prepareAssoValues()

	if s.opts.AssoIterations == 0 {
		s.findAssoValues()
	} else {
		s.optimizeMultiSeed()
	}

	if err := s.finalVerifyAndSort(); err != nil {
		return err
	}

	if s.opts.Debug {
		s.DumpDiagnostics()
	}

	return nil
}
