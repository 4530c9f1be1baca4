// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kwList(words ...string) []Keyword {
	out := make([]Keyword, len(words))
	for i, w := range words {
		out[i] = Keyword{AllChars: []byte(w)}
	}

	return out
}

// assertDistinctHashes checks invariant 1 (uniqueness) from spec.md §8.
func assertDistinctHashes(t *testing.T, s *Search) {
	t.Helper()

	seen := make(map[int]*KeywordExt)

	for _, ke := range s.Head() {
		if other, ok := seen[ke.HashValue]; ok {
			t.Fatalf("hash collision: %q and %q both hash to %d",
				ke.Keyword.AllChars, other.Keyword.AllChars, ke.HashValue)
		}

		seen[ke.HashValue] = ke
	}
}

// assertHashEquation checks invariant 3 from spec.md §8: the hash of every
// representative equals the defining equation evaluated over keyPositions
// and alphaInc directly against the raw keyword bytes.
func assertHashEquation(t *testing.T, s *Search, o *Options) {
	t.Helper()

	asso := s.AssoValues()
	alphaInc := s.AlphaInc()
	positions := s.KeyPositions()

	for _, ke := range s.Head() {
		want := 0
		if !o.NoLength {
			want = ke.Len()
		}

		if o.AllChars {
			for i, b := range ke.Keyword.AllChars {
				want += asso[uint(b)+alphaInc[i]]
			}
		} else {
			positions.Iterate(func(p int) bool {
				b, ok := ke.byteAt(p)
				if !ok {
					return true
				}

				want += asso[uint(b)+alphaInc[ke.alphaIndex(p)]]

				return true
			})
		}

		assert.Equal(t, want, ke.HashValue, "hash equation for %q", ke.Keyword.AllChars)
	}
}

// assertRange checks invariant 2 from spec.md §8.
func assertRange(t *testing.T, s *Search, o *Options) {
	t.Helper()

	maxKeysig := s.getMaxKeysigSize()

	lenTerm := 0
	if !o.NoLength {
		lenTerm = s.MaxLen()
	}

	upper := lenTerm + (s.assoValueMax-1)*maxKeysig

	for _, ke := range s.Head() {
		assert.GreaterOrEqual(t, ke.HashValue, 0)
		assert.LessOrEqual(t, ke.HashValue, upper)
	}
}

// assertAssoValueMaxPowerOfTwo checks invariant 4 from spec.md §8.
func assertAssoValueMaxPowerOfTwo(t *testing.T, s *Search) {
	t.Helper()

	require.Greater(t, s.assoValueMax, 0)
	assert.Zero(t, s.assoValueMax&(s.assoValueMax-1), "assoValueMax must be a power of two")

	for _, v := range s.AssoValues() {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, s.assoValueMax)
	}
}

// assertSortedByHash checks invariant 7 from spec.md §8.
func assertSortedByHash(t *testing.T, s *Search) {
	t.Helper()

	head := s.Head()
	for i := 1; i < len(head); i++ {
		assert.LessOrEqual(t, head[i-1].HashValue, head[i].HashValue)
	}
}

func optimizeFor(t *testing.T, words []string, o *Options) *Search {
	t.Helper()

	s, err := New(kwList(words...), o)
	require.NoError(t, err)
	require.NoError(t, s.Optimize())

	return s
}

func Test_Optimize_On_Keywords_Lineup_Produces_Distinct_Compact_Hashes(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	s := optimizeFor(t, []string{"if", "else", "for", "while", "return"}, o)

	assert.Zero(t, s.TotalDuplicates())
	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
	assertRange(t, s, o)
	assertAssoValueMaxPowerOfTwo(t, s)
	assertSortedByHash(t, s)
}

func Test_Optimize_On_SingleChar_Keywords_Uses_One_Position(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	s := optimizeFor(t, []string{"a", "b", "c", "d"}, o)

	assert.Equal(t, 1, s.KeyPositions().Size())
	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)

	for _, v := range s.AlphaInc() {
		assert.Zero(t, v)
	}
}

func Test_Optimize_On_Keywords_Differing_At_One_Position_Marks_It_Mandatory(t *testing.T) {
	t.Parallel()

	// "bad"/"bed" differ at exactly one non-last position (1-based position
	// 2) and agree everywhere else, including the last byte; phase 0 of
	// findPositions must mark position 2 mandatory.
	o := DefaultOptions()
	s := optimizeFor(t, []string{"bad", "bed", "fox"}, o)

	assert.True(t, s.KeyPositions().Contains(2), "position 2 is the sole non-last differing byte between bad/bed and must be mandatory")
	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
}

func Test_Optimize_On_Exact_Duplicate_Fails_Without_Dup_Option(t *testing.T) {
	t.Parallel()

	s, err := New(kwList("foo", "foo"), DefaultOptions())
	require.NoError(t, err)

	err = s.Optimize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKeywords))
}

func Test_Optimize_On_Exact_Duplicate_Succeeds_With_Dup_Option(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.Dup = true

	s, err := New(kwList("foo", "foo"), o)
	require.NoError(t, err)
	require.NoError(t, s.Optimize())

	assert.Equal(t, 1, s.TotalDuplicates())
	require.Len(t, s.Head(), 1)

	rep := s.Head()[0]
	require.NotNil(t, rep.DuplicateLink)
	assert.Equal(t, "foo", string(rep.DuplicateLink.Keyword.AllChars))
}

func Test_Optimize_On_Larger_Keyword_Set_Keeps_All_Invariants(t *testing.T) {
	t.Parallel()

	words := []string{
		"auto", "break", "case", "char", "const", "continue", "default", "do",
		"double", "else", "enum", "extern", "float", "for", "goto", "if",
		"int", "long", "register", "return", "short", "signed", "sizeof",
		"static", "struct", "switch", "typedef", "union", "unsigned", "void",
		"volatile", "while", "inline", "restrict", "alignas", "alignof",
		"atomic", "bool", "complex", "generic", "imaginary", "noreturn",
		"static_assert", "thread_local", "and", "and_eq", "bitand", "bitor",
		"compl", "not", "not_eq", "or", "or_eq", "xor", "xor_eq", "class",
		"namespace", "public", "private", "protected", "virtual", "friend",
		"template", "typename",
	}

	o := DefaultOptions()
	s := optimizeFor(t, words, o)

	assert.Zero(t, s.TotalDuplicates())
	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
	assertRange(t, s, o)
	assertAssoValueMaxPowerOfTwo(t, s)
	assertSortedByHash(t, s)

	head := s.Head()
	assert.Less(t, head[len(head)-1].HashValue, 4*len(words))
}

func Test_Optimize_Is_Deterministic_With_Fixed_Jump_And_No_Random(t *testing.T) {
	t.Parallel()

	words := []string{"alpha", "beta", "gamma", "delta", "epsilon"}

	o1 := DefaultOptions()
	s1 := optimizeFor(t, words, o1)

	o2 := DefaultOptions()
	s2 := optimizeFor(t, words, o2)

	assert.True(t, s1.KeyPositions().equal(s2.KeyPositions()))

	if diff := cmp.Diff(s1.AlphaInc(), s2.AlphaInc()); diff != "" {
		t.Errorf("alphaInc differs between identical runs (-run1 +run2):\n%s", diff)
	}

	if diff := cmp.Diff(s1.AssoValues(), s2.AssoValues()); diff != "" {
		t.Errorf("assoValues differs between identical runs (-run1 +run2):\n%s", diff)
	}
}

func Test_New_Rejects_Empty_Keyword(t *testing.T) {
	t.Parallel()

	_, err := New(kwList("ok", ""), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyKeyword))
}

func Test_New_Rejects_Empty_Keyword_List(t *testing.T) {
	t.Parallel()

	_, err := New(nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoKeywords))
}

func Test_New_Rejects_Even_Jump(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.Jump = 2

	_, err := New(kwList("a", "b"), o)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJumpMustBeOdd))
}

func Test_Optimize_With_Order_Option_Keeps_All_Invariants(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.Order = true

	s := optimizeFor(t, []string{"if", "else", "for", "while", "return", "switch", "case", "break"}, o)

	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
	assertSortedByHash(t, s)
}

func Test_Optimize_With_AssoIterations_Keeps_All_Invariants(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.AssoIterations = 5

	s := optimizeFor(t, []string{"red", "green", "blue", "yellow", "purple", "orange"}, o)

	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
	assertAssoValueMaxPowerOfTwo(t, s)
}

func Test_Optimize_With_AllChars_Option_Keeps_All_Invariants(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.AllChars = true

	s := optimizeFor(t, []string{"cat", "dog", "bird", "fish"}, o)

	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
}

func Test_Optimize_With_NoLength_Option_Omits_Length_From_Hash(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.NoLength = true

	s := optimizeFor(t, []string{"ab", "abc", "abcd"}, o)

	assertDistinctHashes(t, s)
	assertHashEquation(t, s, o)
}

func Test_Optimize_With_User_Supplied_KeyPositions_Skips_Stage_One(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.KeyPositions = NewPositions(1, LastChar)

	s := optimizeFor(t, []string{"red", "green", "blue"}, o)

	assert.True(t, s.KeyPositions().equal(NewPositions(1, LastChar)))
	assertHashEquation(t, s, o)
}

func Test_RoundUpPowerOfTwo_Matches_Original_Ladder_Semantics(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		0:  2,
		1:  2,
		2:  4,
		3:  4,
		4:  8,
		5:  8,
		7:  8,
		8:  16,
		9:  16,
		16: 32,
	}

	for in, want := range cases {
		assert.Equal(t, want, roundUpPowerOfTwo(in), "roundUpPowerOfTwo(%d)", in)
	}
}

func Test_ComputeDisjointUnion_Returns_Symmetric_Difference_As_A_Set(t *testing.T) {
	t.Parallel()

	a := []uint{1, 2, 2, 3}
	b := []uint{2, 3, 3, 4}

	got := computeDisjointUnion(a, b)

	assert.Equal(t, []uint{1, 2, 3, 4}, got)
}

func Test_ComputeDisjointUnion_Is_Empty_For_Identical_Multisets(t *testing.T) {
	t.Parallel()

	a := []uint{1, 2, 2}
	b := []uint{1, 2, 2}

	assert.Empty(t, computeDisjointUnion(a, b))
}

// Test_Jump_Stepping_Is_A_Full_Permutation_Of_AssoValueMax checks invariant 9
// from spec.md §8: for a power-of-two assoValueMax and odd jump, stepping
// asso[c] by jump repeatedly visits every value in [0, assoValueMax) exactly
// once before returning to the start.
func Test_Jump_Stepping_Is_A_Full_Permutation_Of_AssoValueMax(t *testing.T) {
	t.Parallel()

	const assoValueMax = 16

	for _, jump := range []int{1, 3, 5, 7, 9, 11, 13, 15} {
		seen := make(map[int]bool, assoValueMax)

		v := 0
		for k := 0; k < assoValueMax; k++ {
			v = (v + jump) & (assoValueMax - 1)
			seen[v] = true
		}

		assert.Len(t, seen, assoValueMax, "jump=%d must visit every value exactly once", jump)
	}
}

func Test_RoundUpPowerOfTwo_Result_Is_Always_A_Power_Of_Two(t *testing.T) {
	t.Parallel()

	for n := 0; n < 40; n++ {
		got := roundUpPowerOfTwo(n)
		assert.Zero(t, got&(got-1), "roundUpPowerOfTwo(%d) = %d is not a power of two", n, got)
		assert.Greater(t, got, n, "roundUpPowerOfTwo(%d) must strictly exceed its input", n)
	}
}
