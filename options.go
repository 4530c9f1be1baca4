// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

import "log/slog"

// Options configures the search engine. A nil KeyPositions means "run
// Stage 1"; a non-nil KeyPositions, even an empty one, is used as Pos. The
// zero value differs from DefaultOptions in Jump (0, random steps, instead
// of 1); callers should start from DefaultOptions.
type Options struct {
	// AllChars makes selchars use every byte of a keyword instead of only
	// the chosen Pos; AlphaInc indices then range over 0..maxLen-1.
	AllChars bool

	// NoLength omits the length term from the hash and from hash-table key
	// equality.
	NoLength bool

	// SevenBit sets the base alphabet size to 128 instead of 256.
	SevenBit bool

	// KeyPositions, if non-nil, supplies Pos directly and skips Stage 1
	// (findPositions).
	KeyPositions *Positions

	// Dup allows equivalence classes to share a hash value instead of
	// failing with ErrDuplicateKeywords.
	Dup bool

	// Debug emits diagnostics through Logger (or slog.Default if Logger is
	// nil) when set.
	Debug bool

	// Logger receives diagnostics when Debug is set. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Order runs the Cichelli-style reorder pass (§4.7) after Stage 1/2.
	Order bool

	// Random seeds asso with random values instead of InitialAssoValue.
	Random bool

	// Fast caps the iteration budget in tryAssoValue; see Iterations.
	Fast bool

	// SizeMultiple scales the raw bound for assoValueMax (§4.8):
	// rawMax = sm==0 ? listLen : sm>0 ? listLen*sm : listLen/(-sm).
	SizeMultiple int

	// InitialAssoValue seeds every asso[c], masked to the bits below
	// assoValueMax, when Random is false and the value is non-negative. A
	// negative value is not masked: initialization then draws random values
	// from the process RNG, as with Random, but that RNG is seeded only when
	// Random is set or Jump is zero.
	InitialAssoValue int

	// Jump is the step added to asso[c] on each trial in tryAssoValue.
	// Must be odd when nonzero (see ErrJumpMustBeOdd). Zero means "use the
	// process RNG for each step" and also forces RNG seeding.
	Jump int

	// Iterations caps tryAssoValue's loop when Fast is set and this is
	// nonzero; otherwise the Fast-mode cap is ListLen.
	Iterations int

	// AssoIterations, if nonzero, runs findAssoValues repeatedly over the
	// seed sequence in §4.9 and keeps the best result.
	AssoIterations int
}

// DefaultOptions returns the default tunables: no AllChars/NoLength/
// SevenBit/Dup/Debug/Order/Random/Fast, SizeMultiple 0 (assoValueMax is the
// smallest power of two strictly greater than the non-duplicate keyword
// count, so a count of 4 gives 8), initial
// asso value 0, jump 1, and a single asso search pass (AssoIterations 0).
func DefaultOptions() *Options {
	return &Options{
		Jump: 1,
	}
}

// clone returns a defensive copy so Optimize cannot observe later mutation
// of the caller's Options value.
func (o *Options) clone() *Options {
	if o == nil {
		cp := DefaultOptions()
		return cp
	}

	cp := *o

	if o.KeyPositions != nil {
		kp := o.KeyPositions.clone()
		cp.KeyPositions = kp
	}

	return &cp
}
