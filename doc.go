// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

/*
Package search builds a perfect hash function for a fixed set of distinct
keyword strings.

Given N keywords it discovers a set of byte positions Pos, per-position
increments alphaInc, and per-alphabet-byte associated values asso such that

	hash(w) = (useLen ? len(w) : 0) + sum(asso[w[i]+alphaInc[i]] : i in Pos)

is injective over the keyword set, with a small maximum value. The search
runs in three stages: findPositions picks Pos, findAlphaInc picks alphaInc,
and findAssoValues picks asso. Each stage consumes only the previous
stage's output.

The package does not parse keyword input or emit generated source code;
callers supply a list of Keyword and read the results through Search's
accessor methods.

	kws := []search.Keyword{
		{AllChars: []byte("if")},
		{AllChars: []byte("else")},
		{AllChars: []byte("for")},
		{AllChars: []byte("while")},
		{AllChars: []byte("return")},
	}

	s, err := search.New(kws, search.DefaultOptions())
	if err != nil {
		// handle ErrNoKeywords / ErrEmptyKeyword / ErrJumpMustBeOdd
	}

	if err := s.Optimize(); err != nil {
		// handle ErrDuplicateKeywords / ErrInternalCollision
	}

	// s.KeyPositions(), s.AlphaInc(), s.AssoValues(), s.Head() now describe
	// the chosen hash function.
*/
package search
