// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/woozymasta/perfhash

package search

import "errors"

// Sentinel errors for the search engine. Callers use errors.Is.
var (
	// ErrEmptyKeyword is returned when an input keyword has length 0.
	ErrEmptyKeyword = errors.New("search: empty input keyword is not allowed")

	// ErrNoKeywords is returned when New is called with zero keywords.
	ErrNoKeywords = errors.New("search: no keywords given")

	// ErrDuplicateKeywords is returned by Optimize when keywords collapse into
	// the same selchars-and-length equivalence class and Options.Dup is not
	// set. Try Options.Dup, Options.SizeMultiple, or different key positions.
	ErrDuplicateKeywords = errors.New("search: input keys have identical hash values; " +
		"use Options.Dup, or try different key positions or Options.SizeMultiple")

	// ErrInternalCollision is returned when final verification finds a hash
	// collision even though Options.Dup is not set. This indicates the three
	// search stages failed to converge; try Options.SizeMultiple, Options.Jump,
	// Options.Order, or different key positions.
	ErrInternalCollision = errors.New("search: internal error, duplicate hash code; " +
		"try Options.SizeMultiple, Options.Jump, Options.Order, or new key positions")

	// ErrJumpMustBeOdd is returned when Options.Jump is nonzero and even: the
	// permutation property (§8 invariant 9) requires an odd jump relative to a
	// power-of-two assoValueMax.
	ErrJumpMustBeOdd = errors.New("search: options.Jump must be odd when nonzero")
)
