package bacs

import (
	"golang.org/x/exp/constraints"
)

// Strategy is the combination algebra of an aspect: it folds the
// registered contributions into one value and bounds how many contributors
// are legal. Implementations must be stateless.
type Strategy[V, C any] interface {
	// Resolve combines the contributions, seeded with original.
	// Contributions are passed in registration order and must all be
	// consulted; they are pure, so call count is not observable.
	Resolve(original V, ctx C, contribs []Contribution[V, C]) V

	// Cap returns the maximum number of contributors, or 0 for unbounded.
	// Exceeding it is a fatal configuration error raised at contribution
	// time, never deferred or silently resolved.
	Cap() int
}

// Exclusive admits a single contributor as the sole source of truth.
// Registering a second contribution panics.
type Exclusive[V, C any] struct{}

func (Exclusive[V, C]) Resolve(original V, ctx C, contribs []Contribution[V, C]) V {
	return contribs[0](original, ctx)
}

func (Exclusive[V, C]) Cap() int { return 1 }

// LogicalAnd folds boolean contributions with AND. Every contribution
// receives the accumulated value as its input.
type LogicalAnd[C any] struct{}

func (LogicalAnd[C]) Resolve(original bool, ctx C, contribs []Contribution[bool, C]) bool {
	acc := original
	for _, f := range contribs {
		acc = f(acc, ctx) && acc
	}
	return acc
}

func (LogicalAnd[C]) Cap() int { return 0 }

// LogicalOr folds boolean contributions with OR. Every contribution
// receives the accumulated value as its input.
type LogicalOr[C any] struct{}

func (LogicalOr[C]) Resolve(original bool, ctx C, contribs []Contribution[bool, C]) bool {
	acc := original
	for _, f := range contribs {
		acc = f(acc, ctx) || acc
	}
	return acc
}

func (LogicalOr[C]) Cap() int { return 0 }

// Masking unions flag contributions bitwise, seeded with the original
// flags. Each contribution sees the accumulated mask.
type Masking[V constraints.Unsigned, C any] struct{}

func (Masking[V, C]) Resolve(original V, ctx C, contribs []Contribution[V, C]) V {
	acc := original
	for _, f := range contribs {
		acc |= f(acc, ctx)
	}
	return acc
}

func (Masking[V, C]) Cap() int { return 0 }

// Chaining composes contributions into a pipeline: each contribution's
// output becomes the next one's input. Used for layered overrides where
// later registrations refine earlier ones.
type Chaining[V, C any] struct{}

func (Chaining[V, C]) Resolve(original V, ctx C, contribs []Contribution[V, C]) V {
	acc := original
	for _, f := range contribs {
		acc = f(acc, ctx)
	}
	return acc
}

func (Chaining[V, C]) Cap() int { return 0 }
