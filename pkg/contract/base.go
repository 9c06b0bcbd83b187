package contract

import "fmt"

// Base is embedded by value in every contract holder for capability T.
//
// One holder instance is created per wrap and bound to that wrap's delegate.
// Hooks use Target to query further delegate state and Contract to assert.
type Base[T any] struct {
	target T
}

// Target returns the delegate the holder is bound to.
// Hooks must only read through it; the wrapper owns no part of the delegate.
func (b *Base[T]) Target() T {
	return b.target
}

// Contract fails the current hook with message when condition is false.
func (b *Base[T]) Contract(message string, condition bool) {
	if !condition {
		panic(&Error{Message: message})
	}
}

// Contractf is Contract with a formatted message.
// The message is only formatted when the condition fails.
func (b *Base[T]) Contractf(condition bool, format string, args ...any) {
	if !condition {
		panic(&Error{Message: fmt.Sprintf(format, args...)})
	}
}

func (b *Base[T]) bind(target T) {
	b.target = target
}

// binder is satisfied by any type embedding Base[T].
type binder[T any] interface {
	bind(target T)
}
