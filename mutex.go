// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package mutex defines a uniform capability contract for mutual-exclusion
// primitives that own the value they protect.
//
// Concrete implementations differ wildly in how they provide exclusivity: an
// operating-system mutex (stdmutex), a busy-wait spinlock (spinmutex), a
// process-global critical section (critsec), or a runtime check that the
// caller is executing in the one context level allowed to touch the value at
// all (contextmutex). Application code written against [Mutex] works with any
// of them, so the choice of primitive is a deployment decision, not a code
// change.
//
// Every implementation also provides a `New(initial T)` constructor. Go
// interfaces cannot express constructors, so the conformance suite in
// mutextest binds them through a factory function instead.
package mutex

import "fmt"

// A Mutex owns a value of type T and grants access to it exclusively through
// closure-scoped accessors. No other path to the value exists, so no
// reference to it can outlive an accessor call.
//
// Accessors either run the supplied closure exactly once or panic without
// running it at all; they never silently skip it and never run it twice.
// What "exclusive" means, and which misuses are detected, is up to the
// concrete implementation.
type Mutex[T any] interface {
	// Lock runs read with shared access to the protected value. No other
	// access, shared or exclusive, is interleaved with read's execution.
	Lock(read func(T))

	// LockMut runs write with exclusive access to the protected value.
	LockMut(write func(*T))
}

// With runs read under m's lock and returns its result.
//
// It exists because Go methods cannot introduce type parameters: the [Mutex]
// accessors cannot be generic in their result type, so result propagation is
// layered on top of them here.
func With[T, R any](m Mutex[T], read func(T) R) R {
	var r R
	m.Lock(func(v T) { r = read(v) })
	return r
}

// WithMut runs write under m's lock with exclusive access and returns its
// result.
func WithMut[T, R any](m Mutex[T], write func(*T) R) R {
	var r R
	m.LockMut(func(v *T) { r = write(v) })
	return r
}

// A ReentrantError is the panic payload used by blocking-style
// implementations when a goroutine re-enters an accessor on an instance it is
// already holding. Re-entrance would otherwise deadlock (or livelock, for a
// spinning implementation); it is always a logic defect in the caller, so it
// is fatal rather than recoverable.
type ReentrantError struct {
	// Goroutine is the ID of the goroutine that attempted the
	// re-entrant access.
	Goroutine uint64
}

func (e *ReentrantError) Error() string {
	return fmt.Sprintf("mutex: re-entrant lock of held mutex from goroutine %d", e.Goroutine)
}
