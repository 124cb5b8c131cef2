// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package mutextest is a conformance battery for implementations of the
// mutex contract.
//
// A package providing a concrete mutex type runs the battery from its own
// tests:
//
//	func TestConformance(t *testing.T) {
//		mutextest.Run(t, func(initial int) mutex.Mutex[int] {
//			return stdmutex.New(initial)
//		})
//		mutextest.RunRecursive(t, func(initial int) mutex.Mutex[int] {
//			return stdmutex.New(initial)
//		})
//	}
//
// Run checks the behavior every implementation must share; RunRecursive
// additionally checks that blocking-style implementations turn re-entrance
// into an immediate panic rather than a deadlock, and applies only to them.
package mutextest

import (
	"testing"

	mutex "github.com/JosefUtbult/general-mutex"
)

// MakeMutex returns a fresh mutex under test owning initial. Each subtest
// calls it once, so instances are never shared between subtests.
type MakeMutex func(initial int) mutex.Mutex[int]

// Run exercises the behavior common to all implementations of the contract:
// construction, shared access, exclusive access, result propagation, and
// write visibility.
func Run(t *testing.T, mk MakeMutex) {
	t.Run("create", func(t *testing.T) {
		if m := mk(0); m == nil {
			t.Fatal("factory returned nil mutex")
		}
	})

	t.Run("lock", func(t *testing.T) {
		m := mk(11)

		calls := 0
		got := mutex.With(m, func(v int) int {
			calls++
			if v != 11 {
				t.Errorf("read closure observed %d, want 11", v)
			}
			return 255
		})
		if calls != 1 {
			t.Errorf("read closure ran %d times, want exactly 1", calls)
		}
		if got != 255 {
			t.Errorf("With = %d, want the closure's 255", got)
		}
	})

	t.Run("lock_mut", func(t *testing.T) {
		m := mk(0)

		calls := 0
		got := mutex.WithMut(m, func(v *int) int {
			calls++
			*v = 42
			return 255
		})
		if calls != 1 {
			t.Errorf("write closure ran %d times, want exactly 1", calls)
		}
		if got != 255 {
			t.Errorf("WithMut = %d, want the closure's 255", got)
		}

		m.Lock(func(v int) {
			if v != 42 {
				t.Errorf("read after write observed %d, want 42", v)
			}
		})
	})
}

// RunRecursive checks that re-entering an accessor from inside an active
// closure on the same instance panics with a [*mutex.ReentrantError] instead
// of deadlocking. It applies to blocking-style implementations only; the
// context-verified mutex documents same-level nesting as caller
// responsibility and would not pass.
func RunRecursive(t *testing.T, mk MakeMutex) {
	t.Run("recursive_lock", func(t *testing.T) {
		m := mk(0)
		inner := false
		wantReentrantPanic(t, func() {
			m.Lock(func(int) {
				m.Lock(func(int) { inner = true })
			})
		})
		if inner {
			t.Error("inner read closure ran despite re-entrance")
		}
	})

	t.Run("recursive_lock_mut", func(t *testing.T) {
		m := mk(0)
		inner := false
		wantReentrantPanic(t, func() {
			m.LockMut(func(*int) {
				m.LockMut(func(*int) { inner = true })
			})
		})
		if inner {
			t.Error("inner write closure ran despite re-entrance")
		}
	})
}

func wantReentrantPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		switch e := recover().(type) {
		case *mutex.ReentrantError:
		case nil:
			t.Error("re-entrant access did not panic")
		default:
			t.Errorf("re-entrant access panicked with %v (%T), want *mutex.ReentrantError", e, e)
		}
	}()
	f()
}
