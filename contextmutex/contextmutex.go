// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package contextmutex provides a mutex for single-core targets whose
// exclusivity guarantee comes from knowing which execution context is
// running, not from blocking or atomic operations.
//
// On a single-core processor only one execution context (interrupt handler,
// kernel thread, idle loop, ...) runs at any instant, so data touched from
// exactly one context level needs no lock at all: the hardware already
// serializes every access. The only remaining hazard is a caller that
// believes it is running at the mutex's designated level when it is not. A
// [Mutex] converts that silent data race into an immediate panic by checking
// the current level, as reported by a caller-supplied [Reporter], on every
// access.
//
// A typical reporter on an ARM Cortex-M target reads the IPSR register and
// maps exception numbers to levels:
//
//	type Level int
//
//	const (
//		Idle Level = iota
//		Kernel
//		Interrupt
//	)
//
//	type ipsrReporter struct{}
//
//	func (ipsrReporter) CurrentLevel() Level {
//		switch readIPSR() {
//		case 0:
//			return Idle
//		case 16 + 28: // SysTick-driven scheduler
//			return Kernel
//		default:
//			return Interrupt
//		}
//	}
//
//	var ticks = contextmutex.New[uint64](ipsrReporter{}, Kernel, 0)
//
// The mutex never blocks and holds no lock state between calls: every access
// either proceeds immediately or panics. Access from the designated level is
// totally ordered by the single-core execution order.
//
// Nested access to the same instance from the designated level (calling an
// accessor from inside an already-running accessor closure) passes the level
// check but aliases the protected value. The mutex does not detect it; keeping
// each instance's accessors non-nested is the caller's responsibility. The
// blocking-style implementations in stdmutex, spinmutex, and critsec do
// detect re-entrance, because for them it would deadlock rather than merely
// alias.
package contextmutex

import (
	"fmt"

	mutex "github.com/JosefUtbult/general-mutex"
)

var _ mutex.Mutex[int] = (*Mutex[int, int])(nil)

// A Reporter reports the execution context level currently running.
//
// The embedding application supplies one per hardware target, typically as a
// zero-size type reading a processor status register. It must be callable
// from any context without taking a lock and must not change hardware state:
// the mutex queries it on every access, including accesses that are about to
// be rejected.
type Reporter[L comparable] interface {
	CurrentLevel() L
}

// Mutex protects a value of type T by permitting access only from a single
// fixed execution level.
//
// The target level and reporter are fixed by [New] and never change; every
// mutex constructed with the same arguments enforces the same policy. The
// zero value is not useful — use [New].
//
// Mutex performs no locking, no atomic operations, and never blocks. Its
// exclusivity rests entirely on the external invariant that the target is a
// single-core system where at most one context level executes at a time.
// It is therefore not safe for use across OS threads; it models hardware
// this package's host tests can only approximate.
type Mutex[T any, L comparable] struct {
	reporter Reporter[L]
	level    L
	data     T
}

// New returns a mutex owning initial that permits access only while reporter
// observes level.
func New[T any, L comparable](reporter Reporter[L], level L, initial T) *Mutex[T, L] {
	return &Mutex[T, L]{
		reporter: reporter,
		level:    level,
		data:     initial,
	}
}

// Level returns the fixed execution level this mutex is dedicated to.
func (m *Mutex[T, L]) Level() L { return m.level }

// Lock runs read with the protected value if the current execution level
// matches the mutex's target level, and panics with a [*LevelError]
// otherwise. read is never invoked on a level mismatch.
func (m *Mutex[T, L]) Lock(read func(T)) {
	m.check()
	read(m.data)
}

// LockMut runs write with exclusive access to the protected value if the
// current execution level matches the mutex's target level, and panics with
// a [*LevelError] otherwise. write is never invoked on a level mismatch.
func (m *Mutex[T, L]) LockMut(write func(*T)) {
	m.check()
	write(&m.data)
}

func (m *Mutex[T, L]) check() {
	if current := m.reporter.CurrentLevel(); current != m.level {
		panic(&LevelError[L]{Want: m.level, Got: current})
	}
}

// A LevelError is the panic payload for an access attempted from the wrong
// execution level. It is always a design defect in the caller's context
// partitioning, never a transient condition, so no recoverable form exists.
type LevelError[L comparable] struct {
	Want L // the mutex's fixed target level
	Got  L // the level the reporter observed at access time
}

func (e *LevelError[L]) Error() string {
	return fmt.Sprintf("contextmutex: attempted to lock level %v mutex from level %v", e.Want, e.Got)
}
