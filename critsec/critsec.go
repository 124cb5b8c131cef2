// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package critsec implements the mutex contract on top of a single
// process-wide critical section.
//
// It models the embedded pattern of protecting data by suspending everything
// else (masking interrupts): there is exactly one critical section in the
// process, and every accessor of every critsec.Mutex enters it. The section
// is re-entrant per goroutine, so an accessor closure may use other critsec
// instances, mirroring nested critical sections on real hardware. Nested
// access to the same instance is a borrow violation and panics.
//
// The cost of the shared section is that unrelated critsec mutexes contend
// with each other. That is the honest price of the primitive being modeled;
// if independent locks are wanted, use stdmutex.
package critsec

import (
	"sync"
	"sync/atomic"

	mutex "github.com/JosefUtbult/general-mutex"
	"github.com/JosefUtbult/general-mutex/internal/gid"
)

var _ mutex.Mutex[int] = (*Mutex[int])(nil)

// section is the one critical section shared by every Mutex in the process.
var section struct {
	mu    sync.Mutex
	owner atomic.Uint64 // goroutine inside the section, 0 when free
	depth int           // nesting depth; guarded by mu
}

func enter(g uint64) {
	if section.owner.Load() == g {
		section.depth++
		return
	}
	section.mu.Lock()
	section.owner.Store(g)
	section.depth = 1
}

func exit() {
	section.depth--
	if section.depth == 0 {
		section.owner.Store(0)
		section.mu.Unlock()
	}
}

// Mutex protects a value of type T with the process-wide critical section.
// The zero value is not useful — use [New].
type Mutex[T any] struct {
	held atomic.Uint64 // goroutine inside an accessor on this instance
	data T
}

// New returns a mutex owning initial.
func New[T any](initial T) *Mutex[T] {
	return &Mutex[T]{data: initial}
}

// Lock enters the critical section and runs read with shared access to the
// protected value. A nested call on the same instance panics with a
// [*mutex.ReentrantError]; nested calls on other critsec instances are
// permitted.
func (m *Mutex[T]) Lock(read func(T)) {
	defer m.acquire()()
	read(m.data)
}

// LockMut enters the critical section and runs write with exclusive access
// to the protected value. A nested call on the same instance panics with a
// [*mutex.ReentrantError]; nested calls on other critsec instances are
// permitted.
func (m *Mutex[T]) LockMut(write func(*T)) {
	defer m.acquire()()
	write(&m.data)
}

func (m *Mutex[T]) acquire() (release func()) {
	g := gid.Current()
	if m.held.Load() == g {
		panic(&mutex.ReentrantError{Goroutine: g})
	}
	enter(g)
	m.held.Store(g)
	return func() {
		m.held.Store(0)
		exit()
	}
}
