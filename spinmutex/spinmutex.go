// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package spinmutex implements the mutex contract with a busy-wait spinlock.
//
// Contended accessors spin on a compare-and-swap, yielding the processor
// between attempts. That makes it suitable for very short critical sections
// where the cost of parking a goroutine exceeds the cost of spinning; for
// anything longer, use stdmutex. Re-entering an accessor on an instance the
// calling goroutine already holds panics instead of spinning forever.
package spinmutex

import (
	"runtime"
	"sync/atomic"

	mutex "github.com/JosefUtbult/general-mutex"
	"github.com/JosefUtbult/general-mutex/internal/gid"
	"golang.org/x/sys/cpu"
)

var _ mutex.Mutex[int] = (*Mutex[int])(nil)

// Mutex protects a value of type T with a spinlock. The zero value is not
// useful — use [New].
type Mutex[T any] struct {
	state atomic.Uint32
	_     cpu.CacheLinePad // keep the spin word off the data's cache line
	owner atomic.Uint64    // goroutine holding state, 0 when free
	data  T
}

// New returns a mutex owning initial.
func New[T any](initial T) *Mutex[T] {
	return &Mutex[T]{data: initial}
}

// Lock runs read with shared access to the protected value, spinning until
// any other holder releases the mutex. A re-entrant call from the goroutine
// already holding this instance panics with a [*mutex.ReentrantError].
func (m *Mutex[T]) Lock(read func(T)) {
	defer m.acquire()()
	read(m.data)
}

// LockMut runs write with exclusive access to the protected value, spinning
// until any other holder releases the mutex. A re-entrant call from the
// goroutine already holding this instance panics with a
// [*mutex.ReentrantError].
func (m *Mutex[T]) LockMut(write func(*T)) {
	defer m.acquire()()
	write(&m.data)
}

func (m *Mutex[T]) acquire() (release func()) {
	g := gid.Current()
	if m.owner.Load() == g {
		panic(&mutex.ReentrantError{Goroutine: g})
	}
	for !m.state.CompareAndSwap(0, 1) {
		// Let the holder run; on GOMAXPROCS=1 a bare spin would
		// never observe a release.
		runtime.Gosched()
	}
	m.owner.Store(g)
	return func() {
		m.owner.Store(0)
		m.state.Store(0)
	}
}
