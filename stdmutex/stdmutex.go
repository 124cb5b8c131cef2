// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package stdmutex implements the mutex contract on top of sync.Mutex.
//
// It is the implementation to reach for on hosted targets with real
// threads: accessors block under cross-goroutine contention like any
// ordinary mutex. Unlike sync.Mutex, re-entering an accessor on an instance
// the calling goroutine already holds panics immediately instead of
// deadlocking.
package stdmutex

import (
	"sync"
	"sync/atomic"

	mutex "github.com/JosefUtbult/general-mutex"
	"github.com/JosefUtbult/general-mutex/internal/gid"
)

var _ mutex.Mutex[int] = (*Mutex[int])(nil)

// Mutex protects a value of type T with a sync.Mutex. The zero value is not
// useful — use [New].
type Mutex[T any] struct {
	mu    sync.Mutex
	owner atomic.Uint64 // goroutine holding mu, 0 when free
	data  T
}

// New returns a mutex owning initial.
func New[T any](initial T) *Mutex[T] {
	return &Mutex[T]{data: initial}
}

// Lock runs read with shared access to the protected value, blocking until
// any other holder releases the mutex. A re-entrant call from the goroutine
// already holding this instance panics with a [*mutex.ReentrantError].
func (m *Mutex[T]) Lock(read func(T)) {
	defer m.acquire()()
	read(m.data)
}

// LockMut runs write with exclusive access to the protected value, blocking
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
	m.mu.Lock()
	m.owner.Store(g)
	return func() {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}
