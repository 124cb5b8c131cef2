// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package mutextest_test

import (
	"testing"

	mutex "github.com/JosefUtbult/general-mutex"
	"github.com/JosefUtbult/general-mutex/mutextest"
)

// plainMutex is the smallest possible conforming implementation: closure
// scoping with no exclusion mechanism at all, valid only for single-goroutine
// use. It keeps the battery's common half honest without dragging a real
// implementation into this package's tests.
type plainMutex struct {
	held bool
	v    int
}

func (m *plainMutex) Lock(read func(int)) {
	defer m.acquire()()
	read(m.v)
}

func (m *plainMutex) LockMut(write func(*int)) {
	defer m.acquire()()
	write(&m.v)
}

func (m *plainMutex) acquire() (release func()) {
	if m.held {
		panic(&mutex.ReentrantError{Goroutine: 0})
	}
	m.held = true
	return func() { m.held = false }
}

func TestBattery(t *testing.T) {
	mk := func(initial int) mutex.Mutex[int] { return &plainMutex{v: initial} }
	mutextest.Run(t, mk)
	mutextest.RunRecursive(t, mk)
}
