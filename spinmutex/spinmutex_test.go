// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package spinmutex_test

import (
	"testing"

	"golang.org/x/sync/errgroup"

	mutex "github.com/JosefUtbult/general-mutex"
	"github.com/JosefUtbult/general-mutex/mutextest"
	"github.com/JosefUtbult/general-mutex/spinmutex"
)

func TestConformance(t *testing.T) {
	mk := func(initial int) mutex.Mutex[int] { return spinmutex.New(initial) }
	mutextest.Run(t, mk)
	mutextest.RunRecursive(t, mk)
}

func TestContention(t *testing.T) {
	// Critical sections here are tiny, which is the one situation the
	// spinlock is meant for.
	const (
		goroutines = 8
		increments = 1000
	)

	m := spinmutex.New(0)
	var group errgroup.Group
	for g := 0; g < goroutines; g++ {
		group.Go(func() error {
			for n := 0; n < increments; n++ {
				m.LockMut(func(v *int) { *v++ })
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := mutex.With(m, func(v int) int { return v }); got != goroutines*increments {
		t.Errorf("counter = %d, want %d", got, goroutines*increments)
	}
}
