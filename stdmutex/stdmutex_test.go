// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package stdmutex_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	mutex "github.com/JosefUtbult/general-mutex"
	"github.com/JosefUtbult/general-mutex/mutextest"
	"github.com/JosefUtbult/general-mutex/stdmutex"
)

func TestConformance(t *testing.T) {
	mk := func(initial int) mutex.Mutex[int] { return stdmutex.New(initial) }
	mutextest.Run(t, mk)
	mutextest.RunRecursive(t, mk)
}

func TestContention(t *testing.T) {
	const (
		goroutines = 8
		increments = 1000
	)

	m := stdmutex.New(0)
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

func TestStructValue(t *testing.T) {
	type state struct {
		Name  string
		Peers []string
	}

	m := stdmutex.New(state{Name: "a"})
	m.LockMut(func(s *state) {
		s.Peers = append(s.Peers, "b", "c")
	})

	got := mutex.With(m, func(s state) state { return s })
	want := state{Name: "a", Peers: []string{"b", "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("protected state mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinctInstancesNest(t *testing.T) {
	// Re-entrance detection is per instance; holding one stdmutex must not
	// poison access to another.
	a := stdmutex.New(1)
	b := stdmutex.New(2)

	sum := 0
	a.Lock(func(av int) {
		b.Lock(func(bv int) {
			sum = av + bv
		})
	})
	if sum != 3 {
		t.Errorf("sum = %d, want 3", sum)
	}
}
