// Copyright (c) JosefUtbult & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package gid reports the identity of the calling goroutine.
//
// The blocking-style mutex implementations use it to tell same-goroutine
// re-entrance (always a bug, would deadlock) apart from ordinary
// cross-goroutine contention (normal, should block).
package gid

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

// Current returns the runtime's ID for the calling goroutine.
//
// The runtime does not expose goroutine IDs directly, so this parses the
// "goroutine N [running]:" header of a single-goroutine stack dump. That
// costs a runtime.Stack call per invocation, which is acceptable on the
// accessor entry path of lock types whose critical sections are expected to
// dwarf it.
func Current() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(header, ' '); i >= 0 {
		header = header[:i]
	}
	id, err := strconv.ParseUint(string(header), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("gid: unparsable stack header %q: %v", buf[:n], err))
	}
	return id
}
