// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

//go:build linux

package cpuid

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// getcpu returns the CPU the calling thread is running on, per getcpu(2).
// golang.org/x/sys/unix exposes SYS_GETCPU but no Getcpu wrapper, so the
// syscall is made directly.
func getcpu() int32 {
	var cpu uint32
	_, _, errno := unix.RawSyscall(unix.SYS_GETCPU, uintptr(unsafe.Pointer(&cpu)), 0, 0)
	if errno != 0 {
		return fallbackID()
	}
	return int32(cpu)
}
