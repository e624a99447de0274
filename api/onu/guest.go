//go:build wasm

package onu

// Guest-side bindings for Onu programs written in Go and compiled with
// GOOS=wasip1 GOARCH=wasm. Texts cross the boundary as pointers into this
// module's memory; every text the runtime returns was allocated through
// malloc below and is released with free.

import (
	"runtime"
	"unsafe"
)

//go:wasmimport env as-text
func importAsText(n int64) uint32

//go:wasmimport env joined-with
func importJoinedWith(a, b uint32) uint32

//go:wasmimport env len
func importLen(s uint32) int64

//go:wasmimport env char-at
func importCharAt(s uint32, i int64) int64

//go:wasmimport env init-of
func importInitOf(s uint32) uint32

//go:wasmimport env char-from-code
func importCharFromCode(code int64) uint32

//go:wasmimport env broadcasts
func importBroadcasts(s uint32)

// heap keeps runtime-owned allocations reachable until freed.
var heap = make(map[uint32][]byte)

//go:wasmexport malloc
func malloc(size uint32) uint32 {
	if size == 0 {
		size = 1
	}
	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))
	heap[ptr] = buf
	return ptr
}

//go:wasmexport free
func free(ptr uint32) {
	delete(heap, ptr)
}

// borrow passes s to the runtime for the duration of fn.
func borrow(s string, fn func(ptr uint32)) {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	fn(uint32(uintptr(unsafe.Pointer(&buf[0]))))
	runtime.KeepAlive(buf)
}

// take copies a runtime-produced text into Go memory and frees it.
func take(ptr uint32) string {
	buf, ok := heap[ptr]
	if !ok {
		return ""
	}
	free(ptr)
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// Itoa formats n with the runtime's as-text.
func Itoa(n int64) string {
	return take(importAsText(n))
}

// Join concatenates a and b with the runtime's joined-with.
func Join(a, b string) string {
	var out string
	borrow(a, func(pa uint32) {
		borrow(b, func(pb uint32) {
			out = take(importJoinedWith(pa, pb))
		})
	})
	return out
}

// Len returns the runtime's len of s.
func Len(s string) int64 {
	var n int64
	borrow(s, func(p uint32) { n = importLen(p) })
	return n
}

// CharAt returns the runtime's char-at of s.
func CharAt(s string, i int64) int64 {
	var c int64
	borrow(s, func(p uint32) { c = importCharAt(p, i) })
	return c
}

// Init returns the runtime's init-of of s.
func Init(s string) string {
	var out string
	borrow(s, func(p uint32) { out = take(importInitOf(p)) })
	return out
}

// Char returns the runtime's char-from-code of code.
func Char(code int64) string {
	return take(importCharFromCode(code))
}

// Broadcast prints s through the runtime.
func Broadcast(s string) {
	borrow(s, importBroadcasts)
}
