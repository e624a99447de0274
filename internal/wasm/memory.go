package wasm

import (
	"bytes"
	"context"
	"errors"

	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/onu-runtime/api/onu"
	"github.com/woxQAQ/onu-runtime/pkg/text"
)

// linearMemory is the part of api.Memory the runtime needs.
type linearMemory interface {
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// Allocator reserves guest memory for texts handed to the guest.
type Allocator interface {
	Malloc(ctx context.Context, size uint32) (uint32, error)
}

var (
	errNoMemory   = errors.New("module has no memory")
	errOutOfRange = errors.New("out of range")
	errNullResult = errors.New("allocator returned null")
)

// Memory reads and writes NUL-terminated texts in a guest's linear memory.
//
// Guest pointers are untrusted: every read is bounded by the current
// memory size, and bytes are copied out before the guest can run again
// (a malloc call may grow and move the memory).
type Memory struct {
	mem   linearMemory
	alloc Allocator
}

// NewMemory creates a memory helper for the calling guest module.
func NewMemory(module api.Module) *Memory {
	m := &Memory{alloc: &exportAllocator{module: module}}
	if mem := module.Memory(); mem != nil {
		m.mem = mem
	}
	return m
}

// ReadText copies the NUL-terminated text starting at ptr. A text that
// runs to the end of memory without a terminator is cut there.
func (m *Memory) ReadText(ptr uint32) (text.Text, error) {
	if m.mem == nil {
		return text.Text{}, &MemoryAccessError{Operation: "read", Address: ptr, Err: errNoMemory}
	}
	size := m.mem.Size()
	if ptr >= size {
		return text.Text{}, &MemoryAccessError{Operation: "read", Address: ptr, Err: errOutOfRange}
	}

	buf, ok := m.mem.Read(ptr, size-ptr)
	if !ok {
		return text.Text{}, &MemoryAccessError{Operation: "read", Address: ptr, Length: size - ptr, Err: errOutOfRange}
	}
	if end := bytes.IndexByte(buf, text.Terminator); end >= 0 {
		buf = buf[:end]
	}

	return text.FromBytes(bytes.Clone(buf)), nil
}

// ReadBytes reads raw bytes from Wasm memory.
func (m *Memory) ReadBytes(ptr uint32, length uint32) ([]byte, bool) {
	if m.mem == nil {
		return nil, false
	}
	return m.mem.Read(ptr, length)
}

// WriteText allocates len+1 bytes in the guest, copies the text and its
// terminator there and returns the pointer. The guest owns the result.
func (m *Memory) WriteText(ctx context.Context, t *text.Owned) (uint32, error) {
	data := t.Terminated()
	size := uint32(len(data))

	ptr, err := m.alloc.Malloc(ctx, size)
	if err != nil {
		return 0, &AllocationError{Size: size, Err: err}
	}
	if ptr == 0 {
		return 0, &AllocationError{Size: size, Err: errNullResult}
	}

	if m.mem == nil {
		return 0, &MemoryAccessError{Operation: "write", Address: ptr, Length: size, Err: errNoMemory}
	}
	if !m.mem.Write(ptr, data) {
		return 0, &MemoryAccessError{Operation: "write", Address: ptr, Length: size, Err: errOutOfRange}
	}

	return ptr, nil
}

// exportAllocator calls the guest's exported malloc.
type exportAllocator struct {
	module api.Module
}

func (a *exportAllocator) Malloc(ctx context.Context, size uint32) (uint32, error) {
	fn := a.module.ExportedFunction(onu.ExportMalloc)
	if fn == nil {
		return 0, &FunctionNotFoundError{ModuleName: a.module.Name(), FunctionName: onu.ExportMalloc}
	}

	results, err := fn.Call(ctx, api.EncodeU32(size))
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errNullResult
	}

	return api.DecodeU32(results[0]), nil
}
