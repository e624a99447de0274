// Package testutil builds small WebAssembly guests for tests.
//
// Guests are encoded directly in the binary format so tests do not depend
// on an external toolchain.
package testutil

import "github.com/woxQAQ/onu-runtime/api/onu"

// Value types.
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// FuncType is a function signature.
type FuncType struct {
	Params  []byte
	Results []byte
}

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   uint32
}

// Func is a function defined by the module. Body is the instruction
// sequence including the final End.
type Func struct {
	Type   uint32
	Locals []byte
	Body   []byte
	Export string
}

// Module is a guest module description.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []Func

	// MemoryPages > 0 defines and exports "memory".
	MemoryPages uint32

	// HeapBase > 0 defines a mutable i32 global (index 0) starting there,
	// used by BumpMalloc.
	HeapBase int32
}

// Encode returns the binary module.
func (m *Module) Encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.Types) > 0 {
		items := make([][]byte, 0, len(m.Types))
		for _, t := range m.Types {
			item := []byte{0x60}
			item = append(item, bytesVec(t.Params)...)
			item = append(item, bytesVec(t.Results)...)
			items = append(items, item)
		}
		out = append(out, section(1, vec(items))...)
	}

	if len(m.Imports) > 0 {
		items := make([][]byte, 0, len(m.Imports))
		for _, imp := range m.Imports {
			item := name(imp.Module)
			item = append(item, name(imp.Name)...)
			item = append(item, 0x00)
			item = append(item, uleb(uint64(imp.Type))...)
			items = append(items, item)
		}
		out = append(out, section(2, vec(items))...)
	}

	if len(m.Funcs) > 0 {
		items := make([][]byte, 0, len(m.Funcs))
		for _, f := range m.Funcs {
			items = append(items, uleb(uint64(f.Type)))
		}
		out = append(out, section(3, vec(items))...)
	}

	if m.MemoryPages > 0 {
		limits := append([]byte{0x00}, uleb(uint64(m.MemoryPages))...)
		out = append(out, section(5, vec([][]byte{limits}))...)
	}

	if m.HeapBase > 0 {
		global := []byte{I32, 0x01, 0x41}
		global = append(global, sleb(int64(m.HeapBase))...)
		global = append(global, 0x0b)
		out = append(out, section(6, vec([][]byte{global}))...)
	}

	var exports [][]byte
	if m.MemoryPages > 0 {
		exports = append(exports, append(name(onu.ExportMemory), 0x02, 0x00))
	}
	for i, f := range m.Funcs {
		if f.Export == "" {
			continue
		}
		item := append(name(f.Export), 0x00)
		item = append(item, uleb(uint64(len(m.Imports)+i))...)
		exports = append(exports, item)
	}
	if len(exports) > 0 {
		out = append(out, section(7, vec(exports))...)
	}

	if len(m.Funcs) > 0 {
		items := make([][]byte, 0, len(m.Funcs))
		for _, f := range m.Funcs {
			locals := make([][]byte, 0, len(f.Locals))
			for _, l := range f.Locals {
				locals = append(locals, []byte{0x01, l})
			}
			body := append(vec(locals), f.Body...)
			items = append(items, append(uleb(uint64(len(body))), body...))
		}
		out = append(out, section(10, vec(items))...)
	}

	return out
}

// FuncIndex returns the function index of the i-th defined function.
func (m *Module) FuncIndex(i int) uint32 {
	return uint32(len(m.Imports) + i)
}

// Instructions.

func I32Const(v int32) []byte { return append([]byte{0x41}, sleb(int64(v))...) }
func I64Const(v int64) []byte { return append([]byte{0x42}, sleb(v)...) }
func Call(idx uint32) []byte  { return append([]byte{0x10}, uleb(uint64(idx))...) }
func LocalGet(i uint32) []byte { return append([]byte{0x20}, uleb(uint64(i))...) }
func LocalTee(i uint32) []byte { return append([]byte{0x22}, uleb(uint64(i))...) }

const (
	OpI64Sub byte = 0x7d
	OpDrop   byte = 0x1a
	OpEnd    byte = 0x0b
)

// Code concatenates instruction fragments and appends End.
func Code(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return append(out, OpEnd)
}

// BumpMalloc is a malloc(i32) -> i32 body that hands out memory from the
// HeapBase global and never reuses it.
func BumpMalloc() []byte {
	return []byte{
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
		OpEnd,
	}
}

// Nop is an empty body.
func Nop() []byte {
	return []byte{OpEnd}
}

// Spin is a body that loops forever.
func Spin() []byte {
	return []byte{
		0x03, 0x40, // loop
		0x0c, 0x00, // br 0
		OpEnd,      // end loop
		OpEnd,
	}
}

func section(id byte, body []byte) []byte {
	out := append([]byte{id}, uleb(uint64(len(body)))...)
	return append(out, body...)
}

func vec(items [][]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func bytesVec(b []byte) []byte {
	return append(uleb(uint64(len(b))), b...)
}

func name(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
