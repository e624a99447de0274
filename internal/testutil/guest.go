package testutil

import "github.com/woxQAQ/onu-runtime/api/onu"

// Type indices used by RuntimeGuest.
const (
	typeI64ToI32 uint32 = iota
	typeI32ToI64
	typeI32ToVoid
	typeI32ToI32
	typeVoid
	typeI64ToI64
	typeI32I32ToI32
	typeI32I64ToI64
	typeI32I64I64ToI32
)

// Import indices used by RuntimeGuest.
const (
	fnAsText uint32 = iota
	fnLen
	fnBroadcasts
	fnJoinedWith
	fnCharAt
	fnInitOf
	fnCharFromCode
	fnSetChar
)

// RuntimeGuestExports lists what RuntimeGuest exports besides memory,
// malloc and free.
//
//	_start         prints "42" then "-7"
//	text_len(n)    len(as-text(n))
//	last_code(n)   char-at(as-text(n), len(as-text(n)) - 1)
//	shout()        prints init-of(as-text(1234)) joined with char-from-code(33): "123!"
//	spell()        prints set-char(as-text(1234), 0, 'x'): "x234"
var RuntimeGuestExports = []string{"_start", "text_len", "last_code", "shout", "spell"}

// GuestTypes are the signatures of every runtime symbol as a guest
// declares them, indexed by the type constants above.
func guestTypes() []FuncType {
	return []FuncType{
		typeI64ToI32:       {Params: []byte{I64}, Results: []byte{I32}},
		typeI32ToI64:       {Params: []byte{I32}, Results: []byte{I64}},
		typeI32ToVoid:      {Params: []byte{I32}},
		typeI32ToI32:       {Params: []byte{I32}, Results: []byte{I32}},
		typeVoid:           {},
		typeI64ToI64:       {Params: []byte{I64}, Results: []byte{I64}},
		typeI32I32ToI32:    {Params: []byte{I32, I32}, Results: []byte{I32}},
		typeI32I64ToI64:    {Params: []byte{I32, I64}, Results: []byte{I64}},
		typeI32I64I64ToI32: {Params: []byte{I32, I64, I64}, Results: []byte{I32}},
	}
}

// RuntimeGuest returns a guest that imports the runtime from module and
// exercises every producing and consuming symbol.
func RuntimeGuest(module string) []byte {
	m := &Module{
		Types: guestTypes(),
		Imports: []Import{
			fnAsText:       {Module: module, Name: onu.AsText, Type: typeI64ToI32},
			fnLen:          {Module: module, Name: onu.Len, Type: typeI32ToI64},
			fnBroadcasts:   {Module: module, Name: onu.Broadcasts, Type: typeI32ToVoid},
			fnJoinedWith:   {Module: module, Name: onu.JoinedWith, Type: typeI32I32ToI32},
			fnCharAt:       {Module: module, Name: onu.CharAt, Type: typeI32I64ToI64},
			fnInitOf:       {Module: module, Name: onu.InitOf, Type: typeI32ToI32},
			fnCharFromCode: {Module: module, Name: onu.CharFromCode, Type: typeI64ToI32},
			fnSetChar:      {Module: module, Name: onu.SetChar, Type: typeI32I64I64ToI32},
		},
		MemoryPages: 1,
		HeapBase:    1024,
	}

	m.Funcs = []Func{
		{Type: typeI32ToI32, Body: BumpMalloc(), Export: onu.ExportMalloc},
		{Type: typeI32ToVoid, Body: Nop(), Export: onu.ExportFree},
		{
			Type:   typeVoid,
			Export: "_start",
			Body: Code(
				I64Const(4), Call(fnAsText),
				I64Const(2), Call(fnAsText),
				Call(fnJoinedWith), Call(fnBroadcasts),
				I64Const(-7), Call(fnAsText), Call(fnBroadcasts),
			),
		},
		{
			Type:   typeI64ToI64,
			Export: "text_len",
			Body:   Code(LocalGet(0), Call(fnAsText), Call(fnLen)),
		},
		{
			Type:   typeI64ToI64,
			Export: "last_code",
			Locals: []byte{I32},
			Body: Code(
				LocalGet(0), Call(fnAsText), LocalTee(1),
				LocalGet(1), Call(fnLen),
				I64Const(1), []byte{OpI64Sub},
				Call(fnCharAt),
			),
		},
		{
			Type:   typeVoid,
			Export: "shout",
			Body: Code(
				I64Const(1234), Call(fnAsText), Call(fnInitOf),
				I64Const(33), Call(fnCharFromCode),
				Call(fnJoinedWith), Call(fnBroadcasts),
			),
		},
		{
			Type:   typeVoid,
			Export: "spell",
			Body: Code(
				I64Const(1234), Call(fnAsText),
				I64Const(0), I64Const('x'), Call(fnSetChar),
				Call(fnBroadcasts),
			),
		},
	}

	return m.Encode()
}

// ImportingGuest returns a guest with memory that imports a single
// function and does nothing else. Used to exercise link checks.
func ImportingGuest(module, fn string, t FuncType) []byte {
	m := &Module{
		Types:       []FuncType{t},
		Imports:     []Import{{Module: module, Name: fn, Type: 0}},
		MemoryPages: 1,
	}
	return m.Encode()
}

// EmptyGuest is the smallest valid module.
func EmptyGuest() []byte {
	return (&Module{}).Encode()
}

// MainGuest exports main() -> i32 returning code.
func MainGuest(code int32) []byte {
	m := &Module{
		Types: []FuncType{{Results: []byte{I32}}},
		Funcs: []Func{{Type: 0, Body: Code(I32Const(code)), Export: "main"}},
	}
	return m.Encode()
}

// ExitGuest exports _start, which calls WASI proc_exit(code).
func ExitGuest(code int32) []byte {
	m := &Module{
		Types:   []FuncType{{Params: []byte{I32}}, {}},
		Imports: []Import{{Module: "wasi_snapshot_preview1", Name: "proc_exit", Type: 0}},
		Funcs:   []Func{{Type: 1, Body: Code(I32Const(code), Call(0)), Export: "_start"}},
	}
	return m.Encode()
}

// SpinGuest exports a _start that never returns.
func SpinGuest() []byte {
	m := &Module{
		Types: []FuncType{{}},
		Funcs: []Func{{Type: 0, Body: Spin(), Export: "_start"}},
	}
	return m.Encode()
}
