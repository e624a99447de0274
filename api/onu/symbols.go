// Package onu defines the link-time names of the Onu runtime primitives.
//
// Compiled programs import these names from ImportModule. Integers are
// wasm i64. Texts are i32 pointers to NUL-terminated bytes in the guest's
// linear memory; texts returned by the runtime are allocated with the
// guest's exported malloc and belong to the guest.
package onu

// ImportModule is the module name guests import the runtime from. LLVM
// places undefined externals in "env".
const ImportModule = "env"

// Required runtime symbols.
const (
	AsText       = "as-text"        // (i64) -> i32
	JoinedWith   = "joined-with"    // (i32, i32) -> i32
	Len          = "len"            // (i32) -> i64
	CharAt       = "char-at"        // (i32, i64) -> i64
	InitOf       = "init-of"        // (i32) -> i32
	CharFromCode = "char-from-code" // (i64) -> i32
	Broadcasts   = "broadcasts"     // (i32) -> ()
)

// Additional symbols the interpreter front-end has always offered.
const (
	SetChar = "set-char" // (i32, i64, i64) -> i32
	Emit    = "emit"     // (i32) -> (), same as Broadcasts
)

// Guest exports the host relies on.
const (
	ExportMemory = "memory"
	ExportMalloc = "malloc"
	ExportFree   = "free"
)
