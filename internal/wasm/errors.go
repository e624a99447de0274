package wasm

import (
	"fmt"
	"strings"
	"time"

	"github.com/tetratelabs/wazero/api"
)

// CompilationError occurs when Wasm module compilation fails
type CompilationError struct {
	ModuleName string
	Err        error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile Wasm module '%s': %v", e.ModuleName, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// InstantiationError occurs when module instantiation fails
type InstantiationError struct {
	ModuleName string
	InstanceID string
	Err        error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate module '%s' (instance: %s): %v",
		e.ModuleName, e.InstanceID, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// ModuleNotFoundError occurs when a module is not in cache
type ModuleNotFoundError struct {
	ModuleName string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module '%s' not found in cache", e.ModuleName)
}

// FunctionNotFoundError occurs when an exported function is missing
type FunctionNotFoundError struct {
	ModuleName   string
	FunctionName string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function '%s' not found in module '%s'",
		e.FunctionName, e.ModuleName)
}

// MemoryAccessError occurs when memory operations fail
type MemoryAccessError struct {
	Operation string
	Address   uint32
	Length    uint32
	Err       error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("memory access failed (op=%s, addr=%d, len=%d): %v",
		e.Operation, e.Address, e.Length, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

// AllocationError occurs when the guest allocator cannot provide memory.
type AllocationError struct {
	Size uint32
	Err  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("guest allocation of %d bytes failed: %v", e.Size, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// HostFunctionError records a runtime symbol that could not do its work.
// The guest never sees it; it is logged.
type HostFunctionError struct {
	FunctionName string
	Err          error
}

func (e *HostFunctionError) Error() string {
	return fmt.Sprintf("host function '%s' failed: %v", e.FunctionName, e.Err)
}

func (e *HostFunctionError) Unwrap() error {
	return e.Err
}

// TimeoutError occurs when Wasm execution times out
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Wasm execution timed out after %v", e.Duration)
}

// ExitError occurs when a program exits with a non-zero status.
type ExitError struct {
	InstanceID string
	Code       uint32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("program (instance: %s) exited with code %d", e.InstanceID, e.Code)
}

// InstanceLimitError occurs when the runtime already holds the maximum
// number of instances.
type InstanceLimitError struct {
	Max int
}

func (e *InstanceLimitError) Error() string {
	return fmt.Sprintf("instance limit reached (max: %d)", e.Max)
}

// UnresolvedSymbolError occurs when a module imports a name the runtime
// does not provide.
type UnresolvedSymbolError struct {
	ModuleName string
	Import     string
	Symbol     string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("module '%s' imports unknown runtime symbol '%s.%s'",
		e.ModuleName, e.Import, e.Symbol)
}

// SignatureMismatchError occurs when a module imports a runtime symbol
// with the wrong signature.
type SignatureMismatchError struct {
	ModuleName string
	Symbol     string
	Want       string
	Got        string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("module '%s' imports '%s' as %s, runtime provides %s",
		e.ModuleName, e.Symbol, e.Got, e.Want)
}

// FormatSignature renders wasm types as "(i32, i64) -> (i32)".
func FormatSignature(params, results []api.ValueType) string {
	names := func(ts []api.ValueType) string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = api.ValueTypeName(t)
		}
		return strings.Join(out, ", ")
	}
	return "(" + names(params) + ") -> (" + names(results) + ")"
}
