// Package program loads Onu program bundles: a directory holding a
// manifest.yaml and the compiled Wasm module it names.
package program

import (
	"slices"
	"time"

	"github.com/woxQAQ/onu-runtime/internal/wasm"
)

// Program is a loaded bundle with its compiled module.
type Program struct {
	Manifest *Manifest
	Compiled *wasm.CompiledModule
	LoadedAt time.Time
}

func (p *Program) Name() string {
	return p.Manifest.Name
}

func (p *Program) Version() string {
	return p.Manifest.Version
}

// Entry returns the export Run starts.
func (p *Program) Entry() string {
	return p.Manifest.EntryPoint()
}

// Imports returns the runtime symbols the module links against.
func (p *Program) Imports() []string {
	return p.Compiled.Imports
}

// Uses reports whether the program imports the runtime symbol.
func (p *Program) Uses(symbol string) bool {
	return slices.Contains(p.Compiled.Imports, symbol)
}
