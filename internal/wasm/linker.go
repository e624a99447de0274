package wasm

import (
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/onu-runtime/api/onu"
	"github.com/woxQAQ/onu-runtime/internal/abi"
)

// hostBinding is the Go function wazero exposes for one symbol.
type hostBinding struct {
	fn     interface{}
	params []string
}

func (h *HostFunctions) bindings() map[string]hostBinding {
	return map[string]hostBinding{
		onu.AsText:       {h.asText, []string{"n"}},
		onu.JoinedWith:   {h.joinedWith, []string{"left", "right"}},
		onu.Len:          {h.length, []string{"s"}},
		onu.CharAt:       {h.charAt, []string{"s", "index"}},
		onu.InitOf:       {h.initOf, []string{"s"}},
		onu.CharFromCode: {h.charFromCode, []string{"code"}},
		onu.Broadcasts:   {h.broadcasts, []string{"s"}},
		onu.SetChar:      {h.setChar, []string{"s", "index", "code"}},
		onu.Emit:         {h.broadcasts, []string{"s"}},
	}
}

// exportHostFunctions registers every runtime symbol on the builder under
// its link name.
func exportHostFunctions(builder wazero.HostModuleBuilder, h *HostFunctions) wazero.HostModuleBuilder {
	bindings := h.bindings()
	for _, sym := range abi.Symbols() {
		b, ok := bindings[sym.Name]
		if !ok {
			continue
		}
		builder = builder.NewFunctionBuilder().
			WithFunc(b.fn).
			WithParameterNames(b.params...).
			Export(sym.Name)
	}
	return builder
}

// ValueType maps a runtime kind to its wasm representation. Texts are
// pointers into 32-bit linear memory.
func ValueType(k abi.Kind) api.ValueType {
	if k == abi.KindInteger {
		return api.ValueTypeI64
	}
	return api.ValueTypeI32
}

// WasmSignature returns the wasm parameter and result types of sym.
func WasmSignature(sym abi.Symbol) (params, results []api.ValueType) {
	params = make([]api.ValueType, len(sym.Params))
	for i, p := range sym.Params {
		params[i] = ValueType(p)
	}
	if sym.Result != abi.KindNone {
		results = []api.ValueType{ValueType(sym.Result)}
	}
	return params, results
}

// CheckImports verifies that every function the module imports from
// importModule is a runtime symbol with the runtime's signature. Imports
// from other modules are not the runtime's concern.
func CheckImports(compiled wazero.CompiledModule, moduleName, importModule string) error {
	for _, def := range compiled.ImportedFunctions() {
		mod, name, ok := def.Import()
		if !ok || mod != importModule {
			continue
		}

		sym, found := abi.Lookup(name)
		if !found {
			return &UnresolvedSymbolError{ModuleName: moduleName, Import: mod, Symbol: name}
		}

		params, results := WasmSignature(sym)
		if !slices.Equal(params, def.ParamTypes()) || !slices.Equal(results, def.ResultTypes()) {
			return &SignatureMismatchError{
				ModuleName: moduleName,
				Symbol:     name,
				Want:       FormatSignature(params, results),
				Got:        FormatSignature(def.ParamTypes(), def.ResultTypes()),
			}
		}
	}
	return nil
}

// ImportedSymbols lists the runtime symbols a compiled module links
// against, in import order.
func ImportedSymbols(compiled wazero.CompiledModule, importModule string) []string {
	var names []string
	for _, def := range compiled.ImportedFunctions() {
		if mod, name, ok := def.Import(); ok && mod == importModule {
			names = append(names, name)
		}
	}
	return names
}
