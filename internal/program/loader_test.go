package program

import (
	"context"
	"errors"
	"testing"

	"github.com/woxQAQ/onu-runtime/api/onu"
	"github.com/woxQAQ/onu-runtime/internal/testutil"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
	"go.uber.org/zap"
)

func newTestRuntime(t *testing.T, config *wasm.RuntimeConfig) *wasm.Runtime {
	t.Helper()
	ctx := context.Background()

	runtime, err := wasm.NewRuntime(ctx, zap.NewNop(), config)
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close(ctx) })
	return runtime
}

func TestLoader_LoadProgram_Valid(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())

	program, err := loader.LoadProgram(ctx, writeHello(t, t.TempDir()))
	if err != nil {
		t.Fatalf("LoadProgram() failed: %v", err)
	}

	if program.Name() != "hello" {
		t.Errorf("expected name 'hello', got '%s'", program.Name())
	}

	if !program.Uses(onu.JoinedWith) || !program.Uses(onu.SetChar) {
		t.Errorf("unexpected imports: %v", program.Imports())
	}

	if program.LoadedAt.IsZero() {
		t.Error("LoadedAt should be set")
	}
}

func TestLoader_LoadProgram_ManifestNotFound(t *testing.T) {
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())

	_, err := loader.LoadProgram(context.Background(), t.TempDir())
	if _, ok := err.(*ManifestNotFoundError); !ok {
		t.Errorf("expected ManifestNotFoundError, got %T", err)
	}
}

func TestLoader_LoadProgram_InvalidWasm(t *testing.T) {
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())
	dir := writeBundle(t, t.TempDir(), "hello", helloManifest, "hello.wasm", []byte("not wasm"))

	_, err := loader.LoadProgram(context.Background(), dir)
	loadErr, ok := err.(*ProgramLoadError)
	if !ok {
		t.Fatalf("expected ProgramLoadError, got %T", err)
	}

	var compileErr *wasm.CompilationError
	if !errors.As(loadErr, &compileErr) {
		t.Errorf("expected wrapped CompilationError, got %v", loadErr.Err)
	}
}

func TestLoader_LoadProgram_UnresolvedImport(t *testing.T) {
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())
	bin := testutil.ImportingGuest(onu.ImportModule, "reverse", testutil.FuncType{Params: []byte{testutil.I32}})
	dir := writeBundle(t, t.TempDir(), "hello", helloManifest, "hello.wasm", bin)

	_, err := loader.LoadProgram(context.Background(), dir)

	var unresolved *wasm.UnresolvedSymbolError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedSymbolError, got %v", err)
	}
}

func TestLoader_LoadProgram_UndeclaredImport(t *testing.T) {
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())
	dir := writeBundle(t, t.TempDir(), "hello", `
name: hello
version: 1.0.0
wasm:
  file: hello.wasm
imports: [as-text, broadcasts]
`, "hello.wasm", testutil.RuntimeGuest(onu.ImportModule))

	_, err := loader.LoadProgram(context.Background(), dir)
	if _, ok := err.(*ProgramLoadError); !ok {
		t.Errorf("expected ProgramLoadError, got %T", err)
	}
}

func TestLoader_LoadProgram_WASIDisabled(t *testing.T) {
	config := wasm.DefaultRuntimeConfig()
	config.EnableWASI = false

	loader := NewLoader(newTestRuntime(t, config), zap.NewNop())
	dir := writeBundle(t, t.TempDir(), "exit", `
name: exit
version: 1.0.0
wasm:
  file: exit.wasm
wasi: true
`, "exit.wasm", testutil.ExitGuest(0))

	_, err := loader.LoadProgram(context.Background(), dir)
	if _, ok := err.(*ProgramLoadError); !ok {
		t.Errorf("expected ProgramLoadError, got %T", err)
	}
}

func TestLoader_DiscoverPrograms(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())

	root := t.TempDir()
	writeHello(t, root)
	writeBundle(t, root, "broken", "name: [unclosed\n", "", nil)

	programs, err := loader.DiscoverPrograms(ctx, []string{root, "/does/not/exist"})
	if err != nil {
		t.Fatalf("DiscoverPrograms() failed: %v", err)
	}

	if len(programs) != 1 || programs[0].Name() != "hello" {
		t.Errorf("expected only 'hello' to load, got %d programs", len(programs))
	}
}

func TestLoader_DiscoverPrograms_None(t *testing.T) {
	loader := NewLoader(newTestRuntime(t, nil), zap.NewNop())

	_, err := loader.DiscoverPrograms(context.Background(), []string{t.TempDir()})
	if _, ok := err.(*NoProgramsFoundError); !ok {
		t.Errorf("expected NoProgramsFoundError, got %T", err)
	}
}
