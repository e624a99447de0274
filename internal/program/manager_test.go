package program

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/woxQAQ/onu-runtime/api/onu"
	"github.com/woxQAQ/onu-runtime/internal/config"
	"github.com/woxQAQ/onu-runtime/internal/testutil"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, paths ...string) (*Manager, *bytes.Buffer) {
	t.Helper()
	logger := zap.NewNop()

	cfg := config.Default()
	cfg.ProgramPaths = paths

	out := &bytes.Buffer{}
	runtime := newTestRuntime(t, cfg.WasmRuntimeConfig())
	return NewManager(cfg, runtime, wasm.NewHostFunctions(logger, out), logger), out
}

func TestManager_NewManager(t *testing.T) {
	manager, _ := newTestManager(t, "/tmp/programs")

	if manager.IsLoaded() {
		t.Error("Manager should not be loaded initially")
	}

	if manager.Registry().Count() != 0 {
		t.Error("Registry should start empty")
	}
}

func TestManager_LoadAllAndRun(t *testing.T) {
	ctx := context.Background()

	root := t.TempDir()
	writeHello(t, root)
	writeBundle(t, root, "calc", `
name: calc
version: 1.0.0
wasm:
  file: calc.wasm
`, "calc.wasm", testutil.MainGuest(0))

	manager, out := newTestManager(t, root)

	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	if !manager.IsLoaded() {
		t.Error("Manager should be loaded")
	}

	if manager.Registry().Count() != 2 {
		t.Fatalf("expected 2 programs, got %d", manager.Registry().Count())
	}

	if err := manager.Run(ctx, "hello"); err != nil {
		t.Fatalf("Run(hello) failed: %v", err)
	}

	if out.String() != "42\n-7\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	// calc only exports main; the default entry falls back to it.
	if err := manager.Run(ctx, "calc"); err != nil {
		t.Fatalf("Run(calc) failed: %v", err)
	}

	users := manager.ProgramsUsing(onu.Broadcasts)
	if len(users) != 1 || users[0].Name() != "hello" {
		t.Errorf("unexpected programs using broadcasts: %v", users)
	}

	// Run closes its instance.
	if manager.runtime.InstanceCount() != 0 {
		t.Errorf("expected no live instances, got %d", manager.runtime.InstanceCount())
	}

	if err := manager.LoadAll(ctx); err == nil {
		t.Error("second LoadAll() should fail")
	}
}

func TestManager_LoadAll_NoPrograms(t *testing.T) {
	manager, _ := newTestManager(t, t.TempDir())

	if err := manager.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() should tolerate empty paths: %v", err)
	}

	if !manager.IsLoaded() {
		t.Error("Manager should be loaded")
	}
}

func TestManager_LoadSingle(t *testing.T) {
	ctx := context.Background()
	manager, out := newTestManager(t)

	program, err := manager.Load(ctx, writeHello(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if err := manager.Run(ctx, program.Name()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if out.String() != "42\n-7\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestManager_RunExitCode(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	dir := writeBundle(t, t.TempDir(), "fail", `
name: fail
version: 1.0.0
wasm:
  file: fail.wasm
entry: main
`, "fail.wasm", testutil.MainGuest(2))

	if _, err := manager.Load(ctx, dir); err != nil {
		t.Fatal(err)
	}

	err := manager.Run(ctx, "fail")
	var exitErr *wasm.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}

	if exitErr.Code != 2 {
		t.Errorf("expected exit code 2, got %d", exitErr.Code)
	}
}

func TestManager_GetProgram_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Get("nonexistent")
	if _, ok := err.(*ProgramNotFoundError); !ok {
		t.Errorf("expected ProgramNotFoundError, got %T", err)
	}

	err = manager.Run(context.Background(), "nonexistent")
	if _, ok := err.(*ProgramNotFoundError); !ok {
		t.Errorf("expected ProgramNotFoundError, got %T", err)
	}
}

func TestManager_Shutdown(t *testing.T) {
	manager, _ := newTestManager(t)

	if err := manager.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	if !manager.runtime.IsClosed() {
		t.Error("runtime should be closed after Shutdown()")
	}
}
