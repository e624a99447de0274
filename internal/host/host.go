// Package host wires configuration, the Wasm runtime and program bundles
// into the single object the CLI drives.
package host

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/woxQAQ/onu-runtime/internal/config"
	"github.com/woxQAQ/onu-runtime/internal/program"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
	"go.uber.org/zap"
)

type Host struct {
	cfg         *config.Config
	logger      *zap.Logger
	wasmRuntime *wasm.Runtime
	loader      *wasm.ModuleLoader
	instances   *wasm.InstanceManager
	programs    *program.Manager
}

// New creates a host whose programs write to stdout.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) (*Host, error) {
	wasmRuntime, err := wasm.NewRuntime(ctx, logger, cfg.WasmRuntimeConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	hostFuncs := wasm.NewHostFunctions(logger, stdout)

	return &Host{
		cfg:         cfg,
		logger:      logger.With(zap.String("component", "host")),
		wasmRuntime: wasmRuntime,
		loader:      wasm.NewModuleLoader(wasmRuntime, logger),
		instances:   wasm.NewInstanceManager(wasmRuntime, hostFuncs, logger),
		programs:    program.NewManager(cfg, wasmRuntime, hostFuncs, logger),
	}, nil
}

// Programs returns the program manager.
func (h *Host) Programs() *program.Manager {
	return h.programs
}

// Run executes target, which is either a .wasm file or a program bundle
// directory. A non-empty entry overrides the program's entry point.
func (h *Host) Run(ctx context.Context, target, entry string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return h.RunProgram(ctx, target, entry)
	}
	return h.RunFile(ctx, target, entry)
}

// RunFile compiles, links and runs a bare module.
func (h *Host) RunFile(ctx context.Context, path, entry string) error {
	compiled, err := h.loader.LoadModuleFromFile(ctx, path)
	if err != nil {
		return err
	}

	instance, err := h.instances.Instantiate(ctx, &wasm.InstanceConfig{ModuleName: compiled.Name})
	if err != nil {
		return err
	}
	return h.runInstance(ctx, instance, entry)
}

// RunProgram loads the bundle in dir and runs it.
func (h *Host) RunProgram(ctx context.Context, dir, entry string) error {
	p, err := h.programs.Load(ctx, dir)
	if err != nil {
		return err
	}

	if entry == "" {
		return h.programs.Run(ctx, p.Name())
	}

	instance, err := h.programs.Instantiate(ctx, p.Name())
	if err != nil {
		return err
	}
	return h.runInstance(ctx, instance, entry)
}

func (h *Host) runInstance(ctx context.Context, instance *wasm.Instance, entry string) error {
	defer func() {
		if err := instance.Close(ctx); err != nil {
			h.logger.Warn("Failed to close instance",
				zap.String("instance_id", instance.ID),
				zap.Error(err),
			)
		}
	}()

	h.logger.Debug("Running module",
		zap.String("module", instance.Name),
		zap.String("entry", entry),
	)
	return instance.Run(ctx, entry)
}

// Check compiles and link-checks a module without running it.
func (h *Host) Check(ctx context.Context, path string) (*wasm.CompiledModule, error) {
	return h.loader.LoadModuleFromFile(ctx, path)
}

// Discover loads every bundle under the configured program paths.
func (h *Host) Discover(ctx context.Context) ([]*program.Program, error) {
	if err := h.programs.LoadAll(ctx); err != nil {
		return nil, err
	}
	return h.programs.Registry().List(), nil
}

// Close gracefully shuts down the host.
func (h *Host) Close(ctx context.Context) error {
	if err := h.programs.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown Wasm runtime", zap.Error(err))
		return err
	}

	h.logger.Debug("Host shutdown complete")
	return nil
}
