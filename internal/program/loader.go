package program

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/woxQAQ/onu-runtime/internal/wasm"
	"go.uber.org/zap"
)

// Loader handles loading programs from disk.
type Loader struct {
	runtime      *wasm.Runtime
	moduleLoader *wasm.ModuleLoader
	logger       *zap.Logger
}

// NewLoader creates a new program loader.
func NewLoader(runtime *wasm.Runtime, logger *zap.Logger) *Loader {
	return &Loader{
		runtime:      runtime,
		moduleLoader: wasm.NewModuleLoader(runtime, logger),
		logger:       logger.With(zap.String("component", "program-loader")),
	}
}

// LoadProgram loads the bundle in dir: the manifest is validated and the
// module compiled and link-checked.
func (l *Loader) LoadProgram(ctx context.Context, dir string) (*Program, error) {
	manifest, err := ParseManifest(dir)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Loading program",
		zap.String("name", manifest.Name),
		zap.String("version", manifest.Version),
		zap.String("dir", dir),
	)

	if manifest.WASI && !l.runtime.Config().EnableWASI {
		return nil, &ProgramLoadError{
			ProgramName: manifest.Name,
			Err:         fmt.Errorf("program requires WASI but the runtime has it disabled"),
		}
	}

	compiled, err := l.moduleLoader.LoadModuleFromFile(ctx, manifest.WasmPath())
	if err != nil {
		return nil, &ProgramLoadError{
			ProgramName: manifest.Name,
			Err:         err,
		}
	}

	// A manifest that declares imports must cover everything the module
	// actually links against.
	if len(manifest.Imports) > 0 {
		for _, name := range compiled.Imports {
			if !slices.Contains(manifest.Imports, name) {
				return nil, &ProgramLoadError{
					ProgramName: manifest.Name,
					Err:         fmt.Errorf("module imports '%s' which the manifest does not declare", name),
				}
			}
		}
	}

	program := &Program{
		Manifest: manifest,
		Compiled: compiled,
		LoadedAt: time.Now(),
	}

	l.logger.Info("Program loaded",
		zap.String("name", manifest.Name),
		zap.Int64("size_bytes", compiled.SizeBytes),
		zap.Strings("imports", compiled.Imports),
	)

	return program, nil
}

// DiscoverPrograms loads every bundle directly under the given paths.
// Paths that do not exist are skipped. Bundles that fail to load are
// logged and skipped.
func (l *Loader) DiscoverPrograms(ctx context.Context, paths []string) ([]*Program, error) {
	var programs []*Program
	var errs []error

	for _, basePath := range paths {
		l.logger.Debug("Scanning program directory", zap.String("path", basePath))

		entries, err := os.ReadDir(basePath)
		if err != nil {
			if os.IsNotExist(err) {
				l.logger.Warn("Program path does not exist", zap.String("path", basePath))
				continue
			}
			return nil, fmt.Errorf("failed to read directory '%s': %w", basePath, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			programDir := filepath.Join(basePath, entry.Name())

			program, err := l.LoadProgram(ctx, programDir)
			if err != nil {
				l.logger.Error("Failed to load program",
					zap.String("dir", programDir),
					zap.Error(err),
				)
				errs = append(errs, err)
				continue
			}

			programs = append(programs, program)
		}
	}

	if len(programs) > 0 && len(errs) > 0 {
		l.logger.Warn("Some programs failed to load",
			zap.Int("loaded", len(programs)),
			zap.Int("failed", len(errs)),
		)
	}

	if len(programs) == 0 {
		return nil, &NoProgramsFoundError{Paths: paths}
	}

	return programs, nil
}
