package program

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/woxQAQ/onu-runtime/internal/config"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
	"go.uber.org/zap"
)

// Manager manages the program lifecycle.
type Manager struct {
	cfg         *config.Config
	runtime     *wasm.Runtime
	loader      *Loader
	registry    *Registry
	instanceMgr *wasm.InstanceManager
	logger      *zap.Logger

	mu     sync.RWMutex
	loaded bool
}

// NewManager creates a new program manager.
func NewManager(
	cfg *config.Config,
	runtime *wasm.Runtime,
	hostFuncs *wasm.HostFunctions,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		cfg:         cfg,
		runtime:     runtime,
		loader:      NewLoader(runtime, logger),
		registry:    NewRegistry(logger),
		instanceMgr: wasm.NewInstanceManager(runtime, hostFuncs, logger),
		logger:      logger.With(zap.String("component", "program-manager")),
	}
}

// LoadAll discovers and registers the programs under the configured paths.
// Finding none is not an error.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return fmt.Errorf("programs already loaded")
	}

	m.logger.Info("Loading programs",
		zap.Strings("paths", m.cfg.ProgramPaths),
	)

	programs, err := m.loader.DiscoverPrograms(ctx, m.cfg.ProgramPaths)
	if err != nil {
		var none *NoProgramsFoundError
		if errors.As(err, &none) {
			m.logger.Warn("No programs found in configured paths",
				zap.Strings("paths", m.cfg.ProgramPaths),
			)
			m.loaded = true
			return nil
		}
		return err
	}

	for _, program := range programs {
		if err := m.registry.Register(program); err != nil {
			m.logger.Error("Failed to register program",
				zap.String("name", program.Name()),
				zap.Error(err),
			)
			continue
		}
	}

	m.loaded = true

	m.logger.Info("Programs loaded",
		zap.Int("count", m.registry.Count()),
	)

	return nil
}

// Load loads and registers the single bundle in dir.
func (m *Manager) Load(ctx context.Context, dir string) (*Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	program, err := m.loader.LoadProgram(ctx, dir)
	if err != nil {
		return nil, err
	}
	if err := m.registry.Register(program); err != nil {
		return nil, err
	}
	return program, nil
}

// Get retrieves a program by name.
func (m *Manager) Get(name string) (*Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	program, ok := m.registry.Get(name)
	if !ok {
		return nil, &ProgramNotFoundError{ProgramName: name}
	}

	return program, nil
}

// ProgramsUsing lists the programs that import a runtime symbol.
func (m *Manager) ProgramsUsing(symbol string) []*Program {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.registry.LookupBySymbol(symbol)
}

// Instantiate creates a new instance of a program.
func (m *Manager) Instantiate(ctx context.Context, name string) (*wasm.Instance, error) {
	program, err := m.Get(name)
	if err != nil {
		return nil, err
	}

	return m.instanceMgr.Instantiate(ctx, &wasm.InstanceConfig{
		ModuleName: program.Compiled.Name,
	})
}

// Run instantiates a program, runs its entry point and closes the
// instance.
func (m *Manager) Run(ctx context.Context, name string) error {
	program, err := m.Get(name)
	if err != nil {
		return err
	}

	instance, err := m.Instantiate(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := instance.Close(ctx); closeErr != nil {
			m.logger.Warn("Failed to close instance",
				zap.String("instance_id", instance.ID),
				zap.Error(closeErr),
			)
		}
	}()

	m.logger.Debug("Running program",
		zap.String("name", name),
		zap.String("entry", program.Entry()),
		zap.String("instance_id", instance.ID),
	)

	// An undeclared entry lets the instance fall back from _start to main.
	return instance.Run(ctx, program.Manifest.Entry)
}

// Shutdown closes the runtime and every instance in it.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down program manager")

	if err := m.runtime.Close(ctx); err != nil {
		m.logger.Error("Failed to shutdown runtime", zap.Error(err))
		return err
	}

	return nil
}

// Registry returns the program registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// IsLoaded returns whether LoadAll has run.
func (m *Manager) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}
