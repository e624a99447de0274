package wasm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"github.com/woxQAQ/onu-runtime/api/onu"
	"go.uber.org/zap"
)

// Entry points a program may export.
const (
	EntryStart = "_start"
	EntryMain  = "main"
)

// InstanceManager creates and manages program instances.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs *HostFunctions
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs *HostFunctions, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Module name to instantiate.
	ModuleName string

	// Instance ID (if empty, generates UUID).
	InstanceID string
}

// Instance is one instantiated program.
type Instance struct {
	module  api.Module
	runtime *Runtime
	logger  *zap.Logger

	ID        string
	Name      string
	CreatedAt int64

	exports map[string]api.Function
}

// Instantiate creates a new instance from a compiled module. The runtime
// import module is installed on first use. No start function runs here;
// use Run.
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	compiled, ok := m.runtime.GetCompiledModule(config.ModuleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.ModuleName}
	}

	if limit := m.runtime.config.MaxInstances; limit > 0 && m.runtime.InstanceCount() >= limit {
		return nil, &InstanceLimitError{Max: limit}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	if err := m.runtime.installHost(ctx, m.hostFuncs); err != nil {
		return nil, &InstantiationError{ModuleName: config.ModuleName, InstanceID: instanceID, Err: err}
	}

	m.logger.Debug("Instantiating program",
		zap.String("module", config.ModuleName),
		zap.String("instance_id", instanceID),
	)

	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStdout(m.hostFuncs.Stdout()).
		WithStartFunctions()

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		return nil, &InstantiationError{
			ModuleName: config.ModuleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	instance := &Instance{
		module:    module,
		runtime:   m.runtime,
		logger:    m.logger.With(zap.String("instance_id", instanceID)),
		ID:        instanceID,
		Name:      config.ModuleName,
		CreatedAt: time.Now().Unix(),
		exports:   cacheExportedFunctions(module),
	}

	m.runtime.StoreInstance(instanceID, module)

	m.logger.Debug("Program instantiated",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(instance.exports)),
	)

	return instance, nil
}

// cacheExportedFunctions keeps the entry points and allocator exports.
func cacheExportedFunctions(module api.Module) map[string]api.Function {
	exports := make(map[string]api.Function)
	for _, name := range []string{EntryStart, EntryMain, onu.ExportMalloc, onu.ExportFree} {
		if fn := module.ExportedFunction(name); fn != nil {
			exports[name] = fn
		}
	}
	return exports
}

// Has reports whether the instance exports a function called name.
func (i *Instance) Has(name string) bool {
	if _, ok := i.exports[name]; ok {
		return true
	}
	return i.module.ExportedFunction(name) != nil
}

// Memory returns a text view of the instance's linear memory.
func (i *Instance) Memory() *Memory {
	return NewMemory(i.module)
}

// Run executes the program. An empty entry means _start, falling back to
// main. Parameters of the entry function are passed as zero. Exiting with
// status 0 is success; any other status, or a non-zero main result, is an
// ExitError.
func (i *Instance) Run(ctx context.Context, entry string) error {
	fn, name, err := i.entry(entry)
	if err != nil {
		return err
	}

	params := make([]uint64, len(fn.Definition().ParamTypes()))
	results, err := i.call(ctx, fn, params...)
	if err != nil {
		return err
	}

	if name == EntryMain && len(results) > 0 {
		if code := uint32(results[0]); code != 0 {
			return &ExitError{InstanceID: i.ID, Code: code}
		}
	}
	return nil
}

// Call invokes an exported function with raw wasm values.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn, ok := i.exports[name]
	if !ok {
		if fn = i.module.ExportedFunction(name); fn == nil {
			return nil, &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
		}
	}
	return i.call(ctx, fn, params...)
}

func (i *Instance) entry(entry string) (api.Function, string, error) {
	candidates := []string{EntryStart, EntryMain}
	if entry != "" {
		candidates = []string{entry}
	}
	for _, name := range candidates {
		if fn := i.module.ExportedFunction(name); fn != nil {
			return fn, name, nil
		}
	}
	if entry == "" {
		entry = EntryStart
	}
	return nil, "", &FunctionNotFoundError{ModuleName: i.Name, FunctionName: entry}
}

func (i *Instance) call(ctx context.Context, fn api.Function, params ...uint64) ([]uint64, error) {
	timeout := i.runtime.config.ExecutionTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	startTime := time.Now()
	results, err := fn.Call(ctx, params...)
	duration := time.Since(startTime)

	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case 0:
				i.logger.Debug("Program exited", zap.Duration("duration", duration))
				return nil, nil
			case sys.ExitCodeDeadlineExceeded:
				return nil, &TimeoutError{Duration: timeout}
			default:
				return nil, &ExitError{InstanceID: i.ID, Code: exitErr.ExitCode()}
			}
		}
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Duration: timeout}
		}
		return nil, err
	}

	i.logger.Debug("Call finished",
		zap.String("function", fn.Definition().Name()),
		zap.Duration("duration", duration),
	)
	return results, nil
}

// Close closes the instance and stops tracking it.
func (i *Instance) Close(ctx context.Context) error {
	i.runtime.DeleteInstance(i.ID)
	return i.module.Close(ctx)
}
