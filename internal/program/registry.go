package program

import (
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry indexes loaded programs by name and by the runtime symbols
// they import.
type Registry struct {
	sync.RWMutex
	programs map[string]*Program   // name -> program
	bySymbol map[string][]*Program // runtime symbol -> programs
	logger   *zap.Logger
}

// NewRegistry creates a new program registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		programs: make(map[string]*Program),
		bySymbol: make(map[string][]*Program),
		logger:   logger.With(zap.String("component", "program-registry")),
	}
}

// Register adds a program to the registry.
func (r *Registry) Register(program *Program) error {
	r.Lock()
	defer r.Unlock()

	name := program.Name()
	if _, exists := r.programs[name]; exists {
		return &ProgramAlreadyRegisteredError{ProgramName: name}
	}

	r.programs[name] = program
	for _, symbol := range program.Imports() {
		r.bySymbol[symbol] = append(r.bySymbol[symbol], program)
	}

	r.logger.Debug("Program registered",
		zap.String("name", name),
		zap.Strings("imports", program.Imports()),
	)

	return nil
}

// Get retrieves a program by name.
func (r *Registry) Get(name string) (*Program, bool) {
	r.RLock()
	defer r.RUnlock()

	program, ok := r.programs[name]
	return program, ok
}

// LookupBySymbol finds the programs that import a runtime symbol.
func (r *Registry) LookupBySymbol(symbol string) []*Program {
	r.RLock()
	defer r.RUnlock()

	return slices.Clone(r.bySymbol[symbol])
}

// List returns all registered programs sorted by name.
func (r *Registry) List() []*Program {
	r.RLock()
	defer r.RUnlock()

	result := make([]*Program, 0, len(r.programs))
	for _, program := range r.programs {
		result = append(result, program)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Unregister removes a program from the registry.
func (r *Registry) Unregister(name string) {
	r.Lock()
	defer r.Unlock()

	program, ok := r.programs[name]
	if !ok {
		return
	}

	for _, symbol := range program.Imports() {
		r.bySymbol[symbol] = slices.DeleteFunc(r.bySymbol[symbol], func(p *Program) bool {
			return p.Name() == name
		})
		if len(r.bySymbol[symbol]) == 0 {
			delete(r.bySymbol, symbol)
		}
	}

	delete(r.programs, name)

	r.logger.Debug("Program unregistered", zap.String("name", name))
}

// Count returns the number of registered programs.
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.programs)
}
