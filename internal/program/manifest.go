package program

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/woxQAQ/onu-runtime/internal/abi"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the bundle manifest's file name.
const ManifestFile = "manifest.yaml"

// Manifest represents the program manifest.yaml structure.
type Manifest struct {
	Name    string     `yaml:"name"`
	Version string     `yaml:"version"`
	Wasm    WasmConfig `yaml:"wasm"`
	Entry   string     `yaml:"entry"`
	Imports []string   `yaml:"imports"`
	WASI    bool       `yaml:"wasi"`
	Author  string     `yaml:"author"`
	License string     `yaml:"license"`

	dir string
}

// WasmConfig holds Wasm module configuration.
type WasmConfig struct {
	File string `yaml:"file"`
}

// ParseManifest reads and validates manifest.yaml from a directory.
func ParseManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, ManifestFile)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &ManifestNotFoundError{
			Path: manifestPath,
			Err:  err,
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: manifestPath,
			Err:  err,
		}
	}

	m.dir = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "name",
			Message: "name is required",
		}
	}

	if m.Version == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "version",
			Message: "version is required",
		}
	}

	if m.Wasm.File == "" {
		return &ManifestValidationError{
			Path:    m.Path(),
			Field:   "wasm.file",
			Message: "wasm.file is required",
		}
	}

	for _, name := range m.Imports {
		if _, ok := abi.Lookup(name); !ok {
			return &ManifestValidationError{
				Path:    m.Path(),
				Field:   "imports",
				Message: fmt.Sprintf("unknown runtime symbol: %s", name),
			}
		}
	}

	if _, err := os.Stat(m.WasmPath()); os.IsNotExist(err) {
		return &WasmNotFoundError{
			ManifestPath: m.Path(),
			WasmFile:     m.Wasm.File,
		}
	}

	return nil
}

// EntryPoint returns the declared entry, or _start when none is declared.
func (m *Manifest) EntryPoint() string {
	if m.Entry == "" {
		return wasm.EntryStart
	}
	return m.Entry
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, ManifestFile)
}

// WasmPath returns the path to the Wasm file.
func (m *Manifest) WasmPath() string {
	return filepath.Join(m.dir, m.Wasm.File)
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return m.dir
}
