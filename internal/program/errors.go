package program

import (
	"fmt"
)

// ManifestNotFoundError occurs when manifest.yaml is not found in a directory.
type ManifestNotFoundError struct {
	Path string
	Err  error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest not found at '%s': %v", e.Path, e.Err)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return e.Err
}

// ManifestParseError occurs when manifest.yaml is not valid YAML.
type ManifestParseError struct {
	Path string
	Err  error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest at '%s': %v", e.Path, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ManifestValidationError occurs when manifest.yaml fails validation.
type ManifestValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ManifestValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("manifest validation failed at '%s': %s (field: %s)",
			e.Path, e.Message, e.Field)
	}
	return fmt.Sprintf("manifest validation failed at '%s': %s", e.Path, e.Message)
}

// WasmNotFoundError occurs when the Wasm file named in a manifest doesn't exist.
type WasmNotFoundError struct {
	ManifestPath string
	WasmFile     string
}

func (e *WasmNotFoundError) Error() string {
	return fmt.Sprintf("Wasm file '%s' not found (referenced in manifest '%s')",
		e.WasmFile, e.ManifestPath)
}

// ProgramLoadError occurs when a program cannot be compiled or linked.
type ProgramLoadError struct {
	ProgramName string
	Err         error
}

func (e *ProgramLoadError) Error() string {
	return fmt.Sprintf("failed to load program '%s': %v", e.ProgramName, e.Err)
}

func (e *ProgramLoadError) Unwrap() error {
	return e.Err
}

// ProgramNotFoundError occurs when a program is not in the registry.
type ProgramNotFoundError struct {
	ProgramName string
}

func (e *ProgramNotFoundError) Error() string {
	return fmt.Sprintf("program '%s' not found", e.ProgramName)
}

// ProgramAlreadyRegisteredError occurs when registering a duplicate name.
type ProgramAlreadyRegisteredError struct {
	ProgramName string
}

func (e *ProgramAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("program '%s' is already registered", e.ProgramName)
}

// NoProgramsFoundError occurs when the configured paths hold no programs.
type NoProgramsFoundError struct {
	Paths []string
}

func (e *NoProgramsFoundError) Error() string {
	return fmt.Sprintf("no programs found in paths: %v", e.Paths)
}
