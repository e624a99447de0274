package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Default log level mismatch: got %s, want info", cfg.LogLevel)
	}

	if len(cfg.ProgramPaths) != 1 || cfg.ProgramPaths[0] != "./programs" {
		t.Errorf("Default program paths mismatch: got %v, want [./programs]", cfg.ProgramPaths)
	}

	if cfg.Runtime.ImportModule != "env" {
		t.Errorf("Default import module mismatch: got %s, want env", cfg.Runtime.ImportModule)
	}

	if cfg.Runtime.MemoryPages != 256 {
		t.Errorf("Default memory pages mismatch: got %d, want 256", cfg.Runtime.MemoryPages)
	}

	if cfg.Runtime.CacheDir != "" {
		t.Errorf("Default cache dir should be empty, got %s", cfg.Runtime.CacheDir)
	}

	if cfg.Runtime.MaxInstances != 100 {
		t.Errorf("Default max instances mismatch: got %d, want 100", cfg.Runtime.MaxInstances)
	}

	if cfg.Runtime.ExecutionTimeout != 30 {
		t.Errorf("Default execution timeout mismatch: got %d, want 30", cfg.Runtime.ExecutionTimeout)
	}

	if !cfg.Runtime.WASI {
		t.Error("WASI should be enabled by default")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onurt.yaml")

	configContent := `
log_level: debug
program_paths:
  - ./a
  - ./b
runtime:
  memory_pages: 64
  wasi: false
`
	if err := os.WriteFile(path, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Log level mismatch: got %s, want debug", cfg.LogLevel)
	}

	if len(cfg.ProgramPaths) != 2 {
		t.Errorf("Program paths mismatch: got %v, want [./a ./b]", cfg.ProgramPaths)
	}

	if cfg.Runtime.MemoryPages != 64 {
		t.Errorf("Memory pages mismatch: got %d, want 64", cfg.Runtime.MemoryPages)
	}

	if cfg.Runtime.WASI {
		t.Error("WASI should be disabled by the file")
	}

	// Untouched keys keep their defaults.
	if cfg.Runtime.MaxInstances != 100 {
		t.Errorf("Max instances mismatch: got %d, want 100", cfg.Runtime.MaxInstances)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfig() should fail for a missing file")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ONURT_LOG_LEVEL", "warn")
	t.Setenv("ONURT_RUNTIME_MEMORY_PAGES", "32")
	t.Setenv("ONURT_RUNTIME_IMPORT_MODULE", "onu")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("Log level mismatch: got %s, want warn", cfg.LogLevel)
	}

	if cfg.Runtime.MemoryPages != 32 {
		t.Errorf("Memory pages mismatch: got %d, want 32", cfg.Runtime.MemoryPages)
	}

	if cfg.Runtime.ImportModule != "onu" {
		t.Errorf("Import module mismatch: got %s, want onu", cfg.Runtime.ImportModule)
	}
}

func TestWasmRuntimeConfig(t *testing.T) {
	cfg := Default()
	cfg.Runtime.ExecutionTimeout = 5

	rc := cfg.WasmRuntimeConfig()

	if rc.ImportModule != "env" {
		t.Errorf("ImportModule = %s, want env", rc.ImportModule)
	}

	if rc.ExecutionTimeout != 5*time.Second {
		t.Errorf("ExecutionTimeout = %v, want 5s", rc.ExecutionTimeout)
	}

	if rc.MemoryPages != 256 || rc.MaxInstances != 100 || !rc.EnableWASI {
		t.Errorf("unexpected runtime config: %+v", rc)
	}
}
