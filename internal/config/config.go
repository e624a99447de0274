// Package config loads onurt configuration from defaults, an optional
// YAML file and ONURT_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
)

// EnvPrefix prefixes environment overrides, e.g. ONURT_RUNTIME_MEMORY_PAGES.
const EnvPrefix = "ONURT"

type Config struct {
	ProgramPaths []string      `mapstructure:"program_paths"`
	LogLevel     string        `mapstructure:"log_level"`
	Runtime      RuntimeConfig `mapstructure:"runtime"`
}

// RuntimeConfig holds Wasm runtime configuration.
type RuntimeConfig struct {
	// Module guests import the runtime symbols from.
	ImportModule string `mapstructure:"import_module"`
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Keep debug info for guest stack traces.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory; empty keeps the cache in memory.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent instances.
	MaxInstances int `mapstructure:"max_instances"`
	// Program execution timeout (seconds, 0 disables).
	ExecutionTimeout int `mapstructure:"execution_timeout"`
	// Provide wasi_snapshot_preview1.
	WASI bool `mapstructure:"wasi"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("program_paths", []string{"./programs"})
	v.SetDefault("log_level", "info")

	v.SetDefault("runtime.import_module", "env")
	v.SetDefault("runtime.memory_pages", 256) // 16MB
	v.SetDefault("runtime.debug", false)
	v.SetDefault("runtime.cache_dir", "")
	v.SetDefault("runtime.max_instances", 100)
	v.SetDefault("runtime.execution_timeout", 30)
	v.SetDefault("runtime.wasi", true)
}

// LoadConfig reads configuration. An empty path uses defaults and the
// environment only.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration with nothing overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// WasmRuntimeConfig converts the runtime section for wasm.NewRuntime.
func (c *Config) WasmRuntimeConfig() *wasm.RuntimeConfig {
	return &wasm.RuntimeConfig{
		ImportModule:     c.Runtime.ImportModule,
		MemoryPages:      c.Runtime.MemoryPages,
		DebugEnabled:     c.Runtime.Debug,
		CacheDir:         c.Runtime.CacheDir,
		MaxInstances:     c.Runtime.MaxInstances,
		ExecutionTimeout: time.Duration(c.Runtime.ExecutionTimeout) * time.Second,
		EnableWASI:       c.Runtime.WASI,
	}
}
