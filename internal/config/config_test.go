package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"AVM_LOG_LEVEL", "AVM_LOADER_INCLUDE", "AVM_LOADER_EXCLUDE", "AVM_GLOBAL_MEMORY_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cfg := fromEnv()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.IncludePatterns != nil || cfg.ExcludePatterns != nil {
		t.Error("patterns should default to nil")
	}
	if cfg.GlobalMemoryLimit != 0 {
		t.Errorf("GlobalMemoryLimit = %d, want 0", cfg.GlobalMemoryLimit)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AVM_LOG_LEVEL", "debug")
	t.Setenv("AVM_LOADER_INCLUDE", "com/**, org/** ,")
	t.Setenv("AVM_GLOBAL_MEMORY_LIMIT", "4096")

	cfg := fromEnv()
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if len(cfg.IncludePatterns) != 2 || cfg.IncludePatterns[0] != "com/**" || cfg.IncludePatterns[1] != "org/**" {
		t.Errorf("IncludePatterns = %v", cfg.IncludePatterns)
	}
	if cfg.GlobalMemoryLimit != 4096 {
		t.Errorf("GlobalMemoryLimit = %d", cfg.GlobalMemoryLimit)
	}
}

func TestFromEnvBadNumber(t *testing.T) {
	t.Setenv("AVM_GLOBAL_MEMORY_LIMIT", "not-a-number")
	if cfg := fromEnv(); cfg.GlobalMemoryLimit != 0 {
		t.Errorf("bad number should keep the default, got %d", cfg.GlobalMemoryLimit)
	}
}

func TestLoadFile(t *testing.T) {
	for _, key := range []string{"AVM_LOG_LEVEL", "AVM_LOADER_INCLUDE", "AVM_GLOBAL_MEMORY_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	path := filepath.Join(t.TempDir(), "avm.yaml")
	data := []byte("log_level: warn\ninclude_patterns:\n  - flash/**\nglobal_memory_limit: 1024\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LogLevel != "warn" || cfg.GlobalMemoryLimit != 1024 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if len(cfg.IncludePatterns) != 1 || cfg.IncludePatterns[0] != "flash/**" {
		t.Errorf("IncludePatterns = %v", cfg.IncludePatterns)
	}

	// Environment wins over the file.
	t.Setenv("AVM_LOG_LEVEL", "error")
	cfg, err = LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("env should override the file, got %q", cfg.LogLevel)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file must error")
	}
}
