// Package config holds the process configuration for the runtime's loading
// surface. Values come from the environment, with an optional .env file and
// an optional YAML file layered underneath.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the loader/runtime configuration.
type Config struct {
	LogLevel          string   `yaml:"log_level"`
	IncludePatterns   []string `yaml:"include_patterns"`
	ExcludePatterns   []string `yaml:"exclude_patterns"`
	GlobalMemoryLimit int      `yaml:"global_memory_limit"`
}

var (
	loadOnce sync.Once
	loaded   *Config
)

// Load reads the configuration once per process: .env first (if present),
// then environment variables.
func Load() *Config {
	loadOnce.Do(func() {
		_ = godotenv.Load()
		loaded = fromEnv()
	})
	return loaded
}

func fromEnv() *Config {
	cfg := &Config{
		LogLevel:          "info",
		GlobalMemoryLimit: 0, // unlimited
	}

	if v := os.Getenv("AVM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AVM_LOADER_INCLUDE"); v != "" {
		cfg.IncludePatterns = splitList(v)
	}
	if v := os.Getenv("AVM_LOADER_EXCLUDE"); v != "" {
		cfg.ExcludePatterns = splitList(v)
	}
	if v := os.Getenv("AVM_GLOBAL_MEMORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.GlobalMemoryLimit = n
		}
	}
	return cfg
}

// LoadFile reads a YAML configuration file, with the environment taking
// precedence over the file's values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{LogLevel: "info"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	env := fromEnv()
	if os.Getenv("AVM_LOG_LEVEL") != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.IncludePatterns != nil {
		cfg.IncludePatterns = env.IncludePatterns
	}
	if env.ExcludePatterns != nil {
		cfg.ExcludePatterns = env.ExcludePatterns
	}
	if os.Getenv("AVM_GLOBAL_MEMORY_LIMIT") != "" {
		cfg.GlobalMemoryLimit = env.GlobalMemoryLimit
	}
	return cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
