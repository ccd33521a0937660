// Package config loads the bridge configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/logging"
	"github.com/wippyai/ephemeris-bridge/provision"
)

// Config holds the bridge configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// EngineConfig selects and tunes the engine backend.
type EngineConfig struct {
	Backend          string `yaml:"backend"`            // wasm, native (default: wasm)
	Module           string `yaml:"module"`             // path to the engine .wasm (wasm backend)
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"` // 64KB pages, 0 = backend default
	EagerInit        bool   `yaml:"eager_init"`         // initialize at startup instead of on first call
}

// AssetsConfig describes where the engine's data files come from.
type AssetsConfig struct {
	Source  string `yaml:"source"`  // bundled data files; empty means Dest already holds them
	Dest    string `yaml:"dest"`    // writable directory handed to the engine
	Pattern string `yaml:"pattern"` // regexp over file base names
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, local, dev (default: local)
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// MetricsConfig holds prometheus exposition settings.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`
}

// On reports whether metrics are exposed.
func (m MetricsConfig) On() bool {
	return m.Enabled == nil || *m.Enabled
}

// Load reads configuration from a YAML file. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Engine.Backend == "" {
		c.Engine.Backend = engine.BackendWasm
	}
	if c.Assets.Dest == "" {
		c.Assets.Dest = filepath.Join(os.TempDir(), "ephemeris-bridge", "ephe")
	}
	if c.Assets.Pattern == "" {
		c.Assets.Pattern = provision.DefaultPattern
	}
	if c.Logging.Env == "" {
		c.Logging.Env = logging.EnvLocal
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	known := engine.Backends()
	found := false
	for _, name := range known {
		if name == c.Engine.Backend {
			found = true
		}
	}
	if !found {
		return errors.InvalidConfig("engine.backend", fmt.Sprintf("must be one of %v, got %q", known, c.Engine.Backend))
	}
	if c.Engine.MemoryLimitPages > 65536 {
		return errors.InvalidConfig("engine.memory_limit_pages", fmt.Sprintf("must be at most 65536, got %d", c.Engine.MemoryLimitPages))
	}
	if _, err := regexp.Compile(c.Assets.Pattern); err != nil {
		return errors.InvalidConfig("assets.pattern", err.Error())
	}
	switch c.Logging.Env {
	case logging.EnvProd, logging.EnvLocal, logging.EnvDev:
		// ok
	default:
		return errors.InvalidConfig("logging.env", fmt.Sprintf("must be prod, local or dev, got %q", c.Logging.Env))
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.InvalidConfig("metrics.path", fmt.Sprintf("must start with /, got %q", c.Metrics.Path))
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
