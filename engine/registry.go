package engine

import (
	"fmt"
	"sort"
	"sync"
)

// LoaderConfig is the backend-independent loader configuration.
type LoaderConfig struct {
	// Module is the engine binary for backends that load one (wasm).
	Module []byte
	// ModulePath is read when Module is empty.
	ModulePath string
	// MemoryLimitPages caps guest memory in 64KB pages. 0 keeps the backend default.
	MemoryLimitPages uint32
}

// Factory builds a Loader for one backend.
type Factory func(cfg LoaderConfig) (Loader, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// RegisterBackend makes a backend available under name. Registering the same
// name twice replaces the earlier factory.
func RegisterBackend(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// NewLoader builds a loader for a registered backend.
func NewLoader(name string, cfg LoaderConfig) (Loader, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine backend %q (available: %v)", name, Backends())
	}
	return f(cfg)
}

// Backends lists registered backend names.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
