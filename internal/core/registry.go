package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if an entity with the same key is already registered.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Info.Key))
	}
	if len(def.Info.ExportHeaders) == 0 {
		def.Info.ExportHeaders = def.Info.Headers
	}

	registry[def.Info.Key] = def
}

// Get returns an entity definition by key.
func Get(key string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup resolves a user-supplied entity name. It is case-insensitive and
// accepts the plural form ("teams").
func Lookup(name string) (Definition, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if def, ok := Get(key); ok {
		return def, nil
	}
	if def, ok := Get(strings.TrimSuffix(key, "s")); ok {
		return def, nil
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
}

// All returns every registered definition sorted by key.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Count returns the number of registered entities.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Definition)
}
