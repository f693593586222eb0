package sheet

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Schema)
	registryMu sync.RWMutex
)

// Register adds a schema to the registry.
// Panics if the key is empty, already registered, or the schema is invalid.
func Register(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if s.Key == "" {
		panic("schema has no key: " + s.SheetName)
	}
	if _, exists := registry[s.Key]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Key))
	}
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("invalid schema %s: %v", s.Key, err))
	}
	if s.Label == "" {
		s.Label = s.SheetName
	}

	registry[s.Key] = s
}

// Get returns a schema by key.
func Get(key string) (Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[key]
	return s, ok
}

// All returns all registered schemas sorted by key.
func All() []Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// Keys returns all registered keys, sorted.
func Keys() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of registered schemas.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Schema)
}
