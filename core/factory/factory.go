package factory

import (
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// BackendConfig names a pluggable backend and carries its raw settings.
type BackendConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Builder turns a raw settings map into a concrete backend of type T.
type Builder[T any] func(conf map[string]any) (T, error)

// Registry maps backend type names to their builders. Safe for concurrent
// use; builders are normally registered from package init functions.
type Registry[T any] struct {
	mu       sync.RWMutex
	builders map[string]Builder[T]
}

// NewRegistry returns a registry with no builders.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{builders: make(map[string]Builder[T])}
}

// Register binds a builder to a backend type name. Registering the same
// name twice is an error so a misconfigured init is caught early.
func (r *Registry[T]) Register(name string, b Builder[T]) error {
	if b == nil {
		return fmt.Errorf("factory: nil builder for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builders[name]; ok {
		return fmt.Errorf("factory: backend %q registered twice", name)
	}
	r.builders[name] = b
	return nil
}

// Build constructs the backend named by cfg.Type from its raw settings.
func (r *Registry[T]) Build(cfg BackendConfig) (T, error) {
	r.mu.RLock()
	b, ok := r.builders[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("factory: no builder for backend type %q", cfg.Type)
	}
	return b(cfg.Conf)
}

// DecodeConf fills out with the raw settings map, matching keys against
// json tags so config files and code share one set of field names.
func DecodeConf(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}
