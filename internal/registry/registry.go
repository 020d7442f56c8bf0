// Package registry manages secret source creation and lookup. Vaults are
// declared in configuration by type; factories turn a declaration into a
// live source the first time the vault is used.
package registry

import (
	"fmt"
	"sync"

	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/pkg/vault"
)

// SourceFactory creates a secret source instance from configuration.
type SourceFactory func(name string, cfg map[string]interface{}) (vault.SecretSource, error)

// Registry maps configured vault names to secret sources. Sources are
// built lazily and memoized, which lets a vault delegate its master key
// to another vault declared in the same file regardless of declaration
// order.
type Registry struct {
	mu        sync.Mutex
	factories map[string]SourceFactory
	defs      map[string]config.VaultDef
	sources   map[string]vault.SecretSource
	building  map[string]bool
}

// NewRegistry creates an empty registry. Callers register factories for
// the vault types they support, then Configure it with the loaded
// definition.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]SourceFactory),
		defs:      make(map[string]config.VaultDef),
		sources:   make(map[string]vault.SecretSource),
		building:  make(map[string]bool),
	}
}

// RegisterFactory registers a source factory for a vault type, replacing
// any previous registration.
func (r *Registry) RegisterFactory(vaultType string, factory SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[vaultType] = factory
}

// Configure records the vault declarations sources will be built from.
// It replaces any previous configuration and drops memoized sources.
func (r *Registry) Configure(vaults map[string]config.VaultDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]config.VaultDef, len(vaults))
	for name, def := range vaults {
		r.defs[name] = def
	}
	r.sources = make(map[string]vault.SecretSource)
}

// Source returns the secret source for a configured vault, building it on
// first use. It implements the lookup interface the master-key resolver
// consumes.
func (r *Registry) Source(vaultName string) (vault.SecretSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if src, ok := r.sources[vaultName]; ok {
		return src, nil
	}

	def, ok := r.defs[vaultName]
	if !ok {
		return nil, fmt.Errorf("vault %q is not registered", vaultName)
	}

	factory, ok := r.factories[def.Type]
	if !ok {
		return nil, fmt.Errorf("unknown vault type: %s", def.Type)
	}

	// Delegation chains re-enter Source through the factory; a cycle in
	// the configuration would otherwise deadlock here.
	if r.building[vaultName] {
		return nil, fmt.Errorf("vault %q delegates its master key in a cycle", vaultName)
	}
	r.building[vaultName] = true
	r.mu.Unlock()
	src, err := factory(vaultName, def.Config)
	r.mu.Lock()
	delete(r.building, vaultName)
	if err != nil {
		return nil, err
	}

	r.sources[vaultName] = src
	return src, nil
}

// IsSupported checks whether a factory is registered for a vault type.
func (r *Registry) IsSupported(vaultType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.factories[vaultType]
	return ok
}

// SupportedTypes returns the vault types with a registered factory.
func (r *Registry) SupportedTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}

// VaultNames returns the names of all configured vaults.
func (r *Registry) VaultNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Definition returns the raw declaration for a configured vault.
func (r *Registry) Definition(vaultName string) (config.VaultDef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[vaultName]
	return def, ok
}
