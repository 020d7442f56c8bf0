// Package params assembles engine parameter sets from vault
// configuration, attaching the resolved master key.
package params

import (
	"context"

	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/masterkey"
	"github.com/systmms/kpsec/pkg/engine"
)

// Builder turns a vault configuration into the parameter set the engine
// expects for a single operation.
type Builder struct {
	resolver *masterkey.Resolver
}

// NewBuilder creates a builder backed by the given key resolver.
func NewBuilder(resolver *masterkey.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build resolves the vault's master key and returns the engine parameter
// set. The vault name doubles as the engine profile name. Key resolution
// failures propagate unchanged so callers can surface prompt and
// delegation errors as-is.
func (b *Builder) Build(ctx context.Context, cfg config.VaultConfig) (engine.Params, error) {
	key, err := b.resolver.Resolve(ctx, cfg)
	if err != nil {
		return engine.Params{}, err
	}
	return engine.Params{
		Profile:   cfg.VaultName,
		Key:       key,
		GroupPath: cfg.DefaultGroupPath,
	}, nil
}
