// Package adapter implements the five host-facing operations against a
// password-database vault: read, write, delete, enumerate, and validate.
// It owns the policy layer (recycle-bin filtering, duplicate handling,
// key eviction) and delegates storage to the engine.
package adapter

import (
	"context"
	"strings"

	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/logging"
	"github.com/systmms/kpsec/internal/masterkey"
	"github.com/systmms/kpsec/internal/params"
	"github.com/systmms/kpsec/pkg/engine"
)

// recycleBinMarker identifies KeePass recycle-bin groups. Localized
// databases may name the group differently; matching is best effort by
// case-insensitive substring, per the KeePass default.
const recycleBinMarker = "recycle bin"

// Adapter binds one engine to the host operations. It is stateless apart
// from the key cache owned by the resolver; construct one per process.
type Adapter struct {
	engine   engine.Engine
	builder  *params.Builder
	resolver *masterkey.Resolver
	log      *logging.Logger
}

// New creates an adapter over the given engine.
func New(eng engine.Engine, builder *params.Builder, resolver *masterkey.Resolver, log *logging.Logger) *Adapter {
	return &Adapter{
		engine:   eng,
		builder:  builder,
		resolver: resolver,
		log:      log,
	}
}

// buildParams parses the host's parameter bag and resolves the master key.
func (a *Adapter) buildParams(ctx context.Context, vaultName string, bag map[string]interface{}) (config.VaultConfig, engine.Params, error) {
	cfg, err := config.FromParams(vaultName, bag)
	if err != nil {
		return config.VaultConfig{}, engine.Params{}, err
	}
	p, err := a.builder.Build(ctx, cfg)
	if err != nil {
		return config.VaultConfig{}, engine.Params{}, err
	}
	return cfg, p, nil
}

// evictOnBadKey drops the cached master key after the engine rejected it,
// so the next operation re-prompts instead of failing on the same key.
// Delegated keys are never cached locally, so there is nothing to evict.
func (a *Adapter) evictOnBadKey(err error, cfg config.VaultConfig) {
	if err == nil || !engine.IsBadKey(err) {
		return
	}
	if cfg.Delegated() {
		return
	}
	a.resolver.Evict(cfg.VaultName)
}

// isRecycled reports whether a group path or name places an entry in the
// recycle bin.
func isRecycled(path string) bool {
	return strings.Contains(strings.ToLower(path), recycleBinMarker)
}

// liveEntries filters out entries whose immediate parent group is the
// recycle bin.
func liveEntries(entries []engine.Entry) []engine.Entry {
	live := entries[:0:0]
	for _, e := range entries {
		if isRecycled(e.ParentGroup) {
			continue
		}
		live = append(live, e)
	}
	return live
}
