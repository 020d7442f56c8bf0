// Package masterkey resolves and caches the master keys that unlock vault
// databases. Resolution tries three strategies in order: read the key from
// a delegate vault when one is configured, return the process-cached key,
// or prompt interactively and cache the result.
package masterkey

import (
	"context"

	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/logging"
	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/internal/secure"
	"github.com/systmms/kpsec/pkg/vault"
)

// KeyUsername is the fixed placeholder shown as the username in the
// interactive master-key prompt.
const KeyUsername = "master-key"

// Prompter asks the user for a vault's master key. Implementations block
// until the user answers or cancels.
type Prompter interface {
	// PromptKey returns the entered key material. An error means the
	// user declined or the environment cannot prompt.
	PromptKey(ctx context.Context, vaultName, username string) ([]byte, error)
}

// SourceLookup finds the secret source registered under a vault name.
// The registry implements it; the indirection keeps this package free of
// a dependency on concrete adapter types.
type SourceLookup interface {
	Source(vaultName string) (vault.SecretSource, error)
}

// Resolver obtains master keys and owns the process cache. Construct one
// per process (or per test) with New; the cache is injected so tests get
// a fresh one.
type Resolver struct {
	cache    *Cache
	prompter Prompter
	sources  SourceLookup
	log      *logging.Logger
}

// New creates a resolver. prompter may be nil in non-interactive hosts,
// in which case the prompt strategy fails with PromptError.
func New(cache *Cache, prompter Prompter, sources SourceLookup, log *logging.Logger) *Resolver {
	return &Resolver{
		cache:    cache,
		prompter: prompter,
		sources:  sources,
		log:      log,
	}
}

// Resolve returns the master key for a vault.
//
// Strategy order:
//  1. Delegation, when the vault config names a master-key vault. The
//     delegate's errors propagate unchanged; they are more actionable
//     than anything this package could wrap them in. Delegated keys are
//     never cached here: the delegate vault owns its own caching.
//  2. The process cache.
//  3. An interactive prompt, cached on success.
func (r *Resolver) Resolve(ctx context.Context, cfg config.VaultConfig) (*secure.Key, error) {
	if cfg.Delegated() {
		return r.resolveDelegated(ctx, cfg)
	}

	if key, ok := r.cache.Get(cfg.VaultName); ok {
		r.log.Debug("master key for %s served from cache", cfg.VaultName)
		metrics.RecordResolution(cfg.VaultName, "cache")
		return key, nil
	}

	return r.resolvePrompt(ctx, cfg.VaultName)
}

// Evict discards a vault's cached key after the engine rejected it, so
// the next resolution re-prompts instead of looping on a bad key. Keys
// obtained by delegation have nothing local to evict; callers skip them.
func (r *Resolver) Evict(vaultName string) {
	if r.cache.Evict(vaultName) {
		r.log.Debug("evicted cached master key for %s", vaultName)
		metrics.RecordEviction(vaultName)
	}
}

func (r *Resolver) resolveDelegated(ctx context.Context, cfg config.VaultConfig) (*secure.Key, error) {
	if cfg.MasterKeyVault == "" || cfg.MasterKeySecret == "" {
		return nil, vault.ConfigError{
			Vault:   cfg.VaultName,
			Field:   config.ParamMasterKeySecret,
			Message: "masterKeyVault and masterKeySecretName are required as a pair",
		}
	}

	src, err := r.sources.Source(cfg.MasterKeyVault)
	if err != nil {
		return nil, err
	}

	secret, err := src.ReadSecret(ctx, cfg.MasterKeySecret)
	if err != nil {
		return nil, err
	}
	if secret.Value() == "" {
		return nil, vault.ResolutionError{
			Vault:   cfg.VaultName,
			Message: "delegate vault " + cfg.MasterKeyVault + " returned an empty key",
		}
	}

	r.log.Debug("master key for %s read from delegate vault %s", cfg.VaultName, cfg.MasterKeyVault)
	metrics.RecordResolution(cfg.VaultName, "delegated")
	return secure.NewKeyFromString(secret.Value()), nil
}

func (r *Resolver) resolvePrompt(ctx context.Context, vaultName string) (*secure.Key, error) {
	if r.prompter == nil {
		return nil, vault.PromptError{
			Vault:   vaultName,
			Message: "interactive prompting is not available",
		}
	}

	data, err := r.prompter.PromptKey(ctx, vaultName, KeyUsername)
	if err != nil {
		return nil, vault.PromptError{Vault: vaultName, Message: err.Error()}
	}
	if len(data) == 0 {
		return nil, vault.PromptError{Vault: vaultName, Message: "no key supplied"}
	}

	key := secure.NewKey(data)
	r.cache.Put(vaultName, key)
	metrics.RecordResolution(vaultName, "prompt")
	return key, nil
}
