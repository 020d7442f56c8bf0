package adapter

import (
	"context"

	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/pkg/vault"
)

// Read returns the secret stored under name. Entries in the recycle bin
// are invisible: a title that exists only there reads as not found. The
// title must be unique among live entries; duplicates fail with
// AmbiguousEntryError rather than guessing.
func (a *Adapter) Read(ctx context.Context, name, vaultName string, bag map[string]interface{}) (vault.Secret, error) {
	cfg, p, err := a.buildParams(ctx, vaultName, bag)
	if err != nil {
		metrics.RecordOperation("read", "error")
		return vault.Secret{}, err
	}

	entries, err := a.engine.FindEntries(ctx, p, name)
	if err != nil {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("read", "error")
		return vault.Secret{}, err
	}

	live := liveEntries(entries)
	switch len(live) {
	case 0:
		metrics.RecordOperation("read", "error")
		return vault.Secret{}, vault.NotFoundError{Vault: vaultName, Name: name}
	case 1:
		// fall through
	default:
		metrics.RecordOperation("read", "error")
		return vault.Secret{}, vault.AmbiguousEntryError{Vault: vaultName, Name: name, Count: len(live)}
	}

	entry := live[0]
	metrics.RecordOperation("read", "success")
	if entry.Username != "" {
		return vault.CredentialSecret(entry.Username, entry.Password), nil
	}
	return vault.SecureSecret(entry.Password), nil
}
