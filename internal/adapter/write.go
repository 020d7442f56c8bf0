package adapter

import (
	"context"

	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/pkg/engine"
	"github.com/systmms/kpsec/pkg/vault"
)

// Write stores a secret under name, updating the existing live entry when
// one exists and creating one otherwise, so repeated writes of the same
// title stay idempotent. Entries parked in the recycle bin are ignored:
// writing a recycled title creates a fresh live entry.
func (a *Adapter) Write(ctx context.Context, name string, secret vault.Secret, vaultName string, bag map[string]interface{}) error {
	var username, password string
	switch secret.Kind() {
	case vault.KindString, vault.KindSecure:
		password = secret.Value()
	case vault.KindCredential:
		username = secret.Username()
		password = secret.Value()
	default:
		metrics.RecordOperation("write", "error")
		return vault.UnsupportedTypeError{Got: secret.Kind()}
	}

	cfg, p, err := a.buildParams(ctx, vaultName, bag)
	if err != nil {
		metrics.RecordOperation("write", "error")
		return err
	}

	existing, err := a.engine.FindEntries(ctx, p, name)
	if err != nil {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("write", "error")
		return err
	}

	entry := engine.Entry{Title: name, Username: username, Password: password}

	if len(liveEntries(existing)) > 0 {
		if err := a.engine.UpdateEntry(ctx, p, entry); err != nil {
			a.evictOnBadKey(err, cfg)
			metrics.RecordOperation("write", "error")
			return err
		}
		a.log.Debug("updated entry %s in vault %s", name, vaultName)
		metrics.RecordOperation("write", "success")
		return nil
	}

	if p.GroupPath == "" {
		group, err := a.defaultGroup(ctx, p)
		if err != nil {
			a.evictOnBadKey(err, cfg)
			metrics.RecordOperation("write", "error")
			return err
		}
		entry.GroupPath = group
	}

	if err := a.engine.CreateEntry(ctx, p, entry); err != nil {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("write", "error")
		return err
	}
	a.log.Debug("created entry %s in vault %s", name, vaultName)
	metrics.RecordOperation("write", "success")
	return nil
}

// defaultGroup picks the group for new entries when neither the call nor
// the vault configuration names one: the first root-level group that is
// not the recycle bin.
func (a *Adapter) defaultGroup(ctx context.Context, p engine.Params) (string, error) {
	groups, err := a.engine.RootGroups(ctx, p)
	if err != nil {
		return "", err
	}
	for _, g := range groups {
		if isRecycled(g.Name) {
			continue
		}
		return g.Path, nil
	}
	return "", nil
}
