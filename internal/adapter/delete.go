package adapter

import (
	"context"

	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/pkg/vault"
)

// Delete removes every entry stored under name, including copies parked
// in the recycle bin, so deletion is a real purge rather than a move. A
// title with no entries at all fails with NotFoundError.
func (a *Adapter) Delete(ctx context.Context, name, vaultName string, bag map[string]interface{}) error {
	cfg, p, err := a.buildParams(ctx, vaultName, bag)
	if err != nil {
		metrics.RecordOperation("delete", "error")
		return err
	}

	entries, err := a.engine.FindEntries(ctx, p, name)
	if err != nil {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("delete", "error")
		return err
	}
	if len(entries) == 0 {
		metrics.RecordOperation("delete", "error")
		return vault.NotFoundError{Vault: vaultName, Name: name}
	}

	// The delete contract takes no group filter; drop the vault's
	// default group path so the engine does not reject the call.
	p.GroupPath = ""

	if err := a.engine.DeleteEntry(ctx, p, name); err != nil {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("delete", "error")
		return err
	}
	a.log.Debug("deleted %d entries titled %s from vault %s", len(entries), name, vaultName)
	metrics.RecordOperation("delete", "success")
	return nil
}
