package adapter

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/pkg/vault"
)

// Enumerate lists the live entries whose titles match the glob filter
// ("*" when empty). Entries anywhere under the recycle bin are excluded.
// Duplicate titles collapse to one listing with a warning; enumeration
// itself never fails over duplicates.
func (a *Adapter) Enumerate(ctx context.Context, filter, vaultName string, bag map[string]interface{}) ([]vault.SecretInfo, error) {
	if filter == "" {
		filter = "*"
	}

	cfg, p, err := a.buildParams(ctx, vaultName, bag)
	if err != nil {
		metrics.RecordOperation("enumerate", "error")
		return nil, err
	}

	entries, err := a.engine.ListEntries(ctx, p)
	if err != nil {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("enumerate", "error")
		return nil, err
	}

	seen := make(map[string]int)
	var titles []string
	for _, e := range entries {
		// Recycle-bin placement is checked against the full group path
		// so entries in subgroups of the bin are excluded too.
		if isRecycled(e.GroupPath) {
			continue
		}
		matched, err := path.Match(filter, e.Title)
		if err != nil {
			metrics.RecordOperation("enumerate", "error")
			return nil, vault.ConfigError{
				Vault:   vaultName,
				Field:   "filter",
				Message: "invalid filter pattern: " + filter,
			}
		}
		if !matched {
			continue
		}
		if seen[e.Title] == 0 {
			titles = append(titles, e.Title)
		}
		seen[e.Title]++
	}

	var duplicates []string
	for _, title := range titles {
		if seen[title] > 1 {
			duplicates = append(duplicates, title)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		a.log.Warn("vault %s has duplicate titles: %s", vaultName, strings.Join(duplicates, ", "))
		metrics.RecordDuplicates(vaultName, len(duplicates))
	}

	infos := make([]vault.SecretInfo, 0, len(titles))
	for _, title := range titles {
		infos = append(infos, vault.SecretInfo{
			Name:      title,
			Type:      vault.TypeCredential,
			VaultName: vaultName,
		})
	}
	metrics.RecordOperation("enumerate", "success")
	return infos, nil
}
