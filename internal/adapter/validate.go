package adapter

import (
	"context"
	"os"

	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/metrics"
	"github.com/systmms/kpsec/pkg/engine"
	"github.com/systmms/kpsec/pkg/vault"
)

// probeTitle is the nonexistent title looked up to prove the master key
// unlocks the database. Only a key rejection fails the probe.
const probeTitle = "kpsec-validate-probe"

// Validate checks that a vault is usable: its configuration is complete,
// its master key resolves, and the key unlocks the database. On the first
// encounter with a vault it registers the engine profile and reports
// success without probing; the first data operation performs the real
// unlock.
func (a *Adapter) Validate(ctx context.Context, vaultName string, bag map[string]interface{}) (bool, error) {
	cfg, err := a.validateConfig(vaultName, bag)
	if err != nil {
		metrics.RecordOperation("validate", "error")
		return false, err
	}

	p, err := a.builder.Build(ctx, cfg)
	if err != nil {
		metrics.RecordOperation("validate", "error")
		return false, err
	}

	if !a.engine.HasProfile(vaultName) {
		profile := engine.ProfileConfig{
			Name:              vaultName,
			Path:              cfg.DatabasePath,
			MasterKeyRequired: true,
		}
		if err := a.engine.RegisterProfile(ctx, profile); err != nil {
			metrics.RecordOperation("validate", "error")
			return false, err
		}
		a.log.Debug("registered vault %s for %s", vaultName, cfg.DatabasePath)
		metrics.RecordOperation("validate", "success")
		return true, nil
	}

	// Probe with a title that cannot exist. Anything short of a key
	// rejection proves the database opened.
	if _, err := a.engine.FindEntries(ctx, p, probeTitle); err != nil && engine.IsBadKey(err) {
		a.evictOnBadKey(err, cfg)
		metrics.RecordOperation("validate", "error")
		return false, err
	}

	metrics.RecordOperation("validate", "success")
	return true, nil
}

// validateConfig performs the static checks: the database path is set and
// exists, and delegation keys come as a pair.
func (a *Adapter) validateConfig(vaultName string, bag map[string]interface{}) (config.VaultConfig, error) {
	if vaultName == "" {
		return config.VaultConfig{}, vault.ConfigError{
			Field:   "vaultName",
			Message: "vault name is required",
		}
	}

	cfg, err := config.FromParams(vaultName, bag)
	if err != nil {
		return config.VaultConfig{}, err
	}

	if cfg.DatabasePath == "" {
		return config.VaultConfig{}, vault.ConfigError{
			Vault:   vaultName,
			Field:   config.ParamPath,
			Message: "database path is required",
		}
	}
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return config.VaultConfig{}, vault.ConfigError{
			Vault:   vaultName,
			Field:   config.ParamPath,
			Message: "database file not accessible: " + err.Error(),
		}
	}

	if cfg.Delegated() && (cfg.MasterKeyVault == "" || cfg.MasterKeySecret == "") {
		return config.VaultConfig{}, vault.ConfigError{
			Vault:   vaultName,
			Field:   config.ParamMasterKeySecret,
			Message: "masterKeyVault and masterKeySecretName are required as a pair",
		}
	}

	return cfg, nil
}
