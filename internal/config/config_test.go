package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/pkg/vault"
)

func TestFromParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  map[string]interface{}
		want    config.VaultConfig
		wantErr bool
	}{
		{
			name:   "path_only",
			params: map[string]interface{}{"path": "/tmp/db.kdbx"},
			want: config.VaultConfig{
				VaultName:    "personal",
				DatabasePath: "/tmp/db.kdbx",
			},
		},
		{
			name: "full_bag",
			params: map[string]interface{}{
				"path":                  "/tmp/db.kdbx",
				"defaultEntryGroupPath": "db/General",
				"masterKeyVault":        "keyring",
				"masterKeySecretName":   "personal-master",
			},
			want: config.VaultConfig{
				VaultName:        "personal",
				DatabasePath:     "/tmp/db.kdbx",
				DefaultGroupPath: "db/General",
				MasterKeyVault:   "keyring",
				MasterKeySecret:  "personal-master",
			},
		},
		{
			name: "unknown_keys_ignored",
			params: map[string]interface{}{
				"path":    "/tmp/db.kdbx",
				"timeout": 30,
			},
			want: config.VaultConfig{
				VaultName:    "personal",
				DatabasePath: "/tmp/db.kdbx",
			},
		},
		{
			name:    "non_string_path",
			params:  map[string]interface{}{"path": 42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := config.FromParams("personal", tt.params)
			if tt.wantErr {
				var cfgErr vault.ConfigError
				assert.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := config.VaultConfig{
		VaultName:       "work",
		DatabasePath:    "/tmp/work.kdbx",
		MasterKeyVault:  "keyring",
		MasterKeySecret: "work-master",
	}

	back, err := config.FromParams("work", cfg.Params())
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestDelegated(t *testing.T) {
	t.Parallel()

	assert.False(t, config.VaultConfig{}.Delegated())
	assert.True(t, config.VaultConfig{MasterKeyVault: "keyring"}.Delegated())
	// A half-configured pair still counts: the resolver rejects it.
	assert.True(t, config.VaultConfig{MasterKeySecret: "name"}.Delegated())
}

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	writeConfig := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "vaults.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
version: 1
vaults:
  personal:
    type: kdbx
    path: /tmp/personal.kdbx
    masterKeyVault: keyring
    masterKeySecretName: personal-master
  keyring:
    type: keychain
    service: kpsec
`)
		cfg := &config.Config{Path: path}
		require.NoError(t, cfg.Load())
		require.NotNil(t, cfg.Definition)
		assert.Equal(t, 1, cfg.Definition.Version)
		assert.Len(t, cfg.Definition.Vaults, 2)
		assert.Equal(t, "kdbx", cfg.Definition.Vaults["personal"].Type)

		params, ok := cfg.Definition.VaultParams("personal")
		require.True(t, ok)
		assert.Equal(t, "/tmp/personal.kdbx", params["path"])
		assert.Equal(t, "keyring", params["masterKeyVault"])

		_, ok = cfg.Definition.VaultParams("keyring")
		assert.False(t, ok, "non-kdbx vaults have no adapter params")
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Path: filepath.Join(t.TempDir(), "absent.yaml")}
		var cfgErr vault.ConfigError
		assert.ErrorAs(t, cfg.Load(), &cfgErr)
	})

	t.Run("unknown_type_rejected", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
version: 1
vaults:
  odd:
    type: carrier-pigeon
`)
		cfg := &config.Config{Path: path}
		var cfgErr vault.ConfigError
		assert.ErrorAs(t, cfg.Load(), &cfgErr)
	})

	t.Run("missing_version_rejected", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
vaults:
  personal:
    type: kdbx
`)
		cfg := &config.Config{Path: path}
		var cfgErr vault.ConfigError
		assert.ErrorAs(t, cfg.Load(), &cfgErr)
	})
}
