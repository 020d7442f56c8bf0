package masterkey_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/logging"
	"github.com/systmms/kpsec/internal/masterkey"
	"github.com/systmms/kpsec/pkg/vault"
	"github.com/systmms/kpsec/tests/fakes"
)

func newTestLogger() *logging.Logger {
	return logging.NewWithWriter(false, true, io.Discard)
}

func keyBytes(t *testing.T, r *masterkey.Resolver, cfg config.VaultConfig) string {
	t.Helper()
	key, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)
	buf, err := key.Open()
	require.NoError(t, err)
	defer buf.Destroy()
	return string(buf.Bytes())
}

func TestResolvePromptThenCache(t *testing.T) {
	t.Parallel()

	prompter := &fakes.FakePrompter{Key: []byte("first-key")}
	cache := masterkey.NewCache()
	r := masterkey.New(cache, prompter, &fakes.FakeSourceLookup{}, newTestLogger())
	cfg := config.VaultConfig{VaultName: "personal"}

	assert.Equal(t, "first-key", keyBytes(t, r, cfg))
	assert.Equal(t, 1, prompter.Calls)
	assert.Equal(t, "personal", prompter.LastVault)
	assert.Equal(t, masterkey.KeyUsername, prompter.LastUsername)

	// Second resolution returns the identical key object, no re-prompt.
	first, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, prompter.Calls)
	assert.Equal(t, 1, cache.Len())
}

func TestResolvePromptDeclined(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prompter *fakes.FakePrompter
	}{
		{name: "cancelled", prompter: &fakes.FakePrompter{Err: errors.New("cancelled")}},
		{name: "empty_key", prompter: &fakes.FakePrompter{Key: nil}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := masterkey.New(masterkey.NewCache(), tt.prompter, &fakes.FakeSourceLookup{}, newTestLogger())
			_, err := r.Resolve(context.Background(), config.VaultConfig{VaultName: "personal"})

			var promptErr vault.PromptError
			assert.ErrorAs(t, err, &promptErr)
			assert.Equal(t, "personal", promptErr.Vault)
		})
	}
}

func TestResolveNoPrompterAvailable(t *testing.T) {
	t.Parallel()

	r := masterkey.New(masterkey.NewCache(), nil, &fakes.FakeSourceLookup{}, newTestLogger())
	_, err := r.Resolve(context.Background(), config.VaultConfig{VaultName: "ci"})

	var promptErr vault.PromptError
	assert.ErrorAs(t, err, &promptErr)
}

func TestResolveDelegated(t *testing.T) {
	t.Parallel()

	src := &fakes.FakeSource{
		Name: "keyring",
		Secrets: map[string]vault.Secret{
			"work-master": vault.StringSecret("delegated-key"),
		},
	}
	lookup := &fakes.FakeSourceLookup{Sources: map[string]vault.SecretSource{"keyring": src}}
	prompter := &fakes.FakePrompter{Key: []byte("never-used")}
	cache := masterkey.NewCache()
	r := masterkey.New(cache, prompter, lookup, newTestLogger())

	cfg := config.VaultConfig{
		VaultName:       "work",
		MasterKeyVault:  "keyring",
		MasterKeySecret: "work-master",
	}

	assert.Equal(t, "delegated-key", keyBytes(t, r, cfg))
	assert.Equal(t, 0, prompter.Calls)

	// Delegated keys are never cached locally: delegation re-resolves
	// every call since the delegate vault owns caching.
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, "delegated-key", keyBytes(t, r, cfg))
	assert.Equal(t, 2, src.Reads)
}

func TestResolveDelegatedMissingPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.VaultConfig
	}{
		{
			name: "vault_without_secret_name",
			cfg:  config.VaultConfig{VaultName: "work", MasterKeyVault: "keyring"},
		},
		{
			name: "secret_name_without_vault",
			cfg:  config.VaultConfig{VaultName: "work", MasterKeySecret: "work-master"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lookup := &fakes.FakeSourceLookup{}
			r := masterkey.New(masterkey.NewCache(), nil, lookup, newTestLogger())
			_, err := r.Resolve(context.Background(), tt.cfg)

			var cfgErr vault.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
			// Failure happens before any delegate lookup is attempted.
			assert.Empty(t, lookup.Lookups)
		})
	}
}

func TestResolveDelegatedErrorsPropagateUnchanged(t *testing.T) {
	t.Parallel()

	t.Run("unregistered_delegate_vault", func(t *testing.T) {
		t.Parallel()

		lookup := &fakes.FakeSourceLookup{}
		r := masterkey.New(masterkey.NewCache(), nil, lookup, newTestLogger())
		_, err := r.Resolve(context.Background(), config.VaultConfig{
			VaultName:       "work",
			MasterKeyVault:  "missing",
			MasterKeySecret: "work-master",
		})
		require.Error(t, err)
		assert.EqualError(t, err, `vault "missing" is not registered`)
	})

	t.Run("delegate_read_failure", func(t *testing.T) {
		t.Parallel()

		readErr := errors.New("keychain is locked")
		src := &fakes.FakeSource{Name: "keyring", Err: readErr}
		lookup := &fakes.FakeSourceLookup{Sources: map[string]vault.SecretSource{"keyring": src}}
		r := masterkey.New(masterkey.NewCache(), nil, lookup, newTestLogger())

		_, err := r.Resolve(context.Background(), config.VaultConfig{
			VaultName:       "work",
			MasterKeyVault:  "keyring",
			MasterKeySecret: "work-master",
		})
		assert.ErrorIs(t, err, readErr)
	})

	t.Run("delegate_missing_secret", func(t *testing.T) {
		t.Parallel()

		src := &fakes.FakeSource{Name: "keyring", Secrets: map[string]vault.Secret{}}
		lookup := &fakes.FakeSourceLookup{Sources: map[string]vault.SecretSource{"keyring": src}}
		r := masterkey.New(masterkey.NewCache(), nil, lookup, newTestLogger())

		_, err := r.Resolve(context.Background(), config.VaultConfig{
			VaultName:       "work",
			MasterKeyVault:  "keyring",
			MasterKeySecret: "absent",
		})
		var notFound vault.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestResolveDelegatedEmptyKey(t *testing.T) {
	t.Parallel()

	src := &fakes.FakeSource{
		Name:    "keyring",
		Secrets: map[string]vault.Secret{"work-master": vault.StringSecret("")},
	}
	lookup := &fakes.FakeSourceLookup{Sources: map[string]vault.SecretSource{"keyring": src}}
	r := masterkey.New(masterkey.NewCache(), nil, lookup, newTestLogger())

	_, err := r.Resolve(context.Background(), config.VaultConfig{
		VaultName:       "work",
		MasterKeyVault:  "keyring",
		MasterKeySecret: "work-master",
	})
	var resErr vault.ResolutionError
	assert.ErrorAs(t, err, &resErr)
}

func TestEvictForcesReprompt(t *testing.T) {
	t.Parallel()

	prompter := &fakes.FakePrompter{Key: []byte("key-v1")}
	cache := masterkey.NewCache()
	r := masterkey.New(cache, prompter, &fakes.FakeSourceLookup{}, newTestLogger())
	cfg := config.VaultConfig{VaultName: "personal"}

	_, err := r.Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.Calls)

	r.Evict("personal")
	assert.Equal(t, 0, cache.Len())

	prompter.Key = []byte("key-v2")
	assert.Equal(t, "key-v2", keyBytes(t, r, cfg))
	assert.Equal(t, 2, prompter.Calls)
}

func TestEvictUnknownVaultIsNoop(t *testing.T) {
	t.Parallel()

	r := masterkey.New(masterkey.NewCache(), nil, &fakes.FakeSourceLookup{}, newTestLogger())
	r.Evict("never-seen")
}
