package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/kpsec/pkg/engine"
	"github.com/systmms/kpsec/pkg/vault"
	"github.com/systmms/kpsec/tests/fakes"
)

func TestReadCredentialEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.Entries = []engine.Entry{
		{Title: "db-password", Username: "svc-db", Password: "s3cret", GroupPath: "General", ParentGroup: "General"},
	}

	secret, err := f.adapter.Read(context.Background(), "db-password", "personal", bag("/v/p.kdbx"))
	require.NoError(t, err)
	assert.Equal(t, vault.KindCredential, secret.Kind())
	assert.Equal(t, "svc-db", secret.Username())
	assert.Equal(t, "s3cret", secret.Value())
}

func TestReadEntryWithoutUsername(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.Entries = []engine.Entry{
		{Title: "api-token", Password: "tok", GroupPath: "General", ParentGroup: "General"},
	}

	secret, err := f.adapter.Read(context.Background(), "api-token", "personal", bag("/v/p.kdbx"))
	require.NoError(t, err)
	assert.Equal(t, vault.KindSecure, secret.Kind())
	assert.Equal(t, "tok", secret.Value())
	assert.Empty(t, secret.Username())
}

func TestReadNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.adapter.Read(context.Background(), "absent", "personal", bag("/v/p.kdbx"))
	var notFound vault.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "personal", notFound.Vault)
	assert.Equal(t, "absent", notFound.Name)
}

func TestReadRecycledEntryIsInvisible(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.Entries = []engine.Entry{
		{Title: "old-token", Password: "x", GroupPath: "Recycle Bin", ParentGroup: "Recycle Bin"},
	}

	_, err := f.adapter.Read(context.Background(), "old-token", "personal", bag("/v/p.kdbx"))
	var notFound vault.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestReadPrefersLiveOverRecycledCopy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.Entries = []engine.Entry{
		{Title: "db-password", Password: "stale", GroupPath: "Recycle Bin", ParentGroup: "Recycle Bin"},
		{Title: "db-password", Password: "fresh", GroupPath: "General", ParentGroup: "General"},
	}

	secret, err := f.adapter.Read(context.Background(), "db-password", "personal", bag("/v/p.kdbx"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", secret.Value())
}

func TestReadAmbiguousTitle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.Entries = []engine.Entry{
		{Title: "db-password", Password: "a", GroupPath: "General", ParentGroup: "General"},
		{Title: "db-password", Password: "b", GroupPath: "Homelab", ParentGroup: "Homelab"},
	}

	_, err := f.adapter.Read(context.Background(), "db-password", "personal", bag("/v/p.kdbx"))
	var ambiguous vault.AmbiguousEntryError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)
}

func TestReadBadKeyEvictsAndReprompts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.RejectKey = true

	_, err := f.adapter.Read(context.Background(), "db-password", "personal", bag("/v/p.kdbx"))
	require.Error(t, err)
	assert.True(t, engine.IsBadKey(err))
	assert.Equal(t, 0, f.cache.Len())

	// The rejected key is gone; the next operation prompts again.
	f.engine.RejectKey = false
	f.engine.Entries = []engine.Entry{
		{Title: "db-password", Password: "ok", GroupPath: "General", ParentGroup: "General"},
	}
	_, err = f.adapter.Read(context.Background(), "db-password", "personal", bag("/v/p.kdbx"))
	require.NoError(t, err)
	assert.Equal(t, 2, f.prompter.Calls)
}

func TestReadDelegatedBadKeyDoesNotEvict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.lookup.Sources = map[string]vault.SecretSource{
		"keyring": &fakes.FakeSource{
			Name:    "keyring",
			Secrets: map[string]vault.Secret{"work-master": vault.StringSecret("k")},
		},
	}
	f.engine.RejectKey = true

	delegated := map[string]interface{}{
		"path":                "/v/work.kdbx",
		"masterKeyVault":      "keyring",
		"masterKeySecretName": "work-master",
	}

	_, err := f.adapter.Read(context.Background(), "db-password", "work", delegated)
	require.Error(t, err)
	assert.True(t, engine.IsBadKey(err))
	assert.Equal(t, 0, f.prompter.Calls)
}

func TestReadPropagatesPromptFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.prompter.Err = assert.AnError

	_, err := f.adapter.Read(context.Background(), "db-password", "personal", bag("/v/p.kdbx"))
	var promptErr vault.PromptError
	assert.ErrorAs(t, err, &promptErr)
	assert.Empty(t, f.engine.FindCalls)
}

func TestReadAsSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.engine.Entries = []engine.Entry{
		{Title: "inner-master", Password: "k2", GroupPath: "General", ParentGroup: "General"},
	}

	src := f.adapter.AsSource("personal", bag("/v/p.kdbx"))
	secret, err := src.ReadSecret(context.Background(), "inner-master")
	require.NoError(t, err)
	assert.Equal(t, "k2", secret.Value())
}
