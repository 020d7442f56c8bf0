package sources_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/kpsec/internal/sources"
	"github.com/systmms/kpsec/pkg/vault"
	"github.com/zalando/go-keyring"
)

type memKeychain struct {
	items map[string]map[string]string
	err   error
}

func (m *memKeychain) Get(service, account string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	value, ok := m.items[service][account]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return value, nil
}

func TestKeychainReadSecret(t *testing.T) {
	t.Parallel()

	client := &memKeychain{items: map[string]map[string]string{
		"kpsec": {"work-master": "hunter2"},
	}}
	src, err := sources.NewKeychainSource("keyring", nil, sources.WithKeychainClient(client))
	require.NoError(t, err)

	secret, err := src.ReadSecret(context.Background(), "work-master")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret.Value())
	assert.Equal(t, vault.KindSecure, secret.Kind())
}

func TestKeychainCustomService(t *testing.T) {
	t.Parallel()

	client := &memKeychain{items: map[string]map[string]string{
		"my-team": {"work-master": "hunter2"},
	}}
	src, err := sources.NewKeychainSource("keyring",
		map[string]interface{}{"service": "my-team"},
		sources.WithKeychainClient(client))
	require.NoError(t, err)

	secret, err := src.ReadSecret(context.Background(), "work-master")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret.Value())
}

func TestKeychainNotFound(t *testing.T) {
	t.Parallel()

	src, err := sources.NewKeychainSource("keyring", nil,
		sources.WithKeychainClient(&memKeychain{}))
	require.NoError(t, err)

	_, err = src.ReadSecret(context.Background(), "absent")
	var notFound vault.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "keyring", notFound.Vault)
	assert.Equal(t, "absent", notFound.Name)
}

func TestKeychainOtherErrorsPropagate(t *testing.T) {
	t.Parallel()

	locked := errors.New("keychain is locked")
	src, err := sources.NewKeychainSource("keyring", nil,
		sources.WithKeychainClient(&memKeychain{err: locked}))
	require.NoError(t, err)

	_, err = src.ReadSecret(context.Background(), "work-master")
	assert.ErrorIs(t, err, locked)
}
