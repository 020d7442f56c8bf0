// Package sources implements the built-in delegate secret sources a vault
// can fetch its master key from: the operating system keychain and AWS
// Secrets Manager.
package sources

import (
	"context"
	"errors"

	"github.com/systmms/kpsec/pkg/vault"
	"github.com/zalando/go-keyring"
)

// DefaultKeychainService is the keychain service name used when the vault
// configuration does not set one.
const DefaultKeychainService = "kpsec"

// KeychainClient reads items from the OS keychain. The real client wraps
// go-keyring; tests substitute an in-memory one.
type KeychainClient interface {
	Get(service, account string) (string, error)
}

type keyringClient struct{}

func (keyringClient) Get(service, account string) (string, error) {
	return keyring.Get(service, account)
}

// KeychainSource reads secrets from the OS keychain (macOS Keychain,
// Windows Credential Manager, or the freedesktop Secret Service).
type KeychainSource struct {
	name    string
	service string
	client  KeychainClient
}

// KeychainOption configures a KeychainSource.
type KeychainOption func(*KeychainSource)

// WithKeychainClient sets a custom keychain client (for testing).
func WithKeychainClient(client KeychainClient) KeychainOption {
	return func(s *KeychainSource) {
		s.client = client
	}
}

// NewKeychainSource creates a keychain source from configuration. The
// optional "service" key scopes lookups to a keychain service name.
func NewKeychainSource(name string, cfg map[string]interface{}, opts ...KeychainOption) (*KeychainSource, error) {
	service := DefaultKeychainService
	if s, ok := cfg["service"].(string); ok && s != "" {
		service = s
	}

	src := &KeychainSource{name: name, service: service}
	for _, opt := range opts {
		opt(src)
	}
	if src.client == nil {
		src.client = keyringClient{}
	}
	return src, nil
}

// ReadSecret implements vault.SecretSource.
func (s *KeychainSource) ReadSecret(_ context.Context, name string) (vault.Secret, error) {
	value, err := s.client.Get(s.service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return vault.Secret{}, vault.NotFoundError{Vault: s.name, Name: name}
		}
		return vault.Secret{}, err
	}
	return vault.SecureSecret(value), nil
}
