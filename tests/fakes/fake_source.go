package fakes

import (
	"context"
	"fmt"

	"github.com/systmms/kpsec/pkg/vault"
)

// FakeSource is an in-memory vault.SecretSource.
type FakeSource struct {
	// Name labels the source in NotFoundError results.
	Name string

	// Secrets maps secret names to values.
	Secrets map[string]vault.Secret

	// Err, when set, fails every read.
	Err error

	// Reads counts ReadSecret invocations.
	Reads int
}

// ReadSecret implements vault.SecretSource.
func (s *FakeSource) ReadSecret(_ context.Context, name string) (vault.Secret, error) {
	s.Reads++
	if s.Err != nil {
		return vault.Secret{}, s.Err
	}
	secret, ok := s.Secrets[name]
	if !ok {
		return vault.Secret{}, vault.NotFoundError{Vault: s.Name, Name: name}
	}
	return secret, nil
}

// FakeSourceLookup resolves sources from a map and records lookups.
type FakeSourceLookup struct {
	Sources map[string]vault.SecretSource
	Lookups []string
}

// Source implements masterkey.SourceLookup.
func (l *FakeSourceLookup) Source(vaultName string) (vault.SecretSource, error) {
	l.Lookups = append(l.Lookups, vaultName)
	src, ok := l.Sources[vaultName]
	if !ok {
		return nil, fmt.Errorf("vault %q is not registered", vaultName)
	}
	return src, nil
}
