package fakes

import "context"

// FakePrompter returns scripted key material and counts prompts.
type FakePrompter struct {
	// Key is returned on every prompt unless Err is set.
	Key []byte

	// Err, when set, is returned instead of key material.
	Err error

	// Calls counts PromptKey invocations.
	Calls int

	// LastVault and LastUsername record the most recent prompt.
	LastVault    string
	LastUsername string
}

// PromptKey implements masterkey.Prompter.
func (p *FakePrompter) PromptKey(_ context.Context, vaultName, username string) ([]byte, error) {
	p.Calls++
	p.LastVault = vaultName
	p.LastUsername = username
	if p.Err != nil {
		return nil, p.Err
	}
	// Copy so callers destroying the returned buffer cannot mutate the
	// script.
	out := make([]byte, len(p.Key))
	copy(out, p.Key)
	return out, nil
}
