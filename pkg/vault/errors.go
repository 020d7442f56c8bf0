package vault

import "fmt"

// ConfigError indicates malformed or missing vault configuration.
type ConfigError struct {
	Vault   string
	Field   string
	Message string
}

// Error implements the error interface.
func (e ConfigError) Error() string {
	msg := "vault configuration error"
	if e.Vault != "" {
		msg += " for " + e.Vault
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	return msg + ": " + e.Message
}

// NotFoundError indicates the requested secret is absent from the vault.
type NotFoundError struct {
	Vault string
	Name  string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return "secret not found: " + e.Name + " in vault " + e.Vault
}

// AmbiguousEntryError indicates more than one live entry shares a title,
// so a read cannot pick one.
type AmbiguousEntryError struct {
	Vault string
	Name  string
	Count int
}

// Error implements the error interface.
func (e AmbiguousEntryError) Error() string {
	return fmt.Sprintf("%d entries titled %q in vault %s: title must be unique to read", e.Count, e.Name, e.Vault)
}

// UnsupportedTypeError indicates a write was given a secret shape outside
// the supported set (string, secure value, credential).
type UnsupportedTypeError struct {
	Got SecretKind
}

// Error implements the error interface.
func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported secret shape %q: expected string, secure-string, or credential", e.Got)
}

// PromptError indicates the user declined or cancelled master-key entry.
type PromptError struct {
	Vault   string
	Message string
}

// Error implements the error interface.
func (e PromptError) Error() string {
	return "master key prompt for vault " + e.Vault + " failed: " + e.Message
}

// ResolutionError is the umbrella for master-key resolution failures not
// otherwise categorized.
type ResolutionError struct {
	Vault   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e ResolutionError) Error() string {
	msg := "failed to resolve master key for vault " + e.Vault + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e ResolutionError) Unwrap() error { return e.Err }
