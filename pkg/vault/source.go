package vault

import "context"

// SecretSource is the capability required of any registered vault that can
// serve another vault's master key: read one secret by name. The kpsec
// adapter itself implements it, so delegation may chain through another
// KDBX vault, an OS keychain, or a cloud secret manager interchangeably
// without a dependency on any concrete adapter type.
type SecretSource interface {
	// ReadSecret returns the named secret. Implementations return
	// NotFoundError when the secret is absent and propagate their
	// backend's errors otherwise.
	ReadSecret(ctx context.Context, name string) (Secret, error)
}
