// Package vault defines the public contract of the kpsec adapter: the
// secret value sum type exchanged with the host, the read-only projection
// returned by enumeration, the typed errors the five operations surface,
// and the SecretSource capability interface used for master-key delegation.
//
// The adapter accepts exactly three secret shapes on write: a plain string,
// a pre-wrapped secure value, and a username+secret credential pair. The
// set is closed; anything else is rejected with UnsupportedTypeError.
package vault

// SecretKind discriminates the closed set of secret shapes.
type SecretKind int

const (
	// KindInvalid is the zero value. Writes reject it.
	KindInvalid SecretKind = iota

	// KindString is a plain-string secret.
	KindString

	// KindSecure is a pre-wrapped secure value. It carries the same
	// payload as KindString; the distinction records how the host
	// supplied it.
	KindSecure

	// KindCredential is a username plus secret pair.
	KindCredential
)

// String returns the kind's stable name, used in error messages.
func (k SecretKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSecure:
		return "secure-string"
	case KindCredential:
		return "credential"
	default:
		return "invalid"
	}
}

// Secret is the tagged union of supported secret shapes. Construct values
// with StringSecret, SecureSecret, or CredentialSecret; the zero value is
// invalid by design so that an unset Secret can never be written.
type Secret struct {
	kind     SecretKind
	value    string
	username string
}

// StringSecret wraps a plain-string secret value.
func StringSecret(value string) Secret {
	return Secret{kind: KindString, value: value}
}

// SecureSecret wraps a value the host already holds in secure form.
func SecureSecret(value string) Secret {
	return Secret{kind: KindSecure, value: value}
}

// CredentialSecret wraps a username and secret value pair.
func CredentialSecret(username, value string) Secret {
	return Secret{kind: KindCredential, username: username, value: value}
}

// Kind returns the shape discriminator.
func (s Secret) Kind() SecretKind { return s.kind }

// Value returns the secret payload (the password for credentials).
// Callers must never log it; use logging.Secret when formatting.
func (s Secret) Value() string { return s.value }

// Username returns the username for KindCredential secrets, "" otherwise.
func (s Secret) Username() string { return s.username }

// SecretType classifies entries exposed during enumeration. The underlying
// store holds one entry shape only, so the set has a single member.
type SecretType string

// TypeCredential is a credential with an optional username.
const TypeCredential SecretType = "credential"

// SecretInfo is the read-only projection of a stored entry returned by
// Enumerate. It never carries the secret value.
type SecretInfo struct {
	Name      string
	Type      SecretType
	VaultName string
}
