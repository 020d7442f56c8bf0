// Package engine defines the contract between the kpsec adapter and the
// password-database engine that owns the encrypted store. The adapter
// composes these operations; it never touches the database format itself.
//
// Engines address a database through a named profile registered once per
// process (or persisted, at the engine's discretion). Every data operation
// receives Params carrying the profile name, the master key, and an
// optional group path.
package engine

import (
	"context"
	"errors"

	"github.com/systmms/kpsec/internal/secure"
)

// Params is the parameter set an engine needs for one operation.
type Params struct {
	// Profile names the registered database profile (the vault name).
	Profile string

	// Key unlocks the database. Engines open it for the duration of the
	// operation and must not retain the plaintext.
	Key *secure.Key

	// GroupPath optionally scopes the operation to a group subtree.
	// The delete contract does not accept it; engines reject a delete
	// carrying a group path.
	GroupPath string
}

// ProfileConfig registers a database profile.
type ProfileConfig struct {
	// Name is the profile identifier, unique per engine.
	Name string `yaml:"name"`

	// Path locates the database file.
	Path string `yaml:"path"`

	// MasterKeyRequired records that a key is supplied per call rather
	// than stored with the profile.
	MasterKeyRequired bool `yaml:"masterKeyRequired"`
}

// Entry is one stored secret record as the engine exposes it.
type Entry struct {
	Title    string
	Username string
	Password string

	// GroupPath is the full path of the containing group from the root,
	// separator "/".
	GroupPath string

	// ParentGroup is the name of the immediate containing group.
	ParentGroup string
}

// Group is a hierarchical container for entries.
type Group struct {
	Name string

	// Path is the full path from the root, separator "/". Root-level
	// groups carry no separator.
	Path string
}

// Engine is the datastore collaborator the adapter drives. Implementations
// surface BadKeyError when the supplied key fails to unlock the database
// and wrap all other failures in *Error.
type Engine interface {
	// HasProfile reports whether a profile is registered under name.
	HasProfile(name string) bool

	// RegisterProfile registers a database profile. Registering an
	// already-known name overwrites it.
	RegisterProfile(ctx context.Context, profile ProfileConfig) error

	// FindEntries returns every entry whose title matches exactly,
	// recycled entries included. Callers filter recycle-bin placement.
	FindEntries(ctx context.Context, p Params, title string) ([]Entry, error)

	// ListEntries returns all entries in the database.
	ListEntries(ctx context.Context, p Params) ([]Entry, error)

	// RootGroups returns the database's top-level groups.
	RootGroups(ctx context.Context, p Params) ([]Group, error)

	// CreateEntry adds a new entry under p.GroupPath (or e.GroupPath when
	// set), creating intermediate groups as needed.
	CreateEntry(ctx context.Context, p Params, e Entry) error

	// UpdateEntry rewrites the password and username of every entry
	// matching e.Title outside the recycle bin.
	UpdateEntry(ctx context.Context, p Params, e Entry) error

	// DeleteEntry removes every entry with the title, recycled ones
	// included. The delete contract takes no group filter: a Params with
	// GroupPath set is rejected with *Error.
	DeleteEntry(ctx context.Context, p Params, title string) error
}

// Error wraps a datastore failure with the operation and profile it came
// from. The adapter propagates it to the host unchanged.
type Error struct {
	Op      string
	Profile string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "engine " + e.Op + " failed for profile " + e.Profile + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// BadKeyError indicates the database rejected the supplied master key.
// Callers holding a cached key evict it before surfacing this error.
type BadKeyError struct {
	Profile string
	Err     error
}

// Error implements the error interface.
func (e *BadKeyError) Error() string {
	msg := "master key rejected for profile " + e.Profile
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BadKeyError) Unwrap() error { return e.Err }

// IsBadKey reports whether err carries a BadKeyError anywhere in its chain.
func IsBadKey(err error) bool {
	var bad *BadKeyError
	return errors.As(err, &bad)
}
