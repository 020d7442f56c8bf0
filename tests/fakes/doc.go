// Package fakes provides in-memory doubles for the adapter's
// collaborators: the datastore engine, the master-key prompter, and
// delegate secret sources. They are deterministic and scriptable so unit
// tests can exercise error paths without real databases or terminals.
package fakes
