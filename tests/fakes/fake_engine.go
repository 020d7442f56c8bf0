package fakes

import (
	"context"
	"errors"

	"github.com/systmms/kpsec/pkg/engine"
)

// FakeEngine is an in-memory engine.Engine. Entries and groups are plain
// slices the test arranges directly; error fields script failures per
// operation, and RejectKey simulates the database refusing the supplied
// master key on every data operation.
type FakeEngine struct {
	Profiles map[string]engine.ProfileConfig
	Entries  []engine.Entry
	Groups   []engine.Group

	// RejectKey makes every data operation fail with BadKeyError.
	RejectKey bool

	// Per-operation scripted errors, returned as-is.
	RegisterErr error
	FindErr     error
	ListErr     error
	RootErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error

	// Recorded calls.
	LastParams engine.Params
	Created    []engine.Entry
	Updated    []engine.Entry
	Deleted    []string
	FindCalls  []string
}

// Ensure FakeEngine implements engine.Engine
var _ engine.Engine = (*FakeEngine)(nil)

// NewFakeEngine creates an empty fake engine.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{Profiles: make(map[string]engine.ProfileConfig)}
}

// HasProfile implements engine.Engine.
func (f *FakeEngine) HasProfile(name string) bool {
	_, ok := f.Profiles[name]
	return ok
}

// RegisterProfile implements engine.Engine.
func (f *FakeEngine) RegisterProfile(_ context.Context, profile engine.ProfileConfig) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.Profiles[profile.Name] = profile
	return nil
}

func (f *FakeEngine) checkKey(p engine.Params) error {
	if f.RejectKey {
		return &engine.BadKeyError{Profile: p.Profile, Err: errors.New("invalid composite key")}
	}
	return nil
}

// FindEntries implements engine.Engine.
func (f *FakeEngine) FindEntries(_ context.Context, p engine.Params, title string) ([]engine.Entry, error) {
	f.LastParams = p
	f.FindCalls = append(f.FindCalls, title)
	if err := f.checkKey(p); err != nil {
		return nil, err
	}
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	var out []engine.Entry
	for _, e := range f.Entries {
		if e.Title == title {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListEntries implements engine.Engine.
func (f *FakeEngine) ListEntries(_ context.Context, p engine.Params) ([]engine.Entry, error) {
	f.LastParams = p
	if err := f.checkKey(p); err != nil {
		return nil, err
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]engine.Entry, len(f.Entries))
	copy(out, f.Entries)
	return out, nil
}

// RootGroups implements engine.Engine.
func (f *FakeEngine) RootGroups(_ context.Context, p engine.Params) ([]engine.Group, error) {
	f.LastParams = p
	if err := f.checkKey(p); err != nil {
		return nil, err
	}
	if f.RootErr != nil {
		return nil, f.RootErr
	}
	out := make([]engine.Group, len(f.Groups))
	copy(out, f.Groups)
	return out, nil
}

// CreateEntry implements engine.Engine.
func (f *FakeEngine) CreateEntry(_ context.Context, p engine.Params, e engine.Entry) error {
	f.LastParams = p
	if err := f.checkKey(p); err != nil {
		return err
	}
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if e.GroupPath == "" {
		e.GroupPath = p.GroupPath
	}
	f.Entries = append(f.Entries, e)
	f.Created = append(f.Created, e)
	return nil
}

// UpdateEntry implements engine.Engine.
func (f *FakeEngine) UpdateEntry(_ context.Context, p engine.Params, e engine.Entry) error {
	f.LastParams = p
	if err := f.checkKey(p); err != nil {
		return err
	}
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.Entries {
		if f.Entries[i].Title == e.Title {
			f.Entries[i].Password = e.Password
			if e.Username != "" {
				f.Entries[i].Username = e.Username
			}
		}
	}
	f.Updated = append(f.Updated, e)
	return nil
}

// DeleteEntry implements engine.Engine. Mirroring the engine contract, a
// group-path parameter is rejected as unrecognized.
func (f *FakeEngine) DeleteEntry(_ context.Context, p engine.Params, title string) error {
	f.LastParams = p
	if p.GroupPath != "" {
		return &engine.Error{
			Op:      "delete",
			Profile: p.Profile,
			Err:     errors.New("unrecognized parameter: group path"),
		}
	}
	if err := f.checkKey(p); err != nil {
		return err
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	kept := f.Entries[:0]
	for _, e := range f.Entries {
		if e.Title != title {
			kept = append(kept, e)
		}
	}
	f.Entries = kept
	f.Deleted = append(f.Deleted, title)
	return nil
}
