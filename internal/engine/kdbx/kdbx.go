// Package kdbx implements the datastore engine contract over KeePass
// KDBX database files using gokeepasslib. Every operation opens the file,
// decrypts it with the supplied master key, and for mutations encodes it
// back in place; nothing decrypted outlives the call.
package kdbx

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/systmms/kpsec/internal/logging"
	"github.com/systmms/kpsec/pkg/engine"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
	"github.com/tobischo/gokeepasslib/v3/wrappers"
)

// Engine drives KDBX files. Profiles map vault names to file paths; the
// mutex serializes file access since KDBX has no concurrent-writer story.
type Engine struct {
	mu       sync.Mutex
	profiles map[string]engine.ProfileConfig
	// profilesPath, when set, persists registrations across processes.
	profilesPath string
	log          *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProfilesFile persists profile registrations to a YAML file so
// vaults validated in one run stay registered in the next.
func WithProfilesFile(path string) Option {
	return func(e *Engine) {
		e.profilesPath = path
	}
}

// NewEngine creates a KDBX engine. When a profiles file is configured and
// exists, previously registered profiles are loaded from it.
func NewEngine(log *logging.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		profiles: make(map[string]engine.ProfileConfig),
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.profilesPath != "" {
		if err := e.loadProfiles(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// HasProfile implements engine.Engine.
func (e *Engine) HasProfile(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.profiles[name]
	return ok
}

// RegisterProfile implements engine.Engine.
func (e *Engine) RegisterProfile(_ context.Context, profile engine.ProfileConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.profiles[profile.Name] = profile
	if e.profilesPath != "" {
		if err := e.saveProfiles(); err != nil {
			return &engine.Error{Op: "register", Profile: profile.Name, Err: err}
		}
	}
	e.log.Debug("registered profile %s for %s", profile.Name, profile.Path)
	return nil
}

// open decrypts the profile's database. A decode failure is reported as a
// key rejection: KDBX authenticates the key as part of decryption, so a
// wrong key and a corrupt file are indistinguishable here.
func (e *Engine) open(p engine.Params) (*gokeepasslib.Database, engine.ProfileConfig, error) {
	profile, ok := e.profiles[p.Profile]
	if !ok {
		return nil, engine.ProfileConfig{}, &engine.Error{
			Op:      "open",
			Profile: p.Profile,
			Err:     fmt.Errorf("profile not registered"),
		}
	}
	if p.Key == nil {
		return nil, engine.ProfileConfig{}, &engine.BadKeyError{Profile: p.Profile}
	}

	file, err := os.Open(profile.Path)
	if err != nil {
		return nil, engine.ProfileConfig{}, &engine.Error{Op: "open", Profile: p.Profile, Err: err}
	}
	defer file.Close()

	keyBuf, err := p.Key.Open()
	if err != nil {
		return nil, engine.ProfileConfig{}, &engine.BadKeyError{Profile: p.Profile, Err: err}
	}
	defer keyBuf.Destroy()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(string(keyBuf.Bytes()))
	if err := gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, engine.ProfileConfig{}, &engine.BadKeyError{Profile: p.Profile, Err: err}
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, engine.ProfileConfig{}, &engine.BadKeyError{Profile: p.Profile, Err: err}
	}
	return db, profile, nil
}

// save re-encrypts the database to the profile's path.
func (e *Engine) save(db *gokeepasslib.Database, profile engine.ProfileConfig, op string) error {
	if err := db.LockProtectedEntries(); err != nil {
		return &engine.Error{Op: op, Profile: profile.Name, Err: err}
	}
	file, err := os.Create(profile.Path)
	if err != nil {
		return &engine.Error{Op: op, Profile: profile.Name, Err: err}
	}
	defer file.Close()
	if err := gokeepasslib.NewEncoder(file).Encode(db); err != nil {
		return &engine.Error{Op: op, Profile: profile.Name, Err: err}
	}
	return nil
}

// FindEntries implements engine.Engine.
func (e *Engine) FindEntries(_ context.Context, p engine.Params, title string) ([]engine.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, _, err := e.open(p)
	if err != nil {
		return nil, err
	}

	var out []engine.Entry
	walkGroups(db.Content.Root.Groups, "", func(path string, g *gokeepasslib.Group) {
		for i := range g.Entries {
			if g.Entries[i].GetTitle() == title {
				out = append(out, toEntry(&g.Entries[i], path, g.Name))
			}
		}
	})
	return out, nil
}

// ListEntries implements engine.Engine.
func (e *Engine) ListEntries(_ context.Context, p engine.Params) ([]engine.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, _, err := e.open(p)
	if err != nil {
		return nil, err
	}

	var out []engine.Entry
	walkGroups(db.Content.Root.Groups, "", func(path string, g *gokeepasslib.Group) {
		for i := range g.Entries {
			out = append(out, toEntry(&g.Entries[i], path, g.Name))
		}
	})
	return out, nil
}

// RootGroups implements engine.Engine.
func (e *Engine) RootGroups(_ context.Context, p engine.Params) ([]engine.Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, _, err := e.open(p)
	if err != nil {
		return nil, err
	}

	groups := make([]engine.Group, 0, len(db.Content.Root.Groups))
	for _, g := range db.Content.Root.Groups {
		groups = append(groups, engine.Group{Name: g.Name, Path: g.Name})
	}
	return groups, nil
}

// CreateEntry implements engine.Engine.
func (e *Engine) CreateEntry(_ context.Context, p engine.Params, entry engine.Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, profile, err := e.open(p)
	if err != nil {
		return err
	}

	groupPath := entry.GroupPath
	if groupPath == "" {
		groupPath = p.GroupPath
	}

	group, err := ensureGroup(&db.Content.Root.Groups, groupPath)
	if err != nil {
		return &engine.Error{Op: "create", Profile: p.Profile, Err: err}
	}

	newEntry := gokeepasslib.NewEntry()
	setValue(&newEntry, "Title", entry.Title, false)
	setValue(&newEntry, "UserName", entry.Username, false)
	setValue(&newEntry, "Password", entry.Password, true)
	group.Entries = append(group.Entries, newEntry)

	return e.save(db, profile, "create")
}

// UpdateEntry implements engine.Engine. Every live entry with the title is
// rewritten; copies in the recycle bin keep their old values.
func (e *Engine) UpdateEntry(_ context.Context, p engine.Params, entry engine.Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, profile, err := e.open(p)
	if err != nil {
		return err
	}

	updated := 0
	walkGroups(db.Content.Root.Groups, "", func(path string, g *gokeepasslib.Group) {
		if inRecycleBin(path) {
			return
		}
		for i := range g.Entries {
			if g.Entries[i].GetTitle() != entry.Title {
				continue
			}
			setValue(&g.Entries[i], "Password", entry.Password, true)
			if entry.Username != "" {
				setValue(&g.Entries[i], "UserName", entry.Username, false)
			}
			g.Entries[i].Times.LastModificationTime = &wrappers.TimeWrapper{Time: time.Now()}
			updated++
		}
	})
	if updated == 0 {
		return &engine.Error{
			Op:      "update",
			Profile: p.Profile,
			Err:     fmt.Errorf("no entry titled %q", entry.Title),
		}
	}

	return e.save(db, profile, "update")
}

// DeleteEntry implements engine.Engine. The delete contract takes no group
// filter; a group path in the params is an unrecognized parameter.
func (e *Engine) DeleteEntry(_ context.Context, p engine.Params, title string) error {
	if p.GroupPath != "" {
		return &engine.Error{
			Op:      "delete",
			Profile: p.Profile,
			Err:     fmt.Errorf("unrecognized parameter: group path"),
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	db, profile, err := e.open(p)
	if err != nil {
		return err
	}

	walkGroups(db.Content.Root.Groups, "", func(_ string, g *gokeepasslib.Group) {
		kept := g.Entries[:0]
		for _, entry := range g.Entries {
			if entry.GetTitle() != title {
				kept = append(kept, entry)
			}
		}
		g.Entries = kept
	})

	return e.save(db, profile, "delete")
}

// walkGroups visits every group depth-first. Paths join group names with
// "/"; root-level groups carry no separator.
func walkGroups(groups []gokeepasslib.Group, prefix string, visit func(path string, g *gokeepasslib.Group)) {
	for i := range groups {
		path := groups[i].Name
		if prefix != "" {
			path = prefix + "/" + groups[i].Name
		}
		visit(path, &groups[i])
		walkGroups(groups[i].Groups, path, visit)
	}
}

// ensureGroup finds the group at path, creating missing segments. An empty
// path targets the first root group, or creates one when the database has
// none.
func ensureGroup(roots *[]gokeepasslib.Group, path string) (*gokeepasslib.Group, error) {
	if path == "" {
		if len(*roots) == 0 {
			g := gokeepasslib.NewGroup()
			g.Name = "General"
			*roots = append(*roots, g)
		}
		return &(*roots)[0], nil
	}

	segments := strings.Split(path, "/")
	current := roots
	var group *gokeepasslib.Group
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("invalid group path %q", path)
		}
		found := false
		for i := range *current {
			if (*current)[i].Name == segment {
				group = &(*current)[i]
				found = true
				break
			}
		}
		if !found {
			g := gokeepasslib.NewGroup()
			g.Name = segment
			*current = append(*current, g)
			group = &(*current)[len(*current)-1]
		}
		current = &group.Groups
	}
	return group, nil
}

func inRecycleBin(path string) bool {
	return strings.Contains(strings.ToLower(path), "recycle bin")
}

func toEntry(e *gokeepasslib.Entry, groupPath, parent string) engine.Entry {
	return engine.Entry{
		Title:       e.GetTitle(),
		Username:    e.GetContent("UserName"),
		Password:    e.GetPassword(),
		GroupPath:   groupPath,
		ParentGroup: parent,
	}
}

// setValue sets a key/value pair on an entry, replacing an existing value.
func setValue(e *gokeepasslib.Entry, key, content string, protected bool) {
	value := gokeepasslib.V{Content: content}
	if protected {
		value.Protected = wrappers.NewBoolWrapper(true)
	}
	for i := range e.Values {
		if e.Values[i].Key == key {
			e.Values[i].Value = value
			return
		}
	}
	e.Values = append(e.Values, gokeepasslib.ValueData{Key: key, Value: value})
}
