package kdbx

import (
	"os"
	"sort"

	"github.com/systmms/kpsec/pkg/engine"
	"gopkg.in/yaml.v3"
)

// profilesDocument is the on-disk shape of the profiles file. It carries
// only locations, never key material.
type profilesDocument struct {
	Profiles []engine.ProfileConfig `yaml:"profiles"`
}

func (e *Engine) loadProfiles() error {
	data, err := os.ReadFile(e.profilesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var doc profilesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, profile := range doc.Profiles {
		e.profiles[profile.Name] = profile
	}
	return nil
}

// saveProfiles writes the registration list. Callers hold e.mu.
func (e *Engine) saveProfiles() error {
	doc := profilesDocument{Profiles: make([]engine.ProfileConfig, 0, len(e.profiles))}
	for _, profile := range e.profiles {
		doc.Profiles = append(doc.Profiles, profile)
	}
	sort.Slice(doc.Profiles, func(i, j int) bool {
		return doc.Profiles[i].Name < doc.Profiles[j].Name
	})

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(e.profilesPath, data, 0o600)
}
