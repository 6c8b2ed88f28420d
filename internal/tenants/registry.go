package tenants

import (
	"encoding/json"
	"fmt"
	"os"

	_ "embed"

	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

//go:embed profiles.json
var defaultProfiles []byte

// Registry resolves tenant refs to mapping profiles. Tenants are added by
// extending the profile file, not by touching sync code.
type Registry struct {
	profiles map[string]*Profile
}

type profileFile struct {
	Profiles []*Profile `json:"profiles"`
}

// NewRegistry parses a profile document.
func NewRegistry(raw []byte) (*Registry, error) {
	var file profileFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "parse tenant profiles")
	}
	if len(file.Profiles) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "no tenant profiles defined")
	}

	profiles := make(map[string]*Profile, len(file.Profiles))
	for _, profile := range file.Profiles {
		if err := profile.validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid tenant profile")
		}
		if _, exists := profiles[profile.Ref]; exists {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration,
				fmt.Sprintf("duplicate tenant profile ref %q", profile.Ref))
		}
		profiles[profile.Ref] = profile
	}
	return &Registry{profiles: profiles}, nil
}

// LoadRegistry reads profiles from path, or from the embedded defaults when
// path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(defaultProfiles)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "read tenant profile file")
	}
	return NewRegistry(raw)
}

// Lookup returns the profile for a tenant ref. An unsupported ref fails fast
// so callers never attempt CRM traffic for a tenant with no mapping.
func (r *Registry) Lookup(ref string) (*Profile, error) {
	profile, ok := r.profiles[ref]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeCRM,
			fmt.Sprintf("no crm mapping profile registered for ref %q", ref))
	}
	return profile, nil
}

// Refs lists the registered tenant refs.
func (r *Registry) Refs() []string {
	refs := make([]string, 0, len(r.profiles))
	for ref := range r.profiles {
		refs = append(refs, ref)
	}
	return refs
}
