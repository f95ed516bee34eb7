package signal

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Built-in profile names. The dashboard variants disagreed on thresholds;
// each set lives here as a named profile instead of per-page constants.
const (
	ProfileStandard     = "standard"
	ProfileConservative = "conservative"
	ProfileIntraday     = "intraday"
)

// BuiltinProfiles returns fresh copies of the built-in profiles.
func BuiltinProfiles() map[string]Config {
	std := DefaultConfig()

	cons := DefaultConfig()
	cons.Name = ProfileConservative
	cons.Advice = AdviceThresholds{Buy: 1.6, Hold: 3.2, Watch: 4.0}

	intra := DefaultConfig()
	intra.Name = ProfileIntraday
	intra.BandWindow = 20
	intra.Monitor.OK = 0.25
	intra.Monitor.Watch = 0.6

	return map[string]Config{
		ProfileStandard:     std,
		ProfileConservative: cons,
		ProfileIntraday:     intra,
	}
}

// Registry resolves profile names to validated configs.
type Registry struct {
	profiles map[string]Config
	fallback string
}

// NewRegistry builds the built-in profiles and applies overrides on top.
// An override for an unknown name starts from the standard profile.
func NewRegistry(overrides map[string]yaml.Node) (*Registry, error) {
	profiles := BuiltinProfiles()
	for name, node := range overrides {
		base, ok := profiles[name]
		if !ok {
			base = profiles[ProfileStandard]
		}
		cfg := base.Clone()
		if err := node.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode profile %q: %w", name, err)
		}
		cfg.Name = name
		profiles[name] = cfg
	}
	for _, cfg := range profiles {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return &Registry{profiles: profiles, fallback: ProfileStandard}, nil
}

// Get returns a copy of the named profile.
func (r *Registry) Get(name string) (Config, bool) {
	if name == "" {
		name = r.fallback
	}
	cfg, ok := r.profiles[name]
	if !ok {
		return Config{}, false
	}
	return cfg.Clone(), true
}

// SetDefault changes the profile used when a caller names none.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.profiles[name]; !ok {
		return fmt.Errorf("unknown default profile %q", name)
	}
	r.fallback = name
	return nil
}

// Default is the name resolved for an empty profile.
func (r *Registry) Default() string { return r.fallback }

// Names lists the registered profiles in alphabetical order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns copies of every profile keyed by name.
func (r *Registry) All() map[string]Config {
	out := make(map[string]Config, len(r.profiles))
	for name, cfg := range r.profiles {
		out[name] = cfg.Clone()
	}
	return out
}
