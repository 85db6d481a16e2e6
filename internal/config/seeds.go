package config

// SourceSeed describes one data source to register when the dashboard
// starts. Seeds let a deployment bring up the same source set on every run
// without scripting the registration calls.
type SourceSeed struct {
	// Name is the human-readable source name.
	Name string `yaml:"name,omitempty"`

	// Type classifies the source: "osint", "network", "threat", or
	// "custom". If empty, the default seed type is used.
	Type string `yaml:"type,omitempty"`

	// URL is an optional locator recorded on the source.
	URL string `yaml:"url,omitempty"`

	// Status is the initial source status. If empty, the default seed
	// status is used; sources registered without any status start
	// inactive.
	Status string `yaml:"status,omitempty"`

	// Config holds free-form source settings merged over the defaults.
	Config map[string]string `yaml:"config,omitempty"`
}

// File represents the structure of the .threatdesk configuration file.
type File struct {
	// Sources lists the data sources registered at startup, in order.
	Sources []SourceSeed `yaml:"sources,omitempty"`

	// Defaults contains seed values applied to every source unless the
	// source sets its own.
	Defaults SourceSeed `yaml:"defaults,omitempty"`
}

// NormalizedSources returns the seeds with defaults applied, in file order.
func (cf *File) NormalizedSources() []SourceSeed {
	out := make([]SourceSeed, 0, len(cf.Sources))
	for _, seed := range cf.Sources {
		out = append(out, cf.normalize(seed))
	}
	return out
}

// normalize merges the file defaults into a seed. Scalar fields fall back
// to the default when empty; config maps merge with the seed winning on
// key conflicts.
func (cf *File) normalize(seed SourceSeed) SourceSeed {
	result := seed
	if result.Type == "" {
		result.Type = cf.Defaults.Type
	}
	if result.URL == "" {
		result.URL = cf.Defaults.URL
	}
	if result.Status == "" {
		result.Status = cf.Defaults.Status
	}
	if len(cf.Defaults.Config) > 0 {
		merged := make(map[string]string, len(cf.Defaults.Config)+len(seed.Config))
		for k, v := range cf.Defaults.Config {
			merged[k] = v
		}
		for k, v := range seed.Config {
			merged[k] = v
		}
		result.Config = merged
	}
	return result
}
