package model

import "time"

// SourceType tags what kind of feed a data source represents.
type SourceType string

const (
	// SourceTypeOSINT is an open-source intelligence feed (social media,
	// news, forum alerts).
	SourceTypeOSINT SourceType = "osint"

	// SourceTypeNetwork is a network telemetry feed (connection logs).
	SourceTypeNetwork SourceType = "network"

	// SourceTypeThreat is a threat-intelligence feed (malware and phishing
	// indicators).
	SourceTypeThreat SourceType = "threat"

	// SourceTypeCustom is a user-supplied source, typically an uploaded file.
	SourceTypeCustom SourceType = "custom"
)

// SourceStatus is the lifecycle state of a registered source.
type SourceStatus string

const (
	// SourceStatusActive marks a source whose data is being populated.
	SourceStatusActive SourceStatus = "active"

	// SourceStatusInactive marks a registered source with no population
	// scheduled. New non-file sources default to inactive.
	SourceStatusInactive SourceStatus = "inactive"

	// SourceStatusError marks a file source whose normalization failed.
	// The failure is terminal for that registration attempt.
	SourceStatusError SourceStatus = "error"
)

// DataSource is a registered origin of records.
//
// The id is unique among all currently registered sources for the process
// lifetime. The source's record set lives in the registry, keyed by this id,
// and is dropped together with the source on removal.
type DataSource struct {
	// ID is an opaque unique identifier generated at registration.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Type tags the feed kind; file sources are always SourceTypeCustom.
	Type SourceType `json:"type"`

	// URL is the origin locator: a feed URL for non-file sources (stored,
	// never dereferenced) or a "file://<name>" marker for uploads.
	URL string `json:"url"`

	// Status is the lifecycle state.
	Status SourceStatus `json:"status"`

	// LastUpdated is refreshed on every mutation and demo population.
	LastUpdated time.Time `json:"lastUpdated"`

	// Config is an opaque configuration payload supplied at registration.
	// For file sources it records the originating file name and size.
	Config map[string]any `json:"config,omitempty"`
}

// Clone returns a copy of the source with its own config map, so registry
// accessors can hand out sources without exposing internal state to
// mutation.
func (d *DataSource) Clone() *DataSource {
	if d == nil {
		return nil
	}
	out := *d
	if d.Config != nil {
		out.Config = make(map[string]any, len(d.Config))
		for k, v := range d.Config {
			out.Config[k] = v
		}
	}
	return &out
}
