// Package registry owns the set of registered data sources and their
// normalized record sets. It registers file uploads through the ingest
// normalizer, populates synthetic demo records for active sources in the
// background, and exposes the flattened record view the analysis engine
// consumes.
package registry
