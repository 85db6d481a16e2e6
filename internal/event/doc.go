// Package event provides the process-local publish/subscribe hub that the
// registry, analysis engine, and report compiler use to announce lifecycle
// events. Event names are defined by the emitting packages.
package event
