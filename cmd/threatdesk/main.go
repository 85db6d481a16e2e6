// Package main provides the entry point for the ThreatDesk CLI.
//
// ThreatDesk is a security dashboard core that ingests log exports,
// runs heuristic analysis over the normalized records, and compiles
// the findings into reports.
//
// Usage:
//
//	threatdesk analyze <file>...
//	threatdesk sources --seed
//
// See --help for all available options.
package main

// main is the entry point for ThreatDesk.
func main() {
	Execute()
}
