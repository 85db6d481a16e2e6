// Package analysis implements the heuristic analysis engine. The engine
// dispatches runs to one of four strategies (threat detection, pattern
// analysis, anomaly detection, correlation analysis), applies a severity
// post-filter, and retains the latest finding snapshot for the dashboard.
//
// # Strategies
//
// Threat detection is the only strategy that inspects record content; it
// applies a fixed rule set per record (denylisted source address, flagged
// keywords, unusual ports, malware type tags, and a random spot check).
// The remaining strategies return fixed demonstrative catalogs whose
// evidence is sliced from the input records.
//
// # Timing
//
// Every run waits an artificial uniform 1-3 second delay before computing,
// modeling asynchronous analysis work. Callers must treat RunAnalysis as a
// suspension point; the delay honors context cancellation.
package analysis
