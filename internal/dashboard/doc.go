// Package dashboard wires the ingestion, registry, analysis, and report
// components into one session-scoped facade.
//
// A Dashboard owns an in-memory artifact store and one instance of each
// component. The components share a logger but keep their own event
// emitters; observers subscribe through the component accessors. On top of
// the component surfaces the facade adds the cross-component operations the
// CLI needs: concurrent multi-file ingestion with a per-file size limit,
// seed-source registration from the configuration file, and the
// analyze/report flow over the registry's combined record set.
package dashboard
