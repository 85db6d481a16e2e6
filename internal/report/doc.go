// Package report compiles analysis findings into stored report documents.
//
// A Compiler builds a markdown narrative from one of four templates
// (executive summary, technical analysis, threat assessment, incident
// report), encodes it as HTML, JSON, or PDF, and stores the result in an
// artifact store. Every generated report is appended to an in-memory
// history and announced via events.
package report
