// Package config provides configuration structures and utilities for ThreatDesk.
// It defines the main options for ingestion, analysis timing, and report
// generation, plus the .threatdesk file with data sources seeded at startup.
package config
