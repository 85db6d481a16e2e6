// Package model defines the data types shared across the dashboard core:
// dynamic record values, data sources, analysis findings, and compiled
// reports. It has no dependencies on other internal packages.
package model
