// Package sqlite provides SQLite-backed implementations of the driven
// storage ports. A single database file holds documents with their
// recipients plus scheduler state; schema changes ship as embedded
// migrations.
package sqlite
