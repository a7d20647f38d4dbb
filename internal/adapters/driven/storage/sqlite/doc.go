// Package sqlite provides SQLite-backed implementations of the storage
// ports. One database file holds documents, passages and vectors, so a
// corpus survives process restarts.
package sqlite
