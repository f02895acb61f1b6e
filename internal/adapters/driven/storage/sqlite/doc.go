// Package sqlite provides a SQLite-backed vector index store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// An index is one row in index_meta and one row per vector in index_vectors.
//
// # Data Location
//
// By default, the database is stored at ~/.docqa/data/docqa.db
//
// # Thread Safety
//
// Save replaces an index inside a single transaction and Load reads inside
// one, so a load never observes a partially written index.
package sqlite
