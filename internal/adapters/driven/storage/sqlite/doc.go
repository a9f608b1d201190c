// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each index generation is written to its
// own database file, index.db, inside the directory handed out by the storage
// allocator. The database holds the manifest, the document text and every segment
// with its embedding encoded as a little-endian float32 blob.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Lifetime
//
// Build and Open read or write the whole database and close it before returning.
// Generations are searched from memory, so no file handle outlives the call and
// the directory can be deleted while an older generation is still being queried.
package sqlite
