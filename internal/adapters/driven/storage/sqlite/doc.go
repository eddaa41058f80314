// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements several interfaces through a single database connection:
//
//   - VectorStore: chunk embeddings with an exact cosine scan
//   - ResourceVectorIndex: document ID to ordered vector item IDs
//   - ResourceCatalogue: the locally registered resources
//   - MaintenanceLog: reconcile schedule and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.learnbox/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on the locking provided
// by SQLite in WAL mode.
package sqlite
