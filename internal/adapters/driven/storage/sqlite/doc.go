// Package sqlite provides the SQLite-based run history store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.RunStore:
// one row per run in the runs table and one row per handled file in run_files.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory, applied in order on open.
//
// # Data Location
//
// By default, the database is stored at ~/.reshelve/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
