// Package sqlite stores the course catalog, content chunks and chat sessions
// in one database file, ~/.coursemate/data/catalog.db by default.
//
// It runs on modernc.org/sqlite, so the binary needs no cgo. The schema comes
// from the embedded migrations/ directory, applied in version order and
// recorded in schema_migrations. Connections use WAL mode.
package sqlite
