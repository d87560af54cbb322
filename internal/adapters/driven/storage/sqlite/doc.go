// Package sqlite is the default chunk store, a single SQLite file at
// ~/.coursemate/data/chunks.db opened through the cgo-free modernc.org/sqlite
// driver.
//
// All courses share one chunks table and are told apart by metadata columns.
// The schema lives in the migrations package and is brought up to date when
// the store opens.
//
// Vectors are kept as little-endian float32 blobs. A search loads the rows
// that pass the metadata filter and ranks them by cosine similarity in Go.
//
// The database runs in WAL mode over one connection, so the store is safe for
// concurrent use and writes are serialised.
package sqlite
