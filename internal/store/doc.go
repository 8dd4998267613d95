// Package store reads recorded order-book data from TimescaleDB.
//
// Tables:
//   - book_checkpoints: full book state per instrument (bids/asks as JSONB)
//   - book_deltas: per-level changes with upstream sequence numbers
//   - book_snapshots: reconstructed output, written by the writer package
//
// The store hands out structurally valid checkpoints and delta lists; level
// parsing and all replay semantics live downstream in book and replay.
package store
