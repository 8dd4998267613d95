// Package writer implements the batch snapshot writer.
//
// The writer consumes reconstructed snapshots from the pipeline queue,
// batches them, and inserts into book_snapshots with append-only semantics
// (ON CONFLICT DO NOTHING, never update).
package writer
