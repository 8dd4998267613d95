// Package book implements the order-book state store: per-side price-level
// containers for one instrument, mutated in place by delta application and
// rendered into ordered snapshots with derived pricing metrics.
//
// A Book is single-task state. Initialize, Apply and Snapshot on the same
// instance require external serialization; the designed usage is one Book
// per replay task.
package book
