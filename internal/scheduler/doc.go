// Package scheduler runs periodic reconstruction jobs.
//
// Each cycle lists the instruments present in the recorded-data store and,
// with bounded concurrency, replays every instrument's latest checkpoint
// plus subsequent deltas, streaming the resulting snapshots to a handler
// (normally the pipeline queue feeding the writer).
package scheduler
