// Package model defines shared data types for the book replay engine.
//
// Conventions:
//   - Prices and sizes: decimal.Decimal, exact arithmetic, rendered back as
//     decimal strings on output
//   - Timestamps: int64 microseconds since Unix epoch
//   - Sequence numbers: int64, assigned upstream, monotonic per instrument
package model
