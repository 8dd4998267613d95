// Package replay drives order-book reconstruction: checkpoint load followed
// by delta replay in ascending sequence order, producing rendered snapshots
// in one of three modes.
//
// Modes:
//   - ReconstructAll with EmitAll: one snapshot per replay step (1 + deltas)
//   - Iterate: the same sequence, produced lazily through a forward-only
//     cursor; the consumer may stop early
//   - ReconstructFinal: apply everything, render once
//
// Gap detection is a separate diagnostic (DetectGaps) and never blocks or
// alters replay.
package replay
