package replay

import (
	"sort"

	"github.com/0xArchiveIO/bookreplay/internal/book"
	"github.com/0xArchiveIO/bookreplay/internal/model"
)

// Options configures snapshot rendering during reconstruction. Defaults are
// explicit at the call site: a zero Depth renders all levels, and
// DefaultOptions selects EmitAll.
type Options struct {
	// Depth limits levels per side per rendered snapshot. 0 means all.
	Depth int

	// EmitAll selects materialize-all over final-only for ReconstructAll.
	EmitAll bool
}

// DefaultOptions returns the standard batch configuration: full depth,
// every intermediate snapshot emitted.
func DefaultOptions() Options {
	return Options{Depth: 0, EmitAll: true}
}

// ReconstructAll replays deltas on top of a checkpoint and returns rendered
// snapshots. With EmitAll it emits the pre-delta state followed by one
// snapshot per applied delta (1 + len(deltas) in total); without it, only
// the final state. Deltas are applied in ascending sequence order regardless
// of input order; equal sequence numbers keep their input order.
func ReconstructAll(cp model.Checkpoint, deltas []model.Delta, opts Options) ([]model.Snapshot, error) {
	b := book.New()
	if err := b.Initialize(cp); err != nil {
		return nil, err
	}
	sorted := sortBySeq(deltas)

	if !opts.EmitAll {
		for _, d := range sorted {
			if err := b.Apply(d); err != nil {
				return nil, err
			}
		}
		return []model.Snapshot{b.Snapshot(opts.Depth)}, nil
	}

	out := make([]model.Snapshot, 0, len(sorted)+1)
	out = append(out, b.Snapshot(opts.Depth))
	for _, d := range sorted {
		if err := b.Apply(d); err != nil {
			return nil, err
		}
		out = append(out, b.Snapshot(opts.Depth))
	}
	return out, nil
}

// ReconstructFinal replays all deltas without rendering intermediates and
// returns the final snapshot only. The result matches the last element
// ReconstructAll would produce for the same inputs.
func ReconstructFinal(cp model.Checkpoint, deltas []model.Delta, depth int) (model.Snapshot, error) {
	snaps, err := ReconstructAll(cp, deltas, Options{Depth: depth, EmitAll: false})
	if err != nil {
		return model.Snapshot{}, err
	}
	return snaps[0], nil
}

// sortBySeq returns a copy of deltas sorted ascending by sequence number.
// The sort is stable: deltas sharing a sequence number keep their relative
// input order, which is the documented tie rule.
func sortBySeq(deltas []model.Delta) []model.Delta {
	sorted := make([]model.Delta, len(deltas))
	copy(sorted, deltas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}
