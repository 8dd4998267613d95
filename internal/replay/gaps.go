package replay

import "github.com/0xArchiveIO/bookreplay/internal/model"

// DetectGaps reports sequence discontinuities in a delta set. Deltas are
// sorted by sequence first; every adjacent pair whose actual sequence
// differs from previous+1 yields one Gap. Fewer than two deltas, or a
// perfectly contiguous sequence, yields nothing.
//
// Purely diagnostic: replay neither consults nor blocks on the result.
func DetectGaps(deltas []model.Delta) []model.Gap {
	if len(deltas) < 2 {
		return nil
	}

	sorted := sortBySeq(deltas)
	var gaps []model.Gap
	for i := 1; i < len(sorted); i++ {
		expected := sorted[i-1].Seq + 1
		if actual := sorted[i].Seq; actual != expected {
			gaps = append(gaps, model.Gap{Expected: expected, Actual: actual})
		}
	}
	return gaps
}
