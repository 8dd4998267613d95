package replay

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/0xArchiveIO/bookreplay/internal/book"
	"github.com/0xArchiveIO/bookreplay/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cpLevel(price, size string, orderCount int) model.CheckpointLevel {
	return model.CheckpointLevel{
		Price:      model.RawNumber(price),
		Size:       model.RawNumber(size),
		OrderCount: orderCount,
	}
}

func bidDelta(price, size string, seq int64) model.Delta {
	return model.Delta{
		Side:  model.SideBid,
		Price: dec(price),
		Size:  dec(size),
		Seq:   seq,
		TS:    seq * 1000,
	}
}

func testCheckpoint() model.Checkpoint {
	return model.Checkpoint{
		Instrument: "ETH-USD",
		TS:         1700000000000000,
		Bids: []model.CheckpointLevel{
			cpLevel("100", "2", 1),
			cpLevel("99", "4", 2),
		},
		Asks: []model.CheckpointLevel{
			cpLevel("101", "3", 1),
			cpLevel("102", "5", 1),
		},
	}
}

func TestReconstructAll_EmitAll(t *testing.T) {
	deltas := []model.Delta{
		bidDelta("100", "0", 1),
		bidDelta("98", "7", 2),
	}

	snaps, err := ReconstructAll(testCheckpoint(), deltas, DefaultOptions())
	if err != nil {
		t.Fatalf("ReconstructAll failed: %v", err)
	}

	// Pre-delta snapshot plus one per delta.
	if len(snaps) != 3 {
		t.Fatalf("len(snaps) = %d, want 3", len(snaps))
	}
	if snaps[0].LastSeq != 0 {
		t.Errorf("snaps[0].LastSeq = %d, want 0", snaps[0].LastSeq)
	}
	if len(snaps[0].Bids) != 2 {
		t.Errorf("snaps[0] bids = %d, want 2", len(snaps[0].Bids))
	}
	if len(snaps[1].Bids) != 1 {
		t.Errorf("snaps[1] bids = %d, want 1 after removal", len(snaps[1].Bids))
	}
	if len(snaps[2].Bids) != 2 {
		t.Errorf("snaps[2] bids = %d, want 2 after insert", len(snaps[2].Bids))
	}
	if snaps[2].LastSeq != 2 {
		t.Errorf("snaps[2].LastSeq = %d, want 2", snaps[2].LastSeq)
	}
}

func TestReconstructAll_AppliesInSequenceOrder(t *testing.T) {
	// Out of order input: seq 2 overwrites, then seq 1 removal. In sequence
	// order the removal happens first, so the level must survive with the
	// seq-2 size.
	deltas := []model.Delta{
		bidDelta("100", "5", 2),
		bidDelta("100", "0", 1),
	}

	snap, err := ReconstructFinal(testCheckpoint(), deltas, 0)
	if err != nil {
		t.Fatalf("ReconstructFinal failed: %v", err)
	}
	if len(snap.Bids) != 2 {
		t.Fatalf("bids = %d, want 2", len(snap.Bids))
	}
	if !snap.Bids[0].Size.Equal(dec("5")) {
		t.Errorf("best bid size = %s, want 5 (seq order, not input order)", snap.Bids[0].Size)
	}
}

func TestReconstructAll_TieBreakKeepsInputOrder(t *testing.T) {
	// Equal sequence numbers: stable sort keeps input order, so the later
	// input wins.
	deltas := []model.Delta{
		bidDelta("100", "5", 1),
		bidDelta("100", "9", 1),
	}

	snap, err := ReconstructFinal(testCheckpoint(), deltas, 0)
	if err != nil {
		t.Fatalf("ReconstructFinal failed: %v", err)
	}
	if !snap.Bids[0].Size.Equal(dec("9")) {
		t.Errorf("best bid size = %s, want 9 (input order on ties)", snap.Bids[0].Size)
	}
}

func TestReconstructFinal_MatchesLastOfEmitAll(t *testing.T) {
	deltas := []model.Delta{
		bidDelta("100", "0", 1),
		bidDelta("98", "7", 2),
		bidDelta("97.5", "1", 3),
	}

	all, err := ReconstructAll(testCheckpoint(), deltas, Options{Depth: 2, EmitAll: true})
	if err != nil {
		t.Fatalf("ReconstructAll failed: %v", err)
	}
	final, err := ReconstructFinal(testCheckpoint(), deltas, 2)
	if err != nil {
		t.Fatalf("ReconstructFinal failed: %v", err)
	}

	last := all[len(all)-1]
	assertSnapshotsEqual(t, final, last)
}

func TestReconstructAll_FinalOnly(t *testing.T) {
	deltas := []model.Delta{bidDelta("98", "7", 1)}

	snaps, err := ReconstructAll(testCheckpoint(), deltas, Options{EmitAll: false})
	if err != nil {
		t.Fatalf("ReconstructAll failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("len(snaps) = %d, want 1 in final-only mode", len(snaps))
	}
	if snaps[0].LastSeq != 1 {
		t.Errorf("LastSeq = %d, want 1", snaps[0].LastSeq)
	}
}

func TestReconstructAll_NoDeltas(t *testing.T) {
	snaps, err := ReconstructAll(testCheckpoint(), nil, DefaultOptions())
	if err != nil {
		t.Fatalf("ReconstructAll failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("len(snaps) = %d, want 1", len(snaps))
	}
}

func TestReconstructAll_ParseErrorPropagates(t *testing.T) {
	cp := model.Checkpoint{
		Bids: []model.CheckpointLevel{cpLevel("oops", "1", 1)},
	}
	_, err := ReconstructAll(cp, nil, DefaultOptions())
	var pe *book.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *book.ParseError", err)
	}
}

func TestIterate_FullWalkMatchesEmitAll(t *testing.T) {
	deltas := []model.Delta{
		bidDelta("100", "0", 1),
		bidDelta("98", "7", 2),
	}

	all, err := ReconstructAll(testCheckpoint(), deltas, DefaultOptions())
	if err != nil {
		t.Fatalf("ReconstructAll failed: %v", err)
	}

	cur, err := Iterate(testCheckpoint(), deltas, Options{})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}

	var walked []model.Snapshot
	for {
		snap, ok := cur.Next()
		if !ok {
			break
		}
		walked = append(walked, snap)
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}

	if len(walked) != len(all) {
		t.Fatalf("cursor produced %d snapshots, want %d", len(walked), len(all))
	}
	for i := range walked {
		assertSnapshotsEqual(t, walked[i], all[i])
	}
}

func TestIterate_EarlyTermination(t *testing.T) {
	deltas := []model.Delta{
		bidDelta("98", "1", 1),
		bidDelta("97", "1", 2),
		bidDelta("96", "1", 3),
	}

	cur, err := Iterate(testCheckpoint(), deltas, Options{})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}

	if cur.Remaining() != 4 {
		t.Errorf("Remaining = %d, want 4", cur.Remaining())
	}

	// Consume two and stop; the rest is never computed.
	for i := 0; i < 2; i++ {
		if _, ok := cur.Next(); !ok {
			t.Fatalf("Next %d returned ok=false", i)
		}
	}
	if cur.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", cur.Remaining())
	}
}

func TestIterate_ExhaustedStaysExhausted(t *testing.T) {
	cur, err := Iterate(testCheckpoint(), nil, Options{})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	if _, ok := cur.Next(); !ok {
		t.Fatal("first Next returned ok=false, want pre-delta snapshot")
	}
	for i := 0; i < 3; i++ {
		if _, ok := cur.Next(); ok {
			t.Fatal("Next returned ok=true after exhaustion")
		}
	}
	if cur.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", cur.Remaining())
	}
}

func TestIterate_ParseErrorBeforeFirstSnapshot(t *testing.T) {
	cp := model.Checkpoint{
		Asks: []model.CheckpointLevel{cpLevel("101", "bad", 1)},
	}
	if _, err := Iterate(cp, nil, Options{}); err == nil {
		t.Fatal("Iterate succeeded, want checkpoint parse error")
	}
}

func TestDetectGaps(t *testing.T) {
	tests := []struct {
		name string
		seqs []int64
		want []model.Gap
	}{
		{name: "contiguous", seqs: []int64{1, 2, 3, 4}, want: nil},
		{name: "single gap", seqs: []int64{1, 3, 4}, want: []model.Gap{{Expected: 2, Actual: 3}}},
		{name: "single delta", seqs: []int64{7}, want: nil},
		{name: "empty", seqs: nil, want: nil},
		{
			name: "unsorted input",
			seqs: []int64{4, 1, 3},
			want: []model.Gap{{Expected: 2, Actual: 3}},
		},
		{
			name: "multiple gaps",
			seqs: []int64{1, 4, 8},
			want: []model.Gap{{Expected: 2, Actual: 4}, {Expected: 5, Actual: 8}},
		},
		{
			name: "duplicate sequence",
			seqs: []int64{1, 1, 2},
			want: []model.Gap{{Expected: 2, Actual: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas := make([]model.Delta, len(tt.seqs))
			for i, seq := range tt.seqs {
				deltas[i] = bidDelta("100", "1", seq)
			}
			got := DetectGaps(deltas)
			if len(got) != len(tt.want) {
				t.Fatalf("DetectGaps = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("gap[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectGaps_DoesNotMutateInput(t *testing.T) {
	deltas := []model.Delta{
		bidDelta("100", "1", 3),
		bidDelta("100", "1", 1),
	}
	DetectGaps(deltas)
	if deltas[0].Seq != 3 {
		t.Error("DetectGaps reordered the caller's slice")
	}
}

func assertSnapshotsEqual(t *testing.T, got, want model.Snapshot) {
	t.Helper()

	if got.Instrument != want.Instrument || got.LastSeq != want.LastSeq || got.TS != want.TS {
		t.Errorf("snapshot header = (%s %d %d), want (%s %d %d)",
			got.Instrument, got.LastSeq, got.TS, want.Instrument, want.LastSeq, want.TS)
	}
	if len(got.Bids) != len(want.Bids) || len(got.Asks) != len(want.Asks) {
		t.Fatalf("snapshot shape = (%d bids, %d asks), want (%d, %d)",
			len(got.Bids), len(got.Asks), len(want.Bids), len(want.Asks))
	}
	for i := range got.Bids {
		if !got.Bids[i].Price.Equal(want.Bids[i].Price) || !got.Bids[i].Size.Equal(want.Bids[i].Size) {
			t.Errorf("bid[%d] = %v, want %v", i, got.Bids[i], want.Bids[i])
		}
	}
	for i := range got.Asks {
		if !got.Asks[i].Price.Equal(want.Asks[i].Price) || !got.Asks[i].Size.Equal(want.Asks[i].Size) {
			t.Errorf("ask[%d] = %v, want %v", i, got.Asks[i], want.Asks[i])
		}
	}
	if !optionalEqual(got.MidPrice, want.MidPrice) {
		t.Errorf("MidPrice = %v, want %v", got.MidPrice, want.MidPrice)
	}
	if !optionalEqual(got.Spread, want.Spread) {
		t.Errorf("Spread = %v, want %v", got.Spread, want.Spread)
	}
	if !optionalEqual(got.SpreadBps, want.SpreadBps) {
		t.Errorf("SpreadBps = %v, want %v", got.SpreadBps, want.SpreadBps)
	}
}

func optionalEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
