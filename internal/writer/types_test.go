package writer

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/0xArchiveIO/bookreplay/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransformSnapshot(t *testing.T) {
	mid := dec("100.5")
	spread := dec("1")
	bps := dec("99.50")

	snap := model.Snapshot{
		Instrument: "BTC-USD",
		TS:         1700000000000000,
		LastSeq:    42,
		Bids: []model.Level{
			{Price: dec("100"), Size: dec("2"), OrderCount: 1},
		},
		Asks: []model.Level{
			{Price: dec("101"), Size: dec("3"), OrderCount: 1},
		},
		MidPrice:  &mid,
		Spread:    &spread,
		SpreadBps: &bps,
	}

	row := transformSnapshot(snap)

	if row.Instrument != "BTC-USD" || row.TS != snap.TS || row.LastSeq != 42 {
		t.Errorf("row header = (%s %d %d), want (BTC-USD %d 42)",
			row.Instrument, row.TS, row.LastSeq, snap.TS)
	}
	if row.MidPrice == nil || *row.MidPrice != "100.5" {
		t.Errorf("MidPrice = %v, want 100.5", row.MidPrice)
	}
	if row.SpreadBps == nil || *row.SpreadBps != "99.5" {
		t.Errorf("SpreadBps = %v, want 99.5", row.SpreadBps)
	}
	if row.ReplayedAt == 0 {
		t.Error("ReplayedAt = 0, want current time")
	}

	var bids []map[string]any
	if err := json.Unmarshal(row.Bids, &bids); err != nil {
		t.Fatalf("Bids JSONB invalid: %v", err)
	}
	if len(bids) != 1 {
		t.Fatalf("len(bids) = %d, want 1", len(bids))
	}
	if bids[0]["price"] != "100" {
		t.Errorf(`bids[0]["price"] = %v, want "100"`, bids[0]["price"])
	}
}

func TestTransformSnapshot_EmptySide(t *testing.T) {
	snap := model.Snapshot{
		Instrument: "BTC-USD",
		Asks: []model.Level{
			{Price: dec("101"), Size: dec("3"), OrderCount: 1},
		},
	}

	row := transformSnapshot(snap)

	if row.MidPrice != nil || row.Spread != nil || row.SpreadBps != nil {
		t.Errorf("metrics = (%v, %v, %v), want all NULL with an empty side",
			row.MidPrice, row.Spread, row.SpreadBps)
	}
	if string(row.Bids) != "[]" {
		t.Errorf("empty Bids JSONB = %s, want []", row.Bids)
	}
}
