package model

import "github.com/shopspring/decimal"

// Side identifies one side of the order book.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// -----------------------------------------------------------------------------
// Wire Types (as delivered by the recorded-data store)
// -----------------------------------------------------------------------------

// CheckpointLevel is one resting price level in wire form. Price and size are
// kept unparsed because upstream recorders emit them either as JSON strings
// or bare numbers; Book.Initialize owns the parse.
type CheckpointLevel struct {
	Price      RawNumber `json:"price"`
	Size       RawNumber `json:"size"`
	OrderCount int       `json:"orderCount"`
}

// Checkpoint is a full point-in-time book state used as replay base.
// Levels carry no ordering guarantee on input.
type Checkpoint struct {
	Instrument string            `json:"instrument"`
	TS         int64             `json:"timestamp"` // µs since epoch
	Bids       []CheckpointLevel `json:"bids"`
	Asks       []CheckpointLevel `json:"asks"`
}

// Delta is one incremental change to a price level. Size zero means the
// level is gone.
type Delta struct {
	Side  Side            `json:"side"`
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
	Seq   int64           `json:"sequence"`
	TS    int64           `json:"timestamp"` // µs since epoch
}

// -----------------------------------------------------------------------------
// Rendered Types
// -----------------------------------------------------------------------------

// Level is one aggregated price level in a rendered snapshot.
type Level struct {
	Price      decimal.Decimal `json:"price"`
	Size       decimal.Decimal `json:"size"`
	OrderCount int             `json:"orderCount"`
}

// Snapshot is a fully rendered book state at one point in replay.
// Bids are strictly descending by price, asks strictly ascending. The
// derived metrics are present only when both sides are non-empty; Spread is
// negative when the book is crossed.
type Snapshot struct {
	Instrument string           `json:"instrument"`
	TS         int64            `json:"timestamp"` // µs since epoch
	Bids       []Level          `json:"bids"`
	Asks       []Level          `json:"asks"`
	MidPrice   *decimal.Decimal `json:"midPrice,omitempty"`
	Spread     *decimal.Decimal `json:"spread,omitempty"`
	SpreadBps  *decimal.Decimal `json:"spreadBps,omitempty"`
	LastSeq    int64            `json:"lastSequence"`
}

// Gap reports one sequence discontinuity between adjacent deltas.
type Gap struct {
	Expected int64 `json:"expectedSequence"`
	Actual   int64 `json:"actualSequence"`
}
