package book

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"github.com/0xArchiveIO/bookreplay/internal/model"
)

// level is the internal form of one resting price level. Levels are owned
// exclusively by the Book and never aliased outside it.
type level struct {
	price      decimal.Decimal
	size       decimal.Decimal
	orderCount int
}

// levelLess orders levels ascending by price. It is the only comparison the
// side trees use, so a level carrying just a price is a valid lookup key.
func levelLess(a, b level) bool {
	return a.price.LessThan(b.price)
}

// Book holds reconstructed order-book state for one instrument. Each side is
// an order-preserving tree keyed by price, so each price occurs at most once
// per side and snapshot rendering is a bounded in-order scan.
type Book struct {
	instrument string
	lastTS     int64 // µs since epoch of the last applied checkpoint/delta
	lastSeq    int64
	bids       *btree.BTreeG[level]
	asks       *btree.BTreeG[level]
	ready      bool
}

// New returns an empty Book. It is unusable until Initialize succeeds.
func New() *Book {
	return &Book{
		bids: btree.NewBTreeG(levelLess),
		asks: btree.NewBTreeG(levelLess),
	}
}

// Initialize loads a checkpoint as the replay base state, discarding any
// previous state. The last-applied sequence resets to 0 (checkpoints carry
// no sequence number). All-or-nothing: if any level's price or size fails to
// parse, the book is left empty and not ready, and a *ParseError is
// returned.
func (b *Book) Initialize(cp model.Checkpoint) error {
	bids, err := parseLevels(model.SideBid, cp.Bids)
	if err != nil {
		b.reset()
		return err
	}
	asks, err := parseLevels(model.SideAsk, cp.Asks)
	if err != nil {
		b.reset()
		return err
	}

	b.reset()
	b.instrument = cp.Instrument
	b.lastTS = cp.TS
	for _, lv := range bids {
		b.bids.Set(lv)
	}
	for _, lv := range asks {
		b.asks.Set(lv)
	}
	b.ready = true
	return nil
}

// Apply mutates one price level according to a delta. Size zero removes the
// level (absence is not an error); a positive size inserts or overwrites the
// level with an order count of 1 — deltas carry no true order count, so 1 is
// a deliberate approximation and never authoritative. The last-applied
// timestamp and sequence are updated unconditionally, even when the sequence
// does not advance.
func (b *Book) Apply(d model.Delta) error {
	if !b.ready {
		return ErrNotInitialized
	}

	var side *btree.BTreeG[level]
	switch d.Side {
	case model.SideBid:
		side = b.bids
	case model.SideAsk:
		side = b.asks
	default:
		return fmt.Errorf("book: unknown side %q", d.Side)
	}

	if d.Size.IsZero() {
		side.Delete(level{price: d.Price})
	} else {
		side.Set(level{price: d.Price, size: d.Size, orderCount: 1})
	}

	b.lastTS = d.TS
	b.lastSeq = d.Seq
	return nil
}

// Snapshot renders the current state: bids strictly descending by price,
// asks strictly ascending. A positive depth keeps only the best depth levels
// per side. Derived metrics are present only when both sides are non-empty;
// spread goes negative on a crossed book and is surfaced as computed.
func (b *Book) Snapshot(depth int) model.Snapshot {
	snap := model.Snapshot{
		Instrument: b.instrument,
		TS:         b.lastTS,
		LastSeq:    b.lastSeq,
		Bids:       make([]model.Level, 0, sideCap(b.bids.Len(), depth)),
		Asks:       make([]model.Level, 0, sideCap(b.asks.Len(), depth)),
	}

	b.bids.Reverse(func(lv level) bool {
		if depth > 0 && len(snap.Bids) >= depth {
			return false
		}
		snap.Bids = append(snap.Bids, renderLevel(lv))
		return true
	})
	b.asks.Scan(func(lv level) bool {
		if depth > 0 && len(snap.Asks) >= depth {
			return false
		}
		snap.Asks = append(snap.Asks, renderLevel(lv))
		return true
	})

	if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
		bestBid := snap.Bids[0].Price
		bestAsk := snap.Asks[0].Price

		mid := bestBid.Add(bestAsk).Div(decimal.NewFromInt(2))
		spread := bestAsk.Sub(bestBid)
		snap.MidPrice = &mid
		snap.Spread = &spread

		if !mid.IsZero() {
			bps := spread.Div(mid).Mul(decimal.NewFromInt(10000)).Round(2)
			snap.SpreadBps = &bps
		}
	}

	return snap
}

// LastSeq returns the sequence number of the last applied delta, 0 right
// after Initialize.
func (b *Book) LastSeq() int64 {
	return b.lastSeq
}

// Depth returns resident level counts for the bid and ask sides.
func (b *Book) Depth() (bids, asks int) {
	return b.bids.Len(), b.asks.Len()
}

// reset clears both sides and makes the book unusable until the next
// successful Initialize.
func (b *Book) reset() {
	b.instrument = ""
	b.lastTS = 0
	b.lastSeq = 0
	b.bids = btree.NewBTreeG(levelLess)
	b.asks = btree.NewBTreeG(levelLess)
	b.ready = false
}

// parseLevels converts wire checkpoint levels to internal form. Zero-size
// levels are skipped so that a zero size is never resident. A duplicate
// price within one side keeps the last occurrence.
func parseLevels(side model.Side, in []model.CheckpointLevel) ([]level, error) {
	out := make([]level, 0, len(in))
	for i, cl := range in {
		price, err := decimal.NewFromString(string(cl.Price))
		if err != nil {
			return nil, &ParseError{Side: side, Index: i, Field: "price", Value: string(cl.Price), Err: err}
		}
		size, err := decimal.NewFromString(string(cl.Size))
		if err != nil {
			return nil, &ParseError{Side: side, Index: i, Field: "size", Value: string(cl.Size), Err: err}
		}
		if size.IsZero() {
			continue
		}
		out = append(out, level{price: price, size: size, orderCount: cl.OrderCount})
	}
	return out, nil
}

func renderLevel(lv level) model.Level {
	return model.Level{Price: lv.price, Size: lv.size, OrderCount: lv.orderCount}
}

func sideCap(n, depth int) int {
	if depth > 0 && depth < n {
		return depth
	}
	return n
}
