package replay

import (
	"github.com/0xArchiveIO/bookreplay/internal/book"
	"github.com/0xArchiveIO/bookreplay/internal/model"
)

// Iterate initializes a book from the checkpoint and returns a forward-only
// cursor over the replay: the first Next yields the pre-delta snapshot, each
// later Next applies one delta and yields the result, so a full walk
// produces the same 1 + len(deltas) snapshots as ReconstructAll with
// EmitAll. No snapshot is computed until requested and none is retained
// after consumption; the consumer stops early simply by not calling Next
// again. Options.EmitAll is ignored here.
//
// Checkpoint parse failures surface from Iterate itself, before any
// snapshot exists.
func Iterate(cp model.Checkpoint, deltas []model.Delta, opts Options) (*Cursor, error) {
	b := book.New()
	if err := b.Initialize(cp); err != nil {
		return nil, err
	}
	return &Cursor{
		book:   b,
		deltas: sortBySeq(deltas),
		depth:  opts.Depth,
	}, nil
}

// Cursor is a finite, forward-only snapshot sequence. It is not resumable
// after exhaustion; restart by calling Iterate again.
type Cursor struct {
	book   *book.Book
	deltas []model.Delta
	depth  int
	step   int // 0 = pre-delta snapshot not yet emitted
	err    error
	done   bool
}

// Next returns the next snapshot in replay order. ok is false once the
// sequence is exhausted or a delta failed to apply; check Err afterwards.
func (c *Cursor) Next() (snap model.Snapshot, ok bool) {
	if c.done {
		return model.Snapshot{}, false
	}

	if c.step == 0 {
		c.step++
		return c.book.Snapshot(c.depth), true
	}

	if c.step > len(c.deltas) {
		c.done = true
		return model.Snapshot{}, false
	}

	d := c.deltas[c.step-1]
	c.step++
	if err := c.book.Apply(d); err != nil {
		c.err = err
		c.done = true
		return model.Snapshot{}, false
	}
	return c.book.Snapshot(c.depth), true
}

// Err returns the first delta application error, if any. A fully consumed
// cursor with a nil Err completed the whole replay.
func (c *Cursor) Err() error {
	return c.err
}

// Remaining returns how many snapshots the cursor can still produce.
func (c *Cursor) Remaining() int {
	n := len(c.deltas) + 1 - c.step
	if c.done || n < 0 {
		return 0
	}
	return n
}
