package writer

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xArchiveIO/bookreplay/internal/model"
)

// Config holds batch writer settings.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

// Metrics counts writer activity since start.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// snapshotRow is the database form of a reconstructed snapshot.
type snapshotRow struct {
	Instrument string
	TS         int64
	LastSeq    int64
	Bids       []byte // JSONB level array
	Asks       []byte
	MidPrice   *string // NULL when a side was empty
	Spread     *string
	SpreadBps  *string
	ReplayedAt int64
}

// transformSnapshot converts a model.Snapshot to its row form.
func transformSnapshot(s model.Snapshot) snapshotRow {
	return snapshotRow{
		Instrument: s.Instrument,
		TS:         s.TS,
		LastSeq:    s.LastSeq,
		Bids:       levelsToJSONB(s.Bids),
		Asks:       levelsToJSONB(s.Asks),
		MidPrice:   decimalText(s.MidPrice),
		Spread:     decimalText(s.Spread),
		SpreadBps:  decimalText(s.SpreadBps),
		ReplayedAt: model.NowMicro(),
	}
}

// levelsToJSONB marshals rendered levels for a JSONB column. Prices and
// sizes keep their decimal-string form.
func levelsToJSONB(levels []model.Level) []byte {
	if levels == nil {
		levels = []model.Level{}
	}
	data, _ := json.Marshal(levels)
	return data
}

// decimalText renders an optional metric as text, nil staying NULL.
func decimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
