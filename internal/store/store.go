package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/0xArchiveIO/bookreplay/internal/model"
)

// ErrNoCheckpoint is returned when an instrument has no recorded checkpoint.
var ErrNoCheckpoint = errors.New("store: no checkpoint for instrument")

// Store reads recorded checkpoints and deltas.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store backed by the given pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// ListInstruments returns every instrument with at least one recorded
// checkpoint.
func (s *Store) ListInstruments(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT instrument FROM book_checkpoints ORDER BY instrument
	`)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []string
	for rows.Next() {
		var instrument string
		if err := rows.Scan(&instrument); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		instruments = append(instruments, instrument)
	}
	return instruments, rows.Err()
}

// LatestCheckpoint returns the most recent checkpoint for an instrument.
func (s *Store) LatestCheckpoint(ctx context.Context, instrument string) (model.Checkpoint, error) {
	var (
		cp         model.Checkpoint
		bids, asks []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT instrument, ts, bids, asks
		FROM book_checkpoints
		WHERE instrument = $1
		ORDER BY ts DESC
		LIMIT 1
	`, instrument).Scan(&cp.Instrument, &cp.TS, &bids, &asks)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Checkpoint{}, fmt.Errorf("%w: %s", ErrNoCheckpoint, instrument)
	}
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("query checkpoint: %w", err)
	}

	if err := json.Unmarshal(bids, &cp.Bids); err != nil {
		return model.Checkpoint{}, fmt.Errorf("decode checkpoint bids: %w", err)
	}
	if err := json.Unmarshal(asks, &cp.Asks); err != nil {
		return model.Checkpoint{}, fmt.Errorf("decode checkpoint asks: %w", err)
	}
	return cp, nil
}

// DeltasSince returns an instrument's deltas recorded at or after sinceTS,
// ordered by sequence. Order here is a courtesy; replay re-sorts anyway.
func (s *Store) DeltasSince(ctx context.Context, instrument string, sinceTS int64) ([]model.Delta, error) {
	rows, err := s.db.Query(ctx, `
		SELECT side, price::text, size::text, seq, ts
		FROM book_deltas
		WHERE instrument = $1 AND ts >= $2
		ORDER BY seq
	`, instrument, sinceTS)
	if err != nil {
		return nil, fmt.Errorf("query deltas: %w", err)
	}
	defer rows.Close()

	var deltas []model.Delta
	for rows.Next() {
		var (
			d                 model.Delta
			side, price, size string
		)
		if err := rows.Scan(&side, &price, &size, &d.Seq, &d.TS); err != nil {
			return nil, fmt.Errorf("scan delta: %w", err)
		}
		d.Side = model.Side(side)
		if d.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("decode delta price %q: %w", price, err)
		}
		if d.Size, err = decimal.NewFromString(size); err != nil {
			return nil, fmt.Errorf("decode delta size %q: %w", size, err)
		}
		deltas = append(deltas, d)
	}
	return deltas, rows.Err()
}
