package clickhouse

import (
	"context"
	"fmt"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// price_history is append-only; the feed may deliver the same tick twice
// and the MergeTree table tolerates that, so no duplicate checks here.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple price ticks in one batch.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (asset, price, timestamp_ms, source)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tick := range ticks {
		if tick == nil || tick.Asset == "" {
			return storage.ErrInvalidInput
		}
		if err := batch.Append(tick.Asset, tick.Price, uint64(tick.TimestampMs), tick.Source); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// AveragePrice returns the mean price of an asset over [startMs, endMs].
func (s *PriceHistoryStore) AveragePrice(ctx context.Context, asset string, startMs, endMs int64) (float64, error) {
	query := `
		SELECT avg(price), count()
		FROM price_history
		WHERE asset = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
	`

	var avg float64
	var count uint64
	row := s.conn.QueryRow(ctx, query, asset, uint64(startMs), uint64(endMs))
	if err := row.Scan(&avg, &count); err != nil {
		return 0, fmt.Errorf("average price: %w", err)
	}
	if count == 0 {
		return 0, storage.ErrNotFound
	}
	return avg, nil
}

// Latest returns the most recent tick for an asset.
func (s *PriceHistoryStore) Latest(ctx context.Context, asset string) (*domain.PriceTick, error) {
	query := `
		SELECT asset, price, timestamp_ms, source
		FROM price_history
		WHERE asset = ?
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, asset)
	if err != nil {
		return nil, fmt.Errorf("latest price: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, storage.ErrNotFound
	}

	var tick domain.PriceTick
	var ts uint64
	if err := rows.Scan(&tick.Asset, &tick.Price, &ts, &tick.Source); err != nil {
		return nil, fmt.Errorf("scan latest price: %w", err)
	}
	tick.TimestampMs = int64(ts)
	return &tick, nil
}
