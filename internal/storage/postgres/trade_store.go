package postgres

import (
	"context"
	"fmt"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.ExecutedTrade) error {
	query := `
		INSERT INTO executed_trades (
			trade_id, action_ref, asset, quantity, entry_price, entry_ts,
			status, exit_price, exit_ts, profit_and_loss, performance_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.ActionRef, t.Asset, t.Quantity, t.EntryPrice, t.EntryTimestamp,
		string(t.Status), t.ExitPrice, t.ExitTimestamp, t.ProfitAndLoss, t.PerformanceScore,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.ExecutedTrade, error) {
	query := `
		SELECT trade_id, action_ref, asset, quantity, entry_price, entry_ts,
		       status, exit_price, exit_ts, profit_and_loss, performance_score
		FROM executed_trades
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetAll retrieves all trades ordered by entry timestamp DESC.
func (s *TradeStore) GetAll(ctx context.Context) ([]*domain.ExecutedTrade, error) {
	query := `
		SELECT trade_id, action_ref, asset, quantity, entry_price, entry_ts,
		       status, exit_price, exit_ts, profit_and_loss, performance_score
		FROM executed_trades
		ORDER BY entry_ts DESC, trade_id DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all trades: %w", err)
	}
	defer rows.Close()

	var result []*domain.ExecutedTrade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Close sets the exit fields and P&L atomically, only from OPEN.
// The status guard inside the UPDATE makes the first closer win.
func (s *TradeStore) Close(ctx context.Context, tradeID string, c *domain.TradeClose) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE executed_trades
		SET status = $1, exit_price = $2, exit_ts = $3, profit_and_loss = $4
		WHERE trade_id = $5 AND status = $6
	`,
		string(domain.TradeStatusClosed), c.ExitPrice, c.ExitTimestamp, c.ProfitAndLoss,
		tradeID, string(domain.TradeStatusOpen),
	)
	if err != nil {
		return fmt.Errorf("close trade: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM executed_trades WHERE trade_id = $1)`, tradeID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check trade exists: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}

// SetScore writes the performance score onto a trade.
func (s *TradeStore) SetScore(ctx context.Context, tradeID string, score int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE executed_trades SET performance_score = $1 WHERE trade_id = $2`,
		score, tradeID,
	)
	if err != nil {
		return fmt.Errorf("set trade score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTrade(row rowScanner) (*domain.ExecutedTrade, error) {
	var t domain.ExecutedTrade
	var status string
	err := row.Scan(
		&t.TradeID, &t.ActionRef, &t.Asset, &t.Quantity, &t.EntryPrice, &t.EntryTimestamp,
		&status, &t.ExitPrice, &t.ExitTimestamp, &t.ProfitAndLoss, &t.PerformanceScore,
	)
	if err != nil {
		return nil, err
	}
	t.Status = domain.TradeStatus(status)
	return &t, nil
}
