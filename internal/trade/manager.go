// Package trade tracks executed trades from entry to exit and fixes
// their realized profit and loss at close time.
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// ErrInvalidTransition is returned when closing a trade that is
// already closed.
var ErrInvalidTransition = errors.New("invalid trade status transition")

// Manager owns the trade lifecycle. A trade opens with its entry
// fixed, closes exactly once, and its profit and loss is computed at
// close from (exit - entry) * quantity.
type Manager struct {
	trades storage.TradeStore
	now    func() time.Time
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	TradeStore storage.TradeStore

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewManager creates a new trade lifecycle manager.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		trades: opts.TradeStore,
		now:    opts.Now,
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// OpenParams describes a trade entry.
type OpenParams struct {
	// ActionRef links the trade to the action that triggered it, such
	// as a winning bid.
	ActionRef  string
	Asset      string
	Quantity   float64
	EntryPrice float64
}

// Open records a new OPEN trade with its entry fixed at the current
// time.
func (m *Manager) Open(ctx context.Context, params OpenParams) (*domain.ExecutedTrade, error) {
	if params.Asset == "" {
		return nil, fmt.Errorf("%w: asset is required", storage.ErrInvalidInput)
	}
	if params.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", storage.ErrInvalidInput)
	}
	if params.EntryPrice <= 0 {
		return nil, fmt.Errorf("%w: entry price must be positive", storage.ErrInvalidInput)
	}

	t := &domain.ExecutedTrade{
		TradeID:        uuid.NewString(),
		ActionRef:      params.ActionRef,
		Asset:          params.Asset,
		Quantity:       params.Quantity,
		EntryPrice:     params.EntryPrice,
		EntryTimestamp: m.now().UTC(),
		Status:         domain.TradeStatusOpen,
	}

	if err := m.trades.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert trade: %w", err)
	}
	return t, nil
}

// Get returns a single trade.
func (m *Manager) Get(ctx context.Context, tradeID string) (*domain.ExecutedTrade, error) {
	return m.trades.GetByID(ctx, tradeID)
}

// List returns all trades, newest entry first.
func (m *Manager) List(ctx context.Context) ([]*domain.ExecutedTrade, error) {
	return m.trades.GetAll(ctx)
}

// Close fixes the trade's exit and realized profit and loss. The
// storage layer guards the OPEN -> CLOSED transition, so when two
// closes race exactly one records an exit.
func (m *Manager) Close(ctx context.Context, tradeID string, exitPrice float64) (*domain.ExecutedTrade, error) {
	if exitPrice <= 0 {
		return nil, fmt.Errorf("%w: exit price must be positive", storage.ErrInvalidInput)
	}

	t, err := m.trades.GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TradeStatusOpen {
		return nil, fmt.Errorf("%w: trade %s is %s", ErrInvalidTransition, tradeID, t.Status)
	}

	close := &domain.TradeClose{
		ExitPrice:     exitPrice,
		ExitTimestamp: m.now().UTC(),
		ProfitAndLoss: (exitPrice - t.EntryPrice) * t.Quantity,
	}

	if err := m.trades.Close(ctx, tradeID, close); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("%w: trade %s already closed", ErrInvalidTransition, tradeID)
		}
		return nil, err
	}

	return m.trades.GetByID(ctx, tradeID)
}
