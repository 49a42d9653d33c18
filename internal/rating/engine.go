// Package rating scores closed trades on a 0-100 scale from four
// weighted components: realized profit and loss, holding duration,
// performance against the market, and risk.
package rating

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"trading-desk/internal/domain"
	"trading-desk/internal/storage"
)

// ErrTradeIncomplete is returned when rating a trade that has not
// fully closed.
var ErrTradeIncomplete = errors.New("cannot rate an open or incomplete trade")

// Sub-score weights. They sum to 1.0, so a final score built from
// [0,100] components stays in [0,100].
const (
	weightPnL        = 0.4
	weightDuration   = 0.2
	weightMarketBeat = 0.3
	weightRisk       = 0.1
)

// MarketHistory answers average-price queries for an asset over a
// time window.
type MarketHistory interface {
	AveragePrice(ctx context.Context, asset string, start, end time.Time) (float64, error)
}

// RiskModel scores the risk taken by a trade on a 0-100 scale.
type RiskModel interface {
	Score(trade *domain.ExecutedTrade) int
}

// FixedRiskModel returns the same score for every trade. It stands in
// until position-level risk inputs exist.
type FixedRiskModel struct {
	Value int
}

// Score returns the fixed risk score.
func (m FixedRiskModel) Score(_ *domain.ExecutedTrade) int { return m.Value }

// DefaultRiskModel assumes moderate risk.
var DefaultRiskModel = FixedRiskModel{Value: 75}

// Engine computes ratings and writes the final score back onto the
// trade record.
type Engine struct {
	trades  storage.TradeStore
	history MarketHistory
	risk    RiskModel
}

// EngineOptions contains configuration for creating an Engine.
type EngineOptions struct {
	TradeStore    storage.TradeStore
	MarketHistory MarketHistory

	// Risk defaults to DefaultRiskModel.
	Risk RiskModel
}

// NewEngine creates a new rating engine.
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		trades:  opts.TradeStore,
		history: opts.MarketHistory,
		risk:    opts.Risk,
	}
	if e.risk == nil {
		e.risk = DefaultRiskModel
	}
	return e
}

// Rate scores a closed trade and persists the final score on the
// trade record. Rating is recomputable; only the score write-back is
// durable.
func (e *Engine) Rate(ctx context.Context, tradeID string) (*domain.Rating, error) {
	t, err := e.trades.GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !t.Closed() {
		return nil, fmt.Errorf("%w: trade %s is %s", ErrTradeIncomplete, tradeID, t.Status)
	}

	pnl := *t.ProfitAndLoss
	pnlScore := clamp(math.Tanh(pnl/1000)*50 + 50)

	durationHours := t.ExitTimestamp.Sub(t.EntryTimestamp).Hours()
	durationScore := clamp(100 - durationHours)

	beat, err := e.beatsMarket(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("market history lookup: %w", err)
	}
	marketBeatScore := 50.0
	if beat {
		marketBeatScore = 100.0
	}

	riskScore := clamp(float64(e.risk.Score(t)))

	final := pnlScore*weightPnL +
		durationScore*weightDuration +
		marketBeatScore*weightMarketBeat +
		riskScore*weightRisk

	r := &domain.Rating{
		TradeID:       t.TradeID,
		FinalScore:    int(math.Round(final)),
		ProfitAndLoss: pnl,
		DurationHours: int(math.Round(durationHours)),
		MarketBeat:    beat,
		BestCase:      pnl * 1.5,
		WorstCase:     pnl * 0.5,
		Breakdown: domain.RatingBreakdown{
			PnLScore:        int(math.Round(pnlScore)),
			DurationScore:   int(math.Round(durationScore)),
			MarketBeatScore: int(marketBeatScore),
			RiskScore:       int(riskScore),
		},
	}

	if err := e.trades.SetScore(ctx, t.TradeID, r.FinalScore); err != nil {
		return nil, fmt.Errorf("persist score: %w", err)
	}
	return r, nil
}

// beatsMarket reports whether the trade's realized return exceeds the
// market's return over the holding window, both measured against the
// window's average price.
func (e *Engine) beatsMarket(ctx context.Context, t *domain.ExecutedTrade) (bool, error) {
	avg, err := e.history.AveragePrice(ctx, t.Asset, t.EntryTimestamp, *t.ExitTimestamp)
	if err != nil {
		return false, err
	}
	if avg <= 0 {
		return false, fmt.Errorf("non-positive average price %v for %s", avg, t.Asset)
	}

	tradeReturn := (*t.ExitPrice - t.EntryPrice) / t.EntryPrice
	marketReturn := (*t.ExitPrice - avg) / avg
	return tradeReturn > marketReturn, nil
}

// clamp bounds a sub-score to [0,100].
func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
