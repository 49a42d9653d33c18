package domain

import "time"

// TradeStatus is the lifecycle state of an executed trade.
type TradeStatus string

// Trade states. OPEN → CLOSED only; exit fields and P&L are set
// atomically together, exactly once, on close.
const (
	TradeStatusOpen   TradeStatus = "OPEN"
	TradeStatusClosed TradeStatus = "CLOSED"
)

// ExecutedTrade is a record of an opened and (optionally) closed
// position. Corresponds to the executed_trades table.
type ExecutedTrade struct {
	TradeID   string `json:"tradeId"`
	ActionRef string `json:"actionRef,omitempty"` // originating action, may be absent
	Asset     string `json:"asset"`

	Quantity       float64   `json:"quantity"`
	EntryPrice     float64   `json:"entryPrice"`
	EntryTimestamp time.Time `json:"entryTimestamp"`

	Status TradeStatus `json:"status"`

	// Exit fields, present iff Status == CLOSED.
	ExitPrice     *float64   `json:"exitPrice,omitempty"`
	ExitTimestamp *time.Time `json:"exitTimestamp,omitempty"`
	ProfitAndLoss *float64   `json:"profitAndLoss,omitempty"` // (exit − entry) × quantity

	// PerformanceScore is present only after rating.
	PerformanceScore *int `json:"performanceScore,omitempty"`
}

// TradeClose carries the exit fields written atomically when a trade
// transitions from OPEN to CLOSED.
type TradeClose struct {
	ExitPrice     float64
	ExitTimestamp time.Time
	ProfitAndLoss float64
}

// Closed reports whether the trade has fully-populated exit fields.
func (t *ExecutedTrade) Closed() bool {
	return t.Status == TradeStatusClosed &&
		t.ExitPrice != nil && t.ExitTimestamp != nil && t.ProfitAndLoss != nil
}
