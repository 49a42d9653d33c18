package domain

// RatingBreakdown holds the four sub-scores that make up a rating.
// Each sub-score is independently bounded to [0,100].
type RatingBreakdown struct {
	PnLScore        int `json:"pnlScore"`
	DurationScore   int `json:"durationScore"`
	MarketBeatScore int `json:"marketBeatScore"`
	RiskScore       int `json:"riskScore"`
}

// Rating is the derived performance assessment of a closed trade.
// It is not independently persisted; the only durable side effect of
// rating is the final score written back onto the trade record.
type Rating struct {
	TradeID       string  `json:"tradeId"`
	FinalScore    int     `json:"finalScore"` // always in [0,100]
	ProfitAndLoss float64 `json:"pnl"`
	DurationHours int     `json:"durationHours"`
	MarketBeat    bool    `json:"marketBeat"`

	// Illustrative bounds (1.5× and 0.5× realized P&L), not
	// statistically derived.
	BestCase  float64 `json:"bestCaseScenario"`
	WorstCase float64 `json:"worstCaseScenario"`

	Breakdown RatingBreakdown `json:"breakdown"`
}
