package domain

// PriceTick is a single observed spot price for an asset.
// Corresponds to the price_history table in ClickHouse.
type PriceTick struct {
	Asset       string  // asset symbol, e.g. "BTC"
	Price       float64 // quote currency (USD)
	TimestampMs int64   // Unix timestamp in milliseconds
	Source      string  // feed that produced the tick
}

// Price tick sources.
const (
	TickSourcePoller = "poller" // REST price poller
	TickSourceStream = "stream" // websocket ticker stream
)
