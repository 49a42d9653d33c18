// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Auction metrics
	AuctionsCreated     prometheus.Counter
	AuctionTransitions  *prometheus.CounterVec
	BidsPlaced          *prometheus.CounterVec
	CollateralTransfers *prometheus.CounterVec

	// Trade metrics
	TradesOpened   prometheus.Counter
	TradesClosed   prometheus.Counter
	RealizedPnL    prometheus.Histogram
	RatingsScored  prometheus.Counter
	RatingDuration prometheus.Histogram

	// Chain metrics
	ChainCallLatency *prometheus.HistogramVec
	ChainCallErrors  *prometheus.CounterVec

	// Market metrics
	PriceTicksStored *prometheus.CounterVec
	FeedReconnects   prometheus.Counter

	// HTTP metrics
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trading_desk"
	}

	return &Metrics{
		// Auction metrics
		AuctionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "created_total",
			Help:      "Total number of auctions created",
		}),
		AuctionTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "transitions_total",
			Help:      "Total number of auction status transitions by target status",
		}, []string{"to"}),
		BidsPlaced: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "bids_placed_total",
			Help:      "Total number of bid placements by outcome",
		}, []string{"outcome"}),
		CollateralTransfers: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "collateral_transfers_total",
			Help:      "Total number of collateral transfers by chain and outcome",
		}, []string{"chain", "outcome"}),

		// Trade metrics
		TradesOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "opened_total",
			Help:      "Total number of trades opened",
		}),
		TradesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "closed_total",
			Help:      "Total number of trades closed",
		}),
		RealizedPnL: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "realized_pnl",
			Help:      "Realized P&L per closed trade",
			Buckets:   []float64{-10000, -1000, -100, 0, 100, 1000, 10000},
		}),
		RatingsScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "scored_total",
			Help:      "Total number of trades rated",
		}),
		RatingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "duration_seconds",
			Help:      "Time spent computing a rating including oracle lookup",
			Buckets:   prometheus.DefBuckets,
		}),

		// Chain metrics
		ChainCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "call_duration_seconds",
			Help:      "Chain adapter call latency by chain and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"chain", "method"}),
		ChainCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "call_errors_total",
			Help:      "Total number of failed chain adapter calls by chain and method",
		}, []string{"chain", "method"}),

		// Market metrics
		PriceTicksStored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "ticks_stored_total",
			Help:      "Total number of price ticks stored by source",
		}, []string{"source"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "feed_reconnects_total",
			Help:      "Total number of websocket feed reconnects",
		}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of failed database queries by database and operation",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAuctionCreated increments the auctions created counter.
func RecordAuctionCreated() {
	DefaultMetrics.AuctionsCreated.Inc()
}

// RecordAuctionTransition records a lifecycle transition.
func RecordAuctionTransition(to string) {
	DefaultMetrics.AuctionTransitions.WithLabelValues(to).Inc()
}

// RecordBidPlaced records a bid placement outcome.
func RecordBidPlaced(outcome string) {
	DefaultMetrics.BidsPlaced.WithLabelValues(outcome).Inc()
}

// RecordCollateralTransfer records a collateral transfer attempt.
func RecordCollateralTransfer(chain string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	DefaultMetrics.CollateralTransfers.WithLabelValues(chain, outcome).Inc()
}

// RecordTradeOpened increments the trades opened counter.
func RecordTradeOpened() {
	DefaultMetrics.TradesOpened.Inc()
}

// RecordTradeClosed records a trade close and its realized P&L.
func RecordTradeClosed(pnl float64) {
	DefaultMetrics.TradesClosed.Inc()
	DefaultMetrics.RealizedPnL.Observe(pnl)
}

// RecordRating records a completed rating computation.
func RecordRating(seconds float64) {
	DefaultMetrics.RatingsScored.Inc()
	DefaultMetrics.RatingDuration.Observe(seconds)
}

// RecordChainCall records a chain adapter call.
func RecordChainCall(chain, method string, seconds float64, err error) {
	DefaultMetrics.ChainCallLatency.WithLabelValues(chain, method).Observe(seconds)
	if err != nil {
		DefaultMetrics.ChainCallErrors.WithLabelValues(chain, method).Inc()
	}
}

// RecordTickStored increments the stored tick counter for a source.
func RecordTickStored(source string) {
	DefaultMetrics.PriceTicksStored.WithLabelValues(source).Inc()
}

// RecordFeedReconnect increments the feed reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route string, code int, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, httpCode(code)).Inc()
	DefaultMetrics.HTTPRequestLatency.WithLabelValues(route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

func httpCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
