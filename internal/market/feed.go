package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"trading-desk/internal/domain"
	"trading-desk/internal/observability"
	"trading-desk/internal/storage"
)

// FeedConfig configures websocket feed behavior.
type FeedConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is the maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
	}
}

// tickMessage is the wire shape of one streamed tick.
type tickMessage struct {
	Asset       string  `json:"asset"`
	Price       float64 `json:"price"`
	TimestampMs int64   `json:"ts,omitempty"`
}

// Feed consumes a websocket ticker stream, refreshing the cache and
// appending each tick to price history. It reconnects with
// exponential backoff when the stream drops.
type Feed struct {
	endpoint string
	config   FeedConfig

	cache   *Cache
	history storage.PriceHistoryStore

	logger *log.Logger
}

// FeedOptions contains configuration for creating a Feed.
type FeedOptions struct {
	// Endpoint is the ws:// or wss:// ticker stream URL.
	Endpoint string

	// Config defaults to DefaultFeedConfig.
	Config *FeedConfig

	Cache   *Cache
	History storage.PriceHistoryStore

	Logger *log.Logger
}

// NewFeed creates a new ticker stream consumer.
func NewFeed(opts FeedOptions) *Feed {
	cfg := DefaultFeedConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	f := &Feed{
		endpoint: opts.Endpoint,
		config:   cfg,
		cache:    opts.Cache,
		history:  opts.History,
		logger:   opts.Logger,
	}
	if f.logger == nil {
		f.logger = log.New(os.Stdout, "[feed] ", log.LstdFlags)
	}
	return f
}

// Run consumes the stream until the context is cancelled, redialing
// with backoff after each disconnect.
func (f *Feed) Run(ctx context.Context) {
	delay := f.config.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return
		}

		err := f.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		f.logger.Printf("stream dropped: %v; reconnecting in %v", err, delay)
		observability.RecordFeedReconnect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > f.config.MaxReconnectDelay {
			delay = f.config.MaxReconnectDelay
		}
	}
}

// consume dials the stream and processes ticks until the connection
// breaks.
func (f *Feed) consume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	f.logger.Printf("connected to %s", f.endpoint)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
	})

	// Close the connection when the context ends so ReadMessage
	// unblocks; ping to keep intermediaries from idling us out.
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go func() {
		ticker := time.NewTicker(f.config.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg tickMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			f.logger.Printf("skipping malformed tick: %v", err)
			continue
		}
		f.handleTick(ctx, msg)
	}
}

// handleTick applies one streamed tick.
func (f *Feed) handleTick(ctx context.Context, msg tickMessage) {
	asset := strings.ToUpper(msg.Asset)
	if asset == "" || msg.Price <= 0 {
		return
	}
	if msg.TimestampMs == 0 {
		msg.TimestampMs = time.Now().UnixMilli()
	}

	f.cache.Set(asset, msg.Price)

	if f.history == nil {
		return
	}
	tick := &domain.PriceTick{
		Asset:       asset,
		Price:       msg.Price,
		TimestampMs: msg.TimestampMs,
		Source:      domain.TickSourceStream,
	}
	if err := f.history.InsertBulk(ctx, []*domain.PriceTick{tick}); err != nil {
		f.logger.Printf("store tick %s: %v", asset, err)
		return
	}
	observability.RecordTickStored(domain.TickSourceStream)
}
