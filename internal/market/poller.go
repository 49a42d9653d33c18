package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"trading-desk/internal/domain"
	"trading-desk/internal/observability"
	"trading-desk/internal/storage"
)

// DefaultPollInterval is how often the spot poller queries the REST
// source.
const DefaultPollInterval = 30 * time.Second

// coinIDs maps asset symbols to the REST source's coin identifiers.
var coinIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
}

// Poller periodically fetches spot prices over HTTP, refreshes the
// cache and appends the observations to price history.
type Poller struct {
	endpoint string
	assets   []string
	interval time.Duration
	client   *http.Client

	cache   *Cache
	history storage.PriceHistoryStore

	logger *log.Logger
}

// PollerOptions contains configuration for creating a Poller.
type PollerOptions struct {
	// Endpoint is the REST price API base, e.g.
	// https://api.coingecko.com/api/v3.
	Endpoint string

	// Assets to poll; defaults to the cache's seeded symbols.
	Assets []string

	// Interval defaults to DefaultPollInterval.
	Interval time.Duration

	Cache   *Cache
	History storage.PriceHistoryStore

	// HTTPClient overrides the default client in tests.
	HTTPClient *http.Client

	Logger *log.Logger
}

// NewPoller creates a new spot price poller.
func NewPoller(opts PollerOptions) *Poller {
	p := &Poller{
		endpoint: strings.TrimSuffix(opts.Endpoint, "/"),
		assets:   opts.Assets,
		interval: opts.Interval,
		client:   opts.HTTPClient,
		cache:    opts.Cache,
		history:  opts.History,
		logger:   opts.Logger,
	}
	if p.logger == nil {
		p.logger = log.New(os.Stdout, "[poller] ", log.LstdFlags)
	}
	if len(p.assets) == 0 {
		for asset := range defaultPrices {
			p.assets = append(p.assets, asset)
		}
		sort.Strings(p.assets)
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 10 * time.Second}
	}
	return p
}

// Run polls until the context is cancelled. Poll failures are logged
// and retried on the next tick; the cache keeps serving the last
// known prices meanwhile.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.PollOnce(ctx); err != nil {
		p.logger.Printf("initial poll: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.PollOnce(ctx); err != nil {
				p.logger.Printf("poll: %v", err)
			}
		}
	}
}

// PollOnce fetches prices for all configured assets once.
func (p *Poller) PollOnce(ctx context.Context) error {
	prices, err := p.fetch(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	ticks := make([]*domain.PriceTick, 0, len(prices))
	for asset, price := range prices {
		p.cache.Set(asset, price)
		ticks = append(ticks, &domain.PriceTick{
			Asset:       asset,
			Price:       price,
			TimestampMs: now,
			Source:      domain.TickSourcePoller,
		})
	}

	if p.history != nil && len(ticks) > 0 {
		if err := p.history.InsertBulk(ctx, ticks); err != nil {
			return fmt.Errorf("store ticks: %w", err)
		}
		for range ticks {
			observability.RecordTickStored(domain.TickSourcePoller)
		}
	}
	return nil
}

// fetch queries the simple-price endpoint and maps coin IDs back to
// asset symbols.
func (p *Poller) fetch(ctx context.Context) (map[string]float64, error) {
	ids := make([]string, 0, len(p.assets))
	symbols := make(map[string]string, len(p.assets))
	for _, asset := range p.assets {
		id, ok := coinIDs[asset]
		if !ok {
			continue
		}
		ids = append(ids, id)
		symbols[id] = asset
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no pollable assets in %v", p.assets)
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	reqURL := fmt.Sprintf("%s/simple/price?%s", p.endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// {"bitcoin": {"usd": 65000}, ...}
	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	prices := make(map[string]float64, len(payload))
	for id, quote := range payload {
		asset, ok := symbols[id]
		if !ok {
			continue
		}
		usd, ok := quote["usd"]
		if !ok || usd <= 0 {
			continue
		}
		prices[asset] = usd
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("response carried no usable prices")
	}
	return prices, nil
}
