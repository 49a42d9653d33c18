// Package market maintains live asset prices and answers
// historical-average queries for the rating engine.
package market

import (
	"sync"

	"trading-desk/internal/storage"
)

// Default reference prices used until a live source overwrites them.
var defaultPrices = map[string]float64{
	"BTC": 65000,
	"ETH": 3500,
	"SOL": 150,
}

// Cache holds the latest known price per asset symbol.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewCache creates a cache seeded with the default reference prices.
func NewCache() *Cache {
	prices := make(map[string]float64, len(defaultPrices))
	for asset, price := range defaultPrices {
		prices[asset] = price
	}
	return &Cache{prices: prices}
}

// Set records the latest price for an asset.
func (c *Cache) Set(asset string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[asset] = price
}

// Get returns the latest price for an asset.
func (c *Cache) Get(asset string) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	price, ok := c.prices[asset]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return price, nil
}

// Snapshot returns a copy of all known prices.
func (c *Cache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64, len(c.prices))
	for asset, price := range c.prices {
		out[asset] = price
	}
	return out
}
