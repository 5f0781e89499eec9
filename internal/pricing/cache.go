package pricing

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultTTL is how long a cached price stays fresh.
const DefaultTTL = 300 * time.Second

type cacheEntry struct {
	price float64
	at    time.Time
}

// Cache holds resolved USD prices with a fixed TTL.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	data map[common.Address]cacheEntry
}

// NewCache creates a price cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[common.Address]cacheEntry),
	}
}

// Get returns the cached price if it has not expired.
func (c *Cache) Get(token common.Address) (float64, bool) {
	c.mu.RLock()
	entry, ok := c.data[token]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.at) >= c.ttl {
		return 0, false
	}
	return entry.price, true
}

// Set stores the price with the current timestamp.
func (c *Cache) Set(token common.Address, price float64) {
	c.mu.Lock()
	c.data[token] = cacheEntry{price: price, at: c.now()}
	c.mu.Unlock()
}
