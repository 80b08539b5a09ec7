package mapbox

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
)

// CachedSearcher wraps an AddressSearcher with in-memory LRU caches.
type CachedSearcher struct {
	inner   domain.AddressSearcher
	search  *lruCache[[]domain.AddressMatch]
	reverse *lruCache[domain.AddressMatch]
	metrics *observability.Metrics
}

// NewCachedSearcher creates a cache decorator around a searcher. Search and
// reverse lookups each keep up to maxEntries results.
func NewCachedSearcher(inner domain.AddressSearcher, maxEntries int, metrics *observability.Metrics) *CachedSearcher {
	return &CachedSearcher{
		inner:   inner,
		search:  newLRUCache[[]domain.AddressMatch](maxEntries),
		reverse: newLRUCache[domain.AddressMatch](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSearcher) SearchAddress(ctx context.Context, query string) ([]domain.AddressMatch, error) {
	// Autocomplete fires on every keystroke; case and spacing do not change the answer.
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if result, ok := c.search.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(methodSearch, "hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues(methodSearch, "miss").Inc()

	result, err := c.inner.SearchAddress(ctx, query)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if len(result) > 0 {
		c.search.put(key, result)
	}
	return result, nil
}

func (c *CachedSearcher) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.AddressMatch, error) {
	key := fmt.Sprintf("%.6f,%.6f", coord.Lat, coord.Lng)
	if result, ok := c.reverse.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(methodReverse, "hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues(methodReverse, "miss").Inc()

	result, err := c.inner.ReverseGeocode(ctx, coord)
	if err != nil {
		return result, err
	}
	if result.FormattedAddress != "" {
		c.reverse.put(key, result)
	}
	return result, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
