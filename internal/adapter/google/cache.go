package google

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

var _ domain.Geocoder = (*CachedGeocoder)(nil)

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, q domain.Query) (domain.Result, error) {
	key := "one:" + queryKey(q)
	if results, ok := c.lookup(key); ok {
		return cloneResult(results[0]), nil
	}
	result, err := c.inner.Geocode(ctx, q)
	if err != nil {
		return result, err
	}
	c.cache.put(key, []domain.Result{cloneResult(result)})
	return result, nil
}

func (c *CachedGeocoder) GeocodeAll(ctx context.Context, q domain.Query) (iter.Seq[domain.Result], error) {
	key := "all:" + queryKey(q)
	if results, ok := c.lookup(key); ok {
		return slices.Values(cloneResults(results)), nil
	}
	seq, err := c.inner.GeocodeAll(ctx, q)
	if err != nil {
		return nil, err
	}
	results := slices.Collect(seq)
	// Only cache non-empty results so transient "not found" responses can be retried.
	if len(results) > 0 {
		c.cache.put(key, cloneResults(results))
	}
	return slices.Values(results), nil
}

func (c *CachedGeocoder) lookup(key string) ([]domain.Result, bool) {
	results, ok := c.cache.get(key)
	if c.metrics != nil {
		outcome := "miss"
		if ok {
			outcome = "hit"
		}
		c.metrics.GeocodeCache.WithLabelValues(outcome).Inc()
	}
	return results, ok
}

// Cached entries never share backing arrays with values handed to callers.
func cloneResults(rs []domain.Result) []domain.Result {
	out := make([]domain.Result, len(rs))
	for i, r := range rs {
		out[i] = cloneResult(r)
	}
	return out
}

func cloneResult(r domain.Result) domain.Result {
	r.Types = slices.Clone(r.Types)
	return r
}

// queryKey identifies every parameter that changes the provider's answer.
func queryKey(q domain.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|types=%t|region=%s|bounds=", q.Address, q.IncludeTypes, strings.ToLower(q.Region))
	for i, p := range q.Bounds {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%.6f,%.6f", p.Lat, p.Lng)
	}
	return b.String()
}

// lruCache is a simple thread-safe LRU cache of result lists.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.Result
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
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

func (c *lruCache) remove(e *entry) {
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

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
