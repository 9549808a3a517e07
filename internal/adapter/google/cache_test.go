package google

import (
	"context"
	"iter"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	oneCalls int
	allCalls int
	results  []domain.Result
	err      error
}

func (m *countingGeocoder) Geocode(_ context.Context, _ domain.Query) (domain.Result, error) {
	m.oneCalls++
	if m.err != nil {
		return domain.Result{}, m.err
	}
	return m.results[0], nil
}

func (m *countingGeocoder) GeocodeAll(_ context.Context, _ domain.Query) (iter.Seq[domain.Result], error) {
	m.allCalls++
	if m.err != nil {
		return nil, m.err
	}
	return slices.Values(m.results), nil
}

var austin = domain.Result{Address: "Austin, TX, USA", Point: domain.Point{Lat: 30.2672, Lng: -97.7431}}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_GeocodeCacheHit(t *testing.T) {
	inner := &countingGeocoder{results: []domain.Result{austin}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.Geocode(context.Background(), domain.Query{Address: "Austin"})
	require.NoError(t, err)
	assert.Equal(t, austin, r1)

	r2, err := cached.Geocode(context.Background(), domain.Query{Address: "Austin"})
	require.NoError(t, err)
	assert.Equal(t, austin, r2)

	assert.Equal(t, 1, inner.oneCalls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_GeocodeAllCacheHit(t *testing.T) {
	dallas := domain.Result{Address: "Dallas, TX, USA"}
	inner := &countingGeocoder{results: []domain.Result{austin, dallas}}
	cached := NewCachedGeocoder(inner, 10, nil)

	for range 2 {
		seq, err := cached.GeocodeAll(context.Background(), domain.Query{Address: "Texas"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Result{austin, dallas}, slices.Collect(seq))
	}
	assert.Equal(t, 1, inner.allCalls)
}

func TestCachedGeocoder_SingleAndAllAreSeparate(t *testing.T) {
	inner := &countingGeocoder{results: []domain.Result{austin}}
	cached := NewCachedGeocoder(inner, 10, nil)

	_, err := cached.Geocode(context.Background(), domain.Query{Address: "Austin"})
	require.NoError(t, err)
	_, err = cached.GeocodeAll(context.Background(), domain.Query{Address: "Austin"})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.oneCalls)
	assert.Equal(t, 1, inner.allCalls)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{results: []domain.Result{austin}}
	cached := NewCachedGeocoder(inner, 10, nil)

	queries := []domain.Query{
		{Address: "Austin"},
		{Address: "Dallas"},
		{Address: "Austin", IncludeTypes: true},
		{Address: "Austin", Region: "us"},
		{Address: "Austin", Bounds: sanFernandoValley},
	}
	for _, q := range queries {
		_, err := cached.Geocode(context.Background(), q)
		require.NoError(t, err)
	}

	assert.Equal(t, len(queries), inner.oneCalls)
}

func TestCachedGeocoder_RegionCaseSharesEntry(t *testing.T) {
	inner := &countingGeocoder{results: []domain.Result{austin}}
	cached := NewCachedGeocoder(inner, 10, nil)

	_, _ = cached.Geocode(context.Background(), domain.Query{Address: "Austin", Region: "US"})
	_, _ = cached.Geocode(context.Background(), domain.Query{Address: "Austin", Region: "us"})

	assert.Equal(t, 1, inner.oneCalls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: domain.ErrRateLimited}
	cached := NewCachedGeocoder(inner, 10, nil)

	for range 2 {
		_, err := cached.Geocode(context.Background(), domain.Query{Address: "Austin"})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	}
	assert.Equal(t, 2, inner.oneCalls)
	assert.Equal(t, 0, cached.cache.len())
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, nil)

	for range 2 {
		seq, err := cached.GeocodeAll(context.Background(), domain.Query{Address: "Nowhere"})
		require.NoError(t, err)
		assert.Empty(t, slices.Collect(seq))
	}
	assert.Equal(t, 2, inner.allCalls)
}

func TestCachedGeocoder_GeocodeHitsDoNotShareTypes(t *testing.T) {
	inner := &countingGeocoder{results: []domain.Result{
		{Address: "Winnetka, IL, USA", Types: []string{"locality", "political"}},
	}}
	cached := NewCachedGeocoder(inner, 10, nil)
	q := domain.Query{Address: "Winnetka", IncludeTypes: true}

	r1, err := cached.Geocode(context.Background(), q)
	require.NoError(t, err)
	r1.Types[0] = "mutated"

	r2, err := cached.Geocode(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"locality", "political"}, r2.Types)
	r2.Types[1] = "mutated"

	r3, err := cached.Geocode(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"locality", "political"}, r3.Types)
	assert.Equal(t, 1, inner.oneCalls)
}

func TestCachedGeocoder_GeocodeAllHitsAreFresh(t *testing.T) {
	inner := &countingGeocoder{results: []domain.Result{
		{Address: "Paris, France", Types: []string{"locality"}},
		{Address: "Paris, TX, USA", Types: []string{"locality"}},
	}}
	cached := NewCachedGeocoder(inner, 10, nil)
	q := domain.Query{Address: "Paris", IncludeTypes: true}
	want := []domain.Result{
		{Address: "Paris, France", Types: []string{"locality"}},
		{Address: "Paris, TX, USA", Types: []string{"locality"}},
	}

	seq, err := cached.GeocodeAll(context.Background(), q)
	require.NoError(t, err)
	for r := range seq {
		r.Types[0] = "mutated"
	}

	for range 2 {
		seq, err = cached.GeocodeAll(context.Background(), q)
		require.NoError(t, err)
		got := slices.Collect(seq)
		assert.Equal(t, want, got)
		got[0].Address = "changed"
		got[1].Types[0] = "changed"
	}
	assert.Equal(t, 1, inner.allCalls)
}

// --- LRU cache unit tests ---

func one(address string) []domain.Result {
	return []domain.Result{{Address: address}}
}

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", one("A"))
	c.put("b", one("B"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result[0].Address)

	_, ok = c.get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", one("A"))
	c.put("b", one("B"))
	c.put("c", one("C")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result[0].Address)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result[0].Address)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", one("A"))
	c.put("b", one("B"))

	c.get("a")

	// "b" is now least recently used.
	c.put("c", one("C"))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", one("A1"))
	c.put("a", one("A2"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result[0].Address)
	assert.Equal(t, 1, c.len())
}
