package domain

import (
	"context"
	"iter"
)

// Point is a WGS-84 coordinate. Lat always comes first.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Query describes a single forward geocoding request.
type Query struct {
	Address      string
	ExactlyOne   bool
	IncludeTypes bool

	// Bounds biases results toward a viewport: southwest corner first,
	// northeast second. Any other length is rejected with ErrInvalidParameter.
	Bounds []Point

	// Region is a two-letter ccTLD code. It is lowercased but otherwise sent
	// as-is; use NormalizeRegion to validate it beforehand.
	Region string
}

// Result is one place returned by the provider.
type Result struct {
	Address string   `json:"address"`
	Point   Point    `json:"point"`
	Types   []string `json:"types,omitempty"` // nil unless Query.IncludeTypes
}

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	// Geocode returns the single place matching q. It fails with
	// ErrNotExactlyOne when the provider returns zero or several places.
	Geocode(ctx context.Context, q Query) (Result, error)

	// GeocodeAll returns every place matching q in provider order.
	GeocodeAll(ctx context.Context, q Query) (iter.Seq[Result], error)
}
