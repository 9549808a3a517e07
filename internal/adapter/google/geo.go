package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	geo "github.com/codingsince1985/geo-golang"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
)

// GeoAdapter exposes a domain.Geocoder through the geo-golang interface so it
// can stand in wherever a geo.Geocoder is expected.
type GeoAdapter struct {
	geocoder domain.Geocoder
	timeout  time.Duration
}

var _ geo.Geocoder = (*GeoAdapter)(nil)

// NewGeoAdapter wraps g. A positive timeout bounds each call.
func NewGeoAdapter(g domain.Geocoder, timeout time.Duration) *GeoAdapter {
	return &GeoAdapter{geocoder: g, timeout: timeout}
}

// Geocode returns the single location matching address. Following geo-golang
// conventions, an address with no match yields (nil, nil).
func (a *GeoAdapter) Geocode(address string) (*geo.Location, error) {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	r, err := a.geocoder.Geocode(ctx, domain.Query{Address: address, ExactlyOne: true})
	if errors.Is(err, domain.ErrNoResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &geo.Location{Lat: r.Point.Lat, Lng: r.Point.Lng}, nil
}

// ReverseGeocode is not supported by this client.
func (a *GeoAdapter) ReverseGeocode(_, _ float64) (*geo.Address, error) {
	return nil, fmt.Errorf("%w: reverse geocoding", domain.ErrNotImplemented)
}
