// Package domain models forward geocoding queries and results.
//
// # Provider Conventions
//
// The provider is the Google Maps Geocoding web service (or anything that
// speaks its JSON dialect). A response looks like:
//
//	{"status": "OK",
//	 "results": [{"formatted_address": "Winnetka, IL, USA",
//	              "geometry": {"location": {"lat": 42.108, "lng": -87.735}},
//	              "types": ["locality", "political"]}]}
//
// Coordinates are always exposed as Point{Lat, Lng}, latitude first,
// regardless of how the provider orders them on the wire.
//
// Status strings:
//
//	OK                results present (may still be the wrong count)
//	ZERO_RESULTS      ErrNoResult
//	REQUEST_DENIED    ErrRequestDenied
//	INVALID_REQUEST   ErrInvalidRequest
//	OVER_QUERY_LIMIT  ErrRateLimited
//	anything else     ErrUnknownStatus
//
// The status is only consulted when the result list is empty.
//
// # Viewport Biasing
//
// Bounds are a southwest/northeast pair, serialized as
// "lat,lng|lat,lng". The San Fernando Valley, for example:
//
//	[]Point{{34.172684, -118.604794}, {34.236144, -118.500938}}
//
// Region biasing takes a two-letter ccTLD code ("us", "uk", "es").
//
// # Messages
//
// The service consumes GeocodeRequest JSON from the request topic and
// publishes one GeocodeResponse per request, keyed by request id. Failed
// lookups still produce a response carrying error and error_kind so the
// caller is never left waiting.
package domain
