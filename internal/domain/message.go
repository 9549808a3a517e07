package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// GeocodeRequest is the JSON payload consumed from the request topic.
type GeocodeRequest struct {
	ID           string  `json:"id"`
	Address      string  `json:"address"`
	ExactlyOne   *bool   `json:"exactly_one,omitempty"` // defaults to true
	IncludeTypes bool    `json:"include_types,omitempty"`
	Bounds       []Point `json:"bounds,omitempty"`
	Region       string  `json:"region,omitempty"`
}

// PlaceResult is the wire form of a Result inside a GeocodeResponse.
type PlaceResult struct {
	Address string   `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Types   []string `json:"types,omitempty"`
}

// GeocodeResponse is published to the result topic for every request,
// successful or not.
type GeocodeResponse struct {
	ID         string        `json:"id"`
	Address    string        `json:"address"`
	Results    []PlaceResult `json:"results"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	ResolvedAt time.Time     `json:"resolved_at"`
}

// Outcome is "success" when the request produced results, or the error kind.
func (r GeocodeResponse) Outcome() string {
	if r.ErrorKind != "" {
		return r.ErrorKind
	}
	return "success"
}

// OutputEvent is the serialized form destined for the result topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
