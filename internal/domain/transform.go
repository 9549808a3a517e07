package domain

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"
)

// ParseRequest unmarshals a raw request message. Messages without an id fall
// back to the Kafka key.
func ParseRequest(raw RawEvent) (GeocodeRequest, error) {
	var req GeocodeRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return GeocodeRequest{}, fmt.Errorf("unmarshal geocode request: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	req.Address = strings.TrimSpace(req.Address)
	if req.Address == "" {
		return GeocodeRequest{}, fmt.Errorf("%w: request %q has no address", ErrInvalidParameter, req.ID)
	}
	return req, nil
}

// Query converts the request into a Query. defaultRegion applies when the
// request carries none.
func (r GeocodeRequest) Query(defaultRegion string) (Query, error) {
	region := r.Region
	if region == "" {
		region = defaultRegion
	}
	region, err := NormalizeRegion(region)
	if err != nil {
		return Query{}, err
	}
	exactlyOne := true
	if r.ExactlyOne != nil {
		exactlyOne = *r.ExactlyOne
	}
	return Query{
		Address:      r.Address,
		ExactlyOne:   exactlyOne,
		IncludeTypes: r.IncludeTypes,
		Bounds:       r.Bounds,
		Region:       region,
	}, nil
}

// NewResponse assembles the result message for req. Either results or err is
// used; a nil sequence with a nil error yields an empty result list.
func NewResponse(req GeocodeRequest, results iter.Seq[Result], err error) GeocodeResponse {
	resp := GeocodeResponse{
		ID:         req.ID,
		Address:    req.Address,
		Results:    []PlaceResult{},
		ResolvedAt: clock.Now().UTC(),
	}
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorKind = ErrorKind(err)
		return resp
	}
	if results == nil {
		return resp
	}
	for r := range results {
		resp.Results = append(resp.Results, PlaceResult{
			Address: r.Address,
			Lat:     r.Point.Lat,
			Lng:     r.Point.Lng,
			Types:   r.Types,
		})
	}
	return resp
}

// SerializeResponse marshals a response into an OutputEvent keyed by id.
func SerializeResponse(resp GeocodeResponse) (OutputEvent, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize geocode response: %w", err)
	}
	return OutputEvent{
		Key:   []byte(resp.ID),
		Value: data,
		Headers: map[string]string{
			"outcome":     resp.Outcome(),
			"resolved_at": resp.ResolvedAt.Format(time.RFC3339),
		},
	}, nil
}
