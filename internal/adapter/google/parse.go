package google

import (
	"encoding/json"
	"fmt"
	"iter"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
)

// parseJSON decodes a JSON response body. Status is only consulted when the
// result list is empty.
func parseJSON(body []byte, exactlyOne, includeTypes bool) (iter.Seq[domain.Result], error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	places := resp.Results
	if len(places) == 0 {
		if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
			return nil, err
		}
	}

	if exactlyOne && len(places) != 1 {
		return nil, &domain.NotExactlyOneError{Count: len(places)}
	}

	for i, p := range places {
		if p.Geometry.Location == nil {
			return nil, fmt.Errorf("decode response: place %d (%q) has no geometry.location", i, p.FormattedAddress)
		}
	}

	return func(yield func(domain.Result) bool) {
		for _, p := range places {
			if !yield(parsePlace(p, includeTypes)) {
				return
			}
		}
	}, nil
}

func parsePlace(p place, includeTypes bool) domain.Result {
	r := domain.Result{
		Address: p.FormattedAddress,
		Point: domain.Point{
			Lat: p.Geometry.Location.Lat,
			Lng: p.Geometry.Location.Lng,
		},
	}
	if includeTypes {
		r.Types = p.Types
		if r.Types == nil {
			r.Types = []string{}
		}
	}
	return r
}

// checkStatus translates a provider status into an error kind. OK yields nil;
// unrecognized statuses are reported as ErrUnknownStatus.
func checkStatus(status, message string) error {
	var kind error
	switch status {
	case statusOK:
		return nil
	case statusZeroResults:
		kind = domain.ErrNoResult
	case statusRequestDenied:
		kind = domain.ErrRequestDenied
	case statusInvalidRequest:
		kind = domain.ErrInvalidRequest
	case statusOverQueryLimit:
		kind = domain.ErrRateLimited
	default:
		kind = domain.ErrUnknownStatus
	}
	return &domain.StatusError{Status: status, Message: message, Err: kind}
}
