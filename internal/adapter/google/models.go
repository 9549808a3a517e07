package google

// Google Geocoding API response types.

type response struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Results      []place `json:"results"`
}

type place struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
	Types            []string `json:"types,omitempty"`
}

type geometry struct {
	Location     *latLng `json:"location"`
	LocationType string  `json:"location_type,omitempty"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Status values returned by the API.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusRequestDenied  = "REQUEST_DENIED"
	statusInvalidRequest = "INVALID_REQUEST"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
)
