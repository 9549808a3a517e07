package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBounds parses "lat,lng|lat,lng" into corner points. It does not check
// the number of corners; the geocoder rejects anything but two.
func ParseBounds(s string) ([]Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "|")
	points := make([]Point, 0, len(parts))
	for _, part := range parts {
		lat, lng, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("%w: bounds corner %q is not lat,lng", ErrInvalidParameter, part)
		}
		p, err := parsePoint(lat, lng)
		if err != nil {
			return nil, fmt.Errorf("%w: bounds corner %q: %v", ErrInvalidParameter, part, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePoint(lat, lng string) (Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, err
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, err
	}
	if la < -90 || la > 90 || ln < -180 || ln > 180 {
		return Point{}, fmt.Errorf("coordinate out of range")
	}
	return Point{Lat: la, Lng: ln}, nil
}
