package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeRegion validates a region bias code and returns it lowercased.
// Google expects ccTLD codes, which are ISO 3166-1 alpha-2 except for "uk".
// An empty input is returned unchanged.
func NormalizeRegion(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}
	if strings.EqualFold(code, "uk") {
		return "uk", nil
	}
	if len(code) != 2 {
		return "", fmt.Errorf("%w: region %q must be a two-letter code", ErrInvalidParameter, code)
	}
	r, err := language.ParseRegion(code)
	if err != nil || !r.IsCountry() {
		return "", fmt.Errorf("%w: unknown region %q", ErrInvalidParameter, code)
	}
	return strings.ToLower(r.String()), nil
}
