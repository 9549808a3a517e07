package domain

import (
	"fmt"
	"strings"
)

// OutputFormat selects the provider's response encoding. Only FormatJSON has
// a parser; the others are accepted so the URL can be built, but parsing
// them fails with ErrNotImplemented.
type OutputFormat int

const (
	FormatJSON OutputFormat = iota
	FormatXML
	FormatKML
	FormatCSV
	FormatJS
)

var formatNames = map[OutputFormat]string{
	FormatJSON: "json",
	FormatXML:  "xml",
	FormatKML:  "kml",
	FormatCSV:  "csv",
	FormatJS:   "js",
}

func (f OutputFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("OutputFormat(%d)", int(f))
}

// Valid reports whether f is one of the known formats.
func (f OutputFormat) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// ParseOutputFormat maps a case-insensitive name to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown output format %q", ErrInvalidParameter, s)
}

// ValidateFormatString checks an address template for printf semantics: it
// must hold exactly one %s verb, and any other percent sign must be escaped
// as %%.
func ValidateFormatString(tmpl string) error {
	verbs := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			return fmt.Errorf("%w: format string %q ends with a lone %%", ErrInvalidParameter, tmpl)
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			verbs++
		default:
			return fmt.Errorf("%w: format string %q has unsupported verb %%%c", ErrInvalidParameter, tmpl, tmpl[i])
		}
	}
	if verbs != 1 {
		return fmt.Errorf("%w: format string %q must contain exactly one %%s, has %d", ErrInvalidParameter, tmpl, verbs)
	}
	return nil
}
