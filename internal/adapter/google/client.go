package google

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
)

// Defaults point at the Google Maps Geocoding API.
const (
	DefaultScheme       = "http"
	DefaultDomain       = "maps.googleapis.com"
	DefaultResource     = "maps/api/geocode"
	DefaultFormatString = "%s"
	DefaultSensor       = "false"
)

// Client implements domain.Geocoder against the Google Maps Geocoding API.
// It is stateless and safe for concurrent use.
type Client struct {
	scheme       string
	domain       string
	resource     string
	formatString string
	format       domain.OutputFormat
	sensor       string
	apiKey       string
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *observability.Metrics
}

var _ domain.Geocoder = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithScheme sets the URL scheme, "http" or "https".
func WithScheme(scheme string) Option {
	return func(c *Client) { c.scheme = scheme }
}

// WithDomain sets the host (and optional port) to query.
func WithDomain(d string) Option {
	return func(c *Client) { c.domain = d }
}

// WithResource sets the path preceding the output format segment.
func WithResource(resource string) Option {
	return func(c *Client) { c.resource = resource }
}

// WithFormatString sets the printf-style template the address is
// interpolated into, e.g. "%s, Mountain View, CA". It must contain exactly
// one %s; write a literal percent sign as %%.
func WithFormatString(format string) Option {
	return func(c *Client) { c.formatString = format }
}

// WithOutputFormat selects the response encoding.
func WithOutputFormat(f domain.OutputFormat) Option {
	return func(c *Client) { c.format = f }
}

// WithSensor sets the sensor query parameter.
func WithSensor(sensor string) Option {
	return func(c *Client) { c.sensor = sensor }
}

// WithAPIKey sends key=<apiKey> with every request.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithHTTPClient replaces the transport. Timeouts, pooling and retries
// belong on the supplied client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records request outcomes and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a geocoding client. Configuration errors, such as an
// unknown output format or a malformed format string, are reported here
// rather than on the first request.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		scheme:       DefaultScheme,
		domain:       DefaultDomain,
		resource:     DefaultResource,
		formatString: DefaultFormatString,
		format:       domain.FormatJSON,
		sensor:       DefaultSensor,
		httpClient:   http.DefaultClient,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.format.Valid() {
		return nil, fmt.Errorf("%w: output format %s", domain.ErrInvalidParameter, c.format)
	}
	if err := domain.ValidateFormatString(c.formatString); err != nil {
		return nil, err
	}
	if c.scheme != "http" && c.scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", domain.ErrInvalidParameter, c.scheme)
	}
	if strings.Trim(c.domain, "/") == "" {
		return nil, fmt.Errorf("%w: empty domain", domain.ErrInvalidParameter)
	}
	return c, nil
}

// Endpoint returns the URL that queries are appended to.
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s://%s/%s/%s",
		c.scheme,
		strings.Trim(c.domain, "/"),
		strings.Trim(c.resource, "/"),
		strings.ToLower(c.format.String()),
	)
}

// BuildURL renders q into a request URL without performing any I/O.
// The address and sensor are query-encoded; bounds and region are appended
// verbatim, so callers should validate region codes first.
func (c *Client) BuildURL(q domain.Query) (string, error) {
	if len(q.Bounds) != 0 && len(q.Bounds) != 2 {
		return "", fmt.Errorf("%w: bounding box needs a southwest and a northeast corner, got %d points",
			domain.ErrInvalidParameter, len(q.Bounds))
	}

	params := url.Values{
		"address": {fmt.Sprintf(c.formatString, q.Address)},
		"sensor":  {c.sensor},
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var b strings.Builder
	b.WriteString(c.Endpoint())
	b.WriteByte('?')
	b.WriteString(params.Encode())

	if len(q.Bounds) == 2 {
		sw, ne := q.Bounds[0], q.Bounds[1]
		fmt.Fprintf(&b, "&bounds=%s,%s|%s,%s",
			formatCoord(sw.Lat), formatCoord(sw.Lng),
			formatCoord(ne.Lat), formatCoord(ne.Lng))
	}
	if q.Region != "" {
		b.WriteString("&region=")
		b.WriteString(strings.ToLower(q.Region))
	}
	return b.String(), nil
}

// Lookup geocodes q, honouring q.ExactlyOne. The returned sequence is lazy
// and yields places in provider order.
func (c *Client) Lookup(ctx context.Context, q domain.Query) (iter.Seq[domain.Result], error) {
	u, err := c.BuildURL(q)
	if err != nil {
		c.recordOutcome(err)
		return nil, err
	}

	start := time.Now()
	body, err := c.fetch(ctx, u)
	if c.metrics != nil {
		c.metrics.GeocodeAPIDuration.WithLabelValues(c.format.String()).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.recordOutcome(err)
		return nil, err
	}

	results, err := c.parse(body, q.ExactlyOne, q.IncludeTypes)
	c.recordOutcome(err)
	if err != nil {
		c.logger.Debug("geocode failed", "address", q.Address, "error", err)
		return nil, err
	}
	return results, nil
}

// Geocode returns the single place matching q.
func (c *Client) Geocode(ctx context.Context, q domain.Query) (domain.Result, error) {
	q.ExactlyOne = true
	results, err := c.Lookup(ctx, q)
	if err != nil {
		return domain.Result{}, err
	}
	for r := range results {
		return r, nil
	}
	return domain.Result{}, &domain.NotExactlyOneError{Count: 0}
}

// GeocodeAll returns every place matching q.
func (c *Client) GeocodeAll(ctx context.Context, q domain.Query) (iter.Seq[domain.Result], error) {
	q.ExactlyOne = false
	return c.Lookup(ctx, q)
}

// parse dispatches on the configured output format.
func (c *Client) parse(body []byte, exactlyOne, includeTypes bool) (iter.Seq[domain.Result], error) {
	switch c.format {
	case domain.FormatJSON:
		return parseJSON(body, exactlyOne, includeTypes)
	case domain.FormatXML, domain.FormatKML, domain.FormatCSV, domain.FormatJS:
		return nil, fmt.Errorf("%w: %s responses cannot be parsed", domain.ErrNotImplemented, c.format)
	default:
		return nil, fmt.Errorf("%w: output format %s", domain.ErrInvalidParameter, c.format)
	}
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	c.logger.Debug("fetching geocode", "url", c.redact(rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) recordOutcome(err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = domain.ErrorKind(err)
	}
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
}

func (c *Client) redact(rawURL string) string {
	if c.apiKey == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, url.QueryEscape(c.apiKey), "REDACTED")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
