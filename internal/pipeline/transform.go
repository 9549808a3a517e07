package pipeline

import (
	"context"
	"iter"
	"log/slog"
	"slices"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
)

// GeocodeTransformer implements Transformer by running each request through a
// Geocoder. Geocoding failures become error responses rather than transform
// errors, so every well-formed request gets an answer.
type GeocodeTransformer struct {
	geocoder      domain.Geocoder
	defaultRegion string
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewTransformer creates a GeocodeTransformer. defaultRegion is applied to
// requests that carry no region of their own.
func NewTransformer(geocoder domain.Geocoder, defaultRegion string, logger *slog.Logger, metrics *observability.Metrics) *GeocodeTransformer {
	return &GeocodeTransformer{
		geocoder:      geocoder,
		defaultRegion: defaultRegion,
		logger:        logger,
		metrics:       metrics,
	}
}

func (t *GeocodeTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	results, err := t.geocode(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.OutputEvent{}, err
		}
		t.logger.Warn("geocode failed",
			"request_id", req.ID,
			"address", req.Address,
			"error_kind", domain.ErrorKind(err),
			"error", err,
		)
	}

	resp := domain.NewResponse(req, results, err)
	if err == nil && t.metrics != nil {
		t.metrics.GeocodeResults.Observe(float64(len(resp.Results)))
	}
	return domain.SerializeResponse(resp)
}

func (t *GeocodeTransformer) geocode(ctx context.Context, req domain.GeocodeRequest) (iter.Seq[domain.Result], error) {
	q, err := req.Query(t.defaultRegion)
	if err != nil {
		return nil, err
	}
	if !q.ExactlyOne {
		return t.geocoder.GeocodeAll(ctx, q)
	}
	r, err := t.geocoder.Geocode(ctx, q)
	if err != nil {
		return nil, err
	}
	return slices.Values([]domain.Result{r}), nil
}
